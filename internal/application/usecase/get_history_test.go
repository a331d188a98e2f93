package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/dreschagin/netpulse/internal/application/dto"
	"github.com/dreschagin/netpulse/internal/domain/entity"
	"github.com/dreschagin/netpulse/internal/domain/valueobject"
	"github.com/dreschagin/netpulse/pkg/logger"
	"github.com/google/uuid"
)

func storedSample(collectedAt time.Time, download float64) *entity.Sample {
	return entity.ReconstructSample(
		uuid.New().String(),
		1, download, 20, 0,
		false,
		collectedAt, collectedAt,
	)
}

func lastHour(t *testing.T) valueobject.TimeRange {
	t.Helper()
	tr, err := valueobject.NewTimeRangeFromDuration(time.Hour)
	if err != nil {
		t.Fatalf("NewTimeRangeFromDuration() error = %v", err)
	}
	return tr
}

func TestGetHistoryUseCase_ReturnsAscendingOrder(t *testing.T) {
	now := time.Now()
	repo := &mockSampleRepository{
		// Newest first, as the repository contract promises.
		findResult: []*entity.Sample{
			storedSample(now, 30),
			storedSample(now.Add(-time.Minute), 20),
			storedSample(now.Add(-2*time.Minute), 10),
		},
	}
	uc := NewGetHistoryUseCase(repo, nil, logger.New("error"))

	dtos, err := uc.Execute(context.Background(), lastHour(t))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(dtos) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(dtos))
	}
	for i := 1; i < len(dtos); i++ {
		if dtos[i].CollectedAt.Before(dtos[i-1].CollectedAt) {
			t.Fatal("expected samples in ascending collection order")
		}
	}
}

func TestGetHistoryUseCase_CacheHitSkipsRepository(t *testing.T) {
	cache := newMockCache()
	tr := lastHour(t)

	cached := []*dto.SampleDTO{{ID: "cached", DownloadMbps: 42}}
	key := historyCacheKey(tr.End().Sub(tr.Start()).String())
	if err := cache.Set(context.Background(), key, cached); err != nil {
		t.Fatalf("cache.Set() error = %v", err)
	}

	repo := &mockSampleRepository{}
	uc := NewGetHistoryUseCase(repo, cache, logger.New("error"))

	dtos, err := uc.Execute(context.Background(), tr)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(dtos) != 1 || dtos[0].ID != "cached" {
		t.Fatalf("expected cached result, got %+v", dtos)
	}
}

func TestGetHistoryUseCase_CacheMissFallsThrough(t *testing.T) {
	repo := &mockSampleRepository{
		findResult: []*entity.Sample{storedSample(time.Now(), 10)},
	}
	uc := NewGetHistoryUseCase(repo, newMockCache(), logger.New("error"))

	dtos, err := uc.Execute(context.Background(), lastHour(t))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(dtos) != 1 {
		t.Fatalf("expected 1 sample from repository, got %d", len(dtos))
	}
}
