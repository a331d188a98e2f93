package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/dreschagin/netpulse/internal/domain/entity"
	"github.com/dreschagin/netpulse/pkg/logger"
)

func TestPersistSamplesUseCase_EmptyBatchIsNoop(t *testing.T) {
	repo := &mockSampleRepository{}
	uc := NewPersistSamplesUseCase(repo, nil, logger.New("error"))

	if err := uc.Execute(context.Background(), nil); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(repo.batches) != 0 {
		t.Errorf("expected no batch writes, got %d", len(repo.batches))
	}
}

func TestPersistSamplesUseCase_SavesBatchAndInvalidatesCache(t *testing.T) {
	repo := &mockSampleRepository{}
	cache := newMockCache()
	uc := NewPersistSamplesUseCase(repo, cache, logger.New("error"))

	batch := []*entity.Sample{
		entity.NewSample(1, 10, 20, 0, false),
		entity.NewSample(2, 12, 22, 0, false),
	}

	if err := uc.Execute(context.Background(), batch); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(repo.batches) != 1 || len(repo.batches[0]) != 2 {
		t.Fatalf("expected one batch of 2 samples, got %+v", repo.batches)
	}
	if len(cache.deletedPatterns) != 1 || cache.deletedPatterns[0] != "netpulse:history:*" {
		t.Errorf("expected history cache invalidation, got %v", cache.deletedPatterns)
	}
}

func TestPersistSamplesUseCase_SaveFailureReturnsError(t *testing.T) {
	repo := &mockSampleRepository{err: errors.New("connection refused")}
	uc := NewPersistSamplesUseCase(repo, nil, logger.New("error"))

	err := uc.Execute(context.Background(), []*entity.Sample{entity.NewSample(1, 10, 20, 0, false)})
	if err == nil {
		t.Fatal("expected error when the repository fails")
	}
}
