package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/dreschagin/netpulse/internal/application/dto"
	"github.com/dreschagin/netpulse/internal/application/port"
	"github.com/dreschagin/netpulse/internal/domain/repository"
	"github.com/dreschagin/netpulse/internal/domain/valueobject"
	"github.com/dreschagin/netpulse/pkg/logger"
)

// GetHistoryUseCase returns persisted samples for a time range, with a
// read-through cache in front of the repository.
type GetHistoryUseCase struct {
	samples repository.SampleRepository
	cache   port.Cache
	logger  *logger.Logger
}

// NewGetHistoryUseCase creates the history query. cache is optional.
func NewGetHistoryUseCase(
	samples repository.SampleRepository,
	cache port.Cache,
	logger *logger.Logger,
) *GetHistoryUseCase {
	return &GetHistoryUseCase{
		samples: samples,
		cache:   cache,
		logger:  logger,
	}
}

// Execute returns the samples inside timeRange in ascending collection
// order, ready for charting.
func (uc *GetHistoryUseCase) Execute(ctx context.Context, timeRange valueobject.TimeRange) ([]*dto.SampleDTO, error) {
	if uc.cache == nil {
		return uc.executeWithoutCache(ctx, timeRange)
	}

	duration := timeRange.End().Sub(timeRange.Start()).String()
	cacheKey := historyCacheKey(duration)

	var cached []*dto.SampleDTO
	if err := uc.cache.Get(ctx, cacheKey, &cached); err == nil {
		uc.logger.Debug("Cache hit for sample history", "count", len(cached))
		return cached, nil
	}

	uc.logger.Debug("Cache miss for sample history, fetching from DB")

	dtos, err := uc.executeWithoutCache(ctx, timeRange)
	if err != nil {
		return nil, err
	}

	// Cache fill must not block the response.
	go func() {
		if err := uc.cache.Set(context.Background(), cacheKey, dtos); err != nil {
			uc.logger.Warn("Failed to cache sample history", "error", err.Error())
		}
	}()

	return dtos, nil
}

func (uc *GetHistoryUseCase) executeWithoutCache(ctx context.Context, timeRange valueobject.TimeRange) ([]*dto.SampleDTO, error) {
	samples, err := uc.samples.FindByTimeRange(ctx, timeRange)
	if err != nil {
		uc.logger.Error("Failed to fetch sample history", err)
		return nil, fmt.Errorf("failed to fetch sample history: %w", err)
	}

	// Repository returns newest first; charts want ascending time.
	for i, j := 0, len(samples)-1; i < j; i, j = i+1, j-1 {
		samples[i], samples[j] = samples[j], samples[i]
	}

	return dto.ToSampleDTOs(samples), nil
}

// historyCacheKey buckets keys by minute to improve the hit rate while
// keeping responses fresh enough for dashboards.
func historyCacheKey(duration string) string {
	bucket := time.Now().Truncate(time.Minute).Unix()
	return fmt.Sprintf("netpulse:history:%s:%d", duration, bucket)
}
