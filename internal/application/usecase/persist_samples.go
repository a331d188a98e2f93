package usecase

import (
	"context"
	"fmt"

	"github.com/dreschagin/netpulse/internal/application/port"
	"github.com/dreschagin/netpulse/internal/domain/entity"
	"github.com/dreschagin/netpulse/internal/domain/repository"
	"github.com/dreschagin/netpulse/pkg/logger"
)

// PersistSamplesUseCase flushes a batch of collected samples to durable
// storage on the persistence cadence, which is slower than collection.
type PersistSamplesUseCase struct {
	samples repository.SampleRepository
	cache   port.Cache
	logger  *logger.Logger
}

// NewPersistSamplesUseCase creates the batch persister. cache is optional.
func NewPersistSamplesUseCase(
	samples repository.SampleRepository,
	cache port.Cache,
	logger *logger.Logger,
) *PersistSamplesUseCase {
	return &PersistSamplesUseCase{
		samples: samples,
		cache:   cache,
		logger:  logger,
	}
}

// Execute stores the batch. On failure the caller keeps the batch and
// retries on the next cadence tick.
func (uc *PersistSamplesUseCase) Execute(ctx context.Context, batch []*entity.Sample) error {
	if len(batch) == 0 {
		return nil
	}

	if err := uc.samples.SaveBatch(ctx, batch); err != nil {
		uc.logger.Error("Failed to save sample batch", err, "count", len(batch))
		return fmt.Errorf("failed to save samples: %w", err)
	}

	uc.logger.Debug("Sample batch saved", "count", len(batch))

	// New data makes cached history responses stale.
	if uc.cache != nil {
		if err := uc.cache.DeletePattern(ctx, "netpulse:history:*"); err != nil {
			uc.logger.Warn("Failed to invalidate history cache", "error", err.Error())
		}
	}

	return nil
}
