package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dreschagin/netpulse/internal/application/dto"
	"github.com/dreschagin/netpulse/internal/application/port"
	"github.com/dreschagin/netpulse/internal/domain/repository"
	"github.com/dreschagin/netpulse/internal/domain/valueobject"
	"github.com/dreschagin/netpulse/pkg/logger"
)

// archiveEpoch bounds the lower end of the export query. Samples cannot
// predate the project.
var archiveEpoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// ArchiveHistoryUseCase moves samples past the retention window out of
// the hot store: export to object storage, index the archive, then prune
// the database. Resolved alerts past retention are pruned as well.
type ArchiveHistoryUseCase struct {
	samples   repository.SampleRepository
	alerts    repository.AlertRepository
	storage   port.ArchiveStorage
	index     port.ArchiveIndex
	retention time.Duration
	indexTTL  time.Duration
	logger    *logger.Logger
}

// NewArchiveHistoryUseCase creates the retention job. storage and index
// are optional; without them old rows are pruned but not exported.
func NewArchiveHistoryUseCase(
	samples repository.SampleRepository,
	alerts repository.AlertRepository,
	storage port.ArchiveStorage,
	index port.ArchiveIndex,
	retention time.Duration,
	indexTTL time.Duration,
	logger *logger.Logger,
) *ArchiveHistoryUseCase {
	return &ArchiveHistoryUseCase{
		samples:   samples,
		alerts:    alerts,
		storage:   storage,
		index:     index,
		retention: retention,
		indexTTL:  indexTTL,
		logger:    logger,
	}
}

// Execute runs one retention pass. Export failures abort the pass before
// any rows are deleted so no data is lost.
func (uc *ArchiveHistoryUseCase) Execute(ctx context.Context) error {
	cutoff := time.Now().Add(-uc.retention)

	expired, err := uc.findExpired(ctx, cutoff)
	if err != nil {
		return err
	}

	if len(expired) > 0 && uc.storage != nil {
		if err := uc.export(ctx, expired, cutoff); err != nil {
			return err
		}
	}

	deleted, err := uc.samples.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		uc.logger.Error("Failed to prune old samples", err)
		return fmt.Errorf("failed to prune samples: %w", err)
	}

	alertsDeleted, err := uc.alerts.DeleteResolvedOlderThan(ctx, cutoff)
	if err != nil {
		uc.logger.Error("Failed to prune resolved alerts", err)
		return fmt.Errorf("failed to prune alerts: %w", err)
	}

	if deleted > 0 || alertsDeleted > 0 {
		uc.logger.Info("Retention pass complete",
			"samples_archived", len(expired),
			"samples_deleted", deleted,
			"alerts_deleted", alertsDeleted)
	}

	return nil
}

func (uc *ArchiveHistoryUseCase) findExpired(ctx context.Context, cutoff time.Time) ([]*dto.SampleDTO, error) {
	timeRange, err := valueobject.NewTimeRange(archiveEpoch, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to build archive range: %w", err)
	}

	samples, err := uc.samples.FindByTimeRange(ctx, timeRange)
	if err != nil {
		uc.logger.Error("Failed to fetch expired samples", err)
		return nil, fmt.Errorf("failed to fetch expired samples: %w", err)
	}

	return dto.ToSampleDTOs(samples), nil
}

// export writes the expired samples as one JSON object and records it in
// the archive index.
func (uc *ArchiveHistoryUseCase) export(ctx context.Context, expired []*dto.SampleDTO, cutoff time.Time) error {
	body, err := json.Marshal(expired)
	if err != nil {
		return fmt.Errorf("failed to marshal archive batch: %w", err)
	}

	oldest := expired[len(expired)-1].CollectedAt
	newest := expired[0].CollectedAt

	now := time.Now().UTC()
	key := fmt.Sprintf("archive/%s/%s.json", now.Format("2006-01-02"), now.Format("150405"))

	url, err := uc.storage.PutObject(ctx, key, "application/json", body)
	if err != nil {
		uc.logger.Error("Failed to upload archive batch", err, "key", key)
		return fmt.Errorf("failed to upload archive: %w", err)
	}

	if uc.index != nil {
		record := port.ArchiveRecord{
			Day:         now.Format("2006-01-02"),
			S3Key:       key,
			URL:         url,
			SampleCount: len(expired),
			From:        oldest,
			To:          newest,
			SizeBytes:   int64(len(body)),
			ArchivedAt:  now,
			ExpiresAt:   now.Add(uc.indexTTL),
		}
		if err := uc.index.PutBatch(ctx, []port.ArchiveRecord{record}); err != nil {
			uc.logger.Error("Failed to index archive batch", err, "key", key)
			return fmt.Errorf("failed to index archive: %w", err)
		}
	}

	uc.logger.Info("Archive batch uploaded", "key", key, "samples", len(expired), "bytes", len(body))
	return nil
}
