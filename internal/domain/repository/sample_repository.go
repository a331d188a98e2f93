package repository

import (
	"context"
	"time"

	"github.com/dreschagin/netpulse/internal/domain/entity"
	"github.com/dreschagin/netpulse/internal/domain/valueobject"
)

// SampleRepository is the persistence port for network samples (Port).
// Implementations live in the Infrastructure layer.
type SampleRepository interface {
	// Save stores one sample.
	Save(ctx context.Context, sample *entity.Sample) error

	// SaveBatch stores several samples in one transaction.
	SaveBatch(ctx context.Context, samples []*entity.Sample) error

	// FindSince returns samples collected after since, newest first,
	// capped at limit.
	FindSince(ctx context.Context, since time.Time, limit int) ([]*entity.Sample, error)

	// FindByTimeRange returns samples collected inside the range, newest first.
	FindByTimeRange(ctx context.Context, timeRange valueobject.TimeRange) ([]*entity.Sample, error)

	// FindLatest returns the most recently collected sample.
	FindLatest(ctx context.Context) (*entity.Sample, error)

	// DeleteOlderThan removes samples collected before cutoff and
	// reports how many rows were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Count returns the number of stored samples.
	Count(ctx context.Context) (int64, error)
}

// AlertRepository is the persistence port for threshold alerts (Port).
type AlertRepository interface {
	// Save stores one alert.
	Save(ctx context.Context, alert *entity.Alert) error

	// FindActive returns unresolved alerts from the last 24 hours,
	// newest first, capped at limit.
	FindActive(ctx context.Context, limit int) ([]*entity.Alert, error)

	// Resolve marks the alert with the given id as resolved.
	Resolve(ctx context.Context, id string) error

	// DeleteResolvedOlderThan removes resolved alerts created before cutoff.
	DeleteResolvedOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
