package port

import (
	"context"

	"github.com/dreschagin/netpulse/internal/domain/entity"
)

// MetricsPublisher defines the interface for publishing samples to external observability platforms.
// This port allows the application layer to publish metrics without coupling to specific implementations.
type MetricsPublisher interface {
	// PublishBatch publishes multiple samples in a single operation.
	// Implementations should handle batching constraints (e.g., CloudWatch's 1000 metrics/request limit).
	PublishBatch(ctx context.Context, samples []*entity.Sample) error

	// PublishSingle publishes a single sample immediately.
	// Use this for high-priority data that needs immediate delivery.
	PublishSingle(ctx context.Context, sample *entity.Sample) error

	// Flush forces immediate publication of any buffered metrics.
	// Should be called during graceful shutdown to prevent data loss.
	Flush(ctx context.Context) error
}
