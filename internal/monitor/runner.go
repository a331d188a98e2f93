package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dreschagin/netpulse/internal/application/dto"
	"github.com/dreschagin/netpulse/internal/domain/entity"
	"github.com/dreschagin/netpulse/pkg/logger"
)

// tickTimeout bounds one collection tick, probe included.
const tickTimeout = 5 * time.Second

// Collector runs one collection tick.
type Collector interface {
	Execute(ctx context.Context) (*entity.Sample, *dto.MonitorSnapshotDTO, error)
}

// Persister flushes a batch of samples to durable storage.
type Persister interface {
	Execute(ctx context.Context, batch []*entity.Sample) error
}

// Status describes the runner for health and status endpoints.
type Status struct {
	StartedAt       time.Time               `json:"started_at"`
	CollectInterval time.Duration           `json:"collect_interval"`
	PersistInterval time.Duration           `json:"persist_interval"`
	LastTickAt      time.Time               `json:"last_tick_at"`
	LastError       string                  `json:"last_error,omitempty"`
	Ticks           uint64                  `json:"ticks"`
	Failures        uint64                  `json:"failures"`
	PendingSamples  int                     `json:"pending_samples"`
	LastSnapshot    *dto.MonitorSnapshotDTO `json:"last_snapshot,omitempty"`
}

// Runner drives the monitor: it ticks the collection pipeline on the
// collection cadence and flushes accumulated samples on the slower
// persistence cadence. A failed tick or flush is recorded and retried on
// the next cadence; the loop itself never stops until the context does.
type Runner struct {
	collector Collector
	persister Persister
	log       *logger.Logger

	collectInterval time.Duration
	persistInterval time.Duration

	runMu sync.Mutex

	mu           sync.RWMutex
	startedAt    time.Time
	lastTickAt   time.Time
	lastError    string
	ticks        uint64
	failures     uint64
	lastSnapshot *dto.MonitorSnapshotDTO

	pendingMu sync.Mutex
	pending   []*entity.Sample
}

func NewRunner(
	collector Collector,
	persister Persister,
	log *logger.Logger,
	collectInterval, persistInterval time.Duration,
) *Runner {
	return &Runner{
		collector:       collector,
		persister:       persister,
		log:             log,
		collectInterval: collectInterval,
		persistInterval: persistInterval,
		startedAt:       time.Now(),
	}
}

// Start blocks until ctx is cancelled, then flushes the remaining batch.
func (r *Runner) Start(ctx context.Context) {
	collectTicker := time.NewTicker(r.collectInterval)
	defer collectTicker.Stop()

	persistTicker := time.NewTicker(r.persistInterval)
	defer persistTicker.Stop()

	for {
		select {
		case <-collectTicker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				// RunOnce already stores error state and logs context.
				continue
			}
		case <-persistTicker.C:
			r.Flush(ctx)
		case <-ctx.Done():
			// The parent context is gone; give the final flush its own budget.
			flushCtx, cancel := context.WithTimeout(context.Background(), tickTimeout)
			r.Flush(flushCtx)
			cancel()
			return
		}
	}
}

// RunOnce performs one collection tick and queues the sample for the next
// flush. Safe to call concurrently with Start; ticks are serialized.
func (r *Runner) RunOnce(ctx context.Context) (*dto.MonitorSnapshotDTO, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	tickCtx, cancel := context.WithTimeout(ctx, tickTimeout)
	defer cancel()

	sample, snapshot, err := r.collector.Execute(tickCtx)
	tickAt := time.Now()

	if err != nil {
		wrappedErr := fmt.Errorf("collection tick failed: %w", err)
		r.updateFailure(tickAt, wrappedErr)
		r.log.Error("Collection tick failed", wrappedErr)
		return nil, wrappedErr
	}

	r.enqueue(sample)
	r.updateSuccess(tickAt, snapshot)

	return snapshot, nil
}

// Flush persists the queued samples. On failure the batch is retained and
// retried on the next persistence tick.
func (r *Runner) Flush(ctx context.Context) {
	r.pendingMu.Lock()
	batch := r.pending
	r.pending = nil
	r.pendingMu.Unlock()

	if len(batch) == 0 {
		return
	}

	if err := r.persister.Execute(ctx, batch); err != nil {
		r.log.Error("Persist flush failed, batch retained", err, "count", len(batch))
		r.requeue(batch)
		return
	}
}

// Latest returns the snapshot of the most recent successful tick, or nil
// before the first one.
func (r *Runner) Latest() *dto.MonitorSnapshotDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastSnapshot
}

// Status returns a copy of the runner's operational state.
func (r *Runner) Status() Status {
	r.pendingMu.Lock()
	pendingCount := len(r.pending)
	r.pendingMu.Unlock()

	r.mu.RLock()
	defer r.mu.RUnlock()

	return Status{
		StartedAt:       r.startedAt,
		CollectInterval: r.collectInterval,
		PersistInterval: r.persistInterval,
		LastTickAt:      r.lastTickAt,
		LastError:       r.lastError,
		Ticks:           r.ticks,
		Failures:        r.failures,
		PendingSamples:  pendingCount,
		LastSnapshot:    r.lastSnapshot,
	}
}

func (r *Runner) enqueue(sample *entity.Sample) {
	r.pendingMu.Lock()
	r.pending = append(r.pending, sample)
	r.pendingMu.Unlock()
}

func (r *Runner) requeue(batch []*entity.Sample) {
	r.pendingMu.Lock()
	r.pending = append(batch, r.pending...)
	r.pendingMu.Unlock()
}

func (r *Runner) updateFailure(tickAt time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastTickAt = tickAt
	r.lastError = err.Error()
	r.ticks++
	r.failures++
}

func (r *Runner) updateSuccess(tickAt time.Time, snapshot *dto.MonitorSnapshotDTO) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastTickAt = tickAt
	r.lastError = ""
	r.ticks++
	r.lastSnapshot = snapshot
}
