package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dreschagin/netpulse/internal/application/dto"
	"github.com/dreschagin/netpulse/internal/domain/entity"
	"github.com/dreschagin/netpulse/pkg/logger"
)

type fakeCollector struct {
	err   error
	calls int
}

func (f *fakeCollector) Execute(_ context.Context) (*entity.Sample, *dto.MonitorSnapshotDTO, error) {
	f.calls++
	if f.err != nil {
		return nil, nil, f.err
	}
	sample := entity.NewSample(1, 10, 20, 0, false)
	snapshot := dto.NewMonitorSnapshotDTO(dto.FromSample(sample), nil, nil)
	return sample, snapshot, nil
}

type fakePersister struct {
	batches [][]*entity.Sample
	err     error
}

func (f *fakePersister) Execute(_ context.Context, batch []*entity.Sample) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, batch)
	return nil
}

func newTestRunner(c *fakeCollector, p *fakePersister) *Runner {
	return NewRunner(c, p, logger.New("error"), 2*time.Second, 30*time.Second)
}

func TestRunner_RunOnceUpdatesSnapshot(t *testing.T) {
	runner := newTestRunner(&fakeCollector{}, &fakePersister{})

	if runner.Latest() != nil {
		t.Fatal("expected no snapshot before the first tick")
	}

	snapshot, err := runner.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if snapshot == nil {
		t.Fatal("expected a snapshot")
	}
	if runner.Latest() != snapshot {
		t.Error("expected Latest() to return the tick snapshot")
	}

	status := runner.Status()
	if status.Ticks != 1 || status.Failures != 0 {
		t.Errorf("expected 1 tick and 0 failures, got %d/%d", status.Ticks, status.Failures)
	}
	if status.PendingSamples != 1 {
		t.Errorf("expected 1 pending sample, got %d", status.PendingSamples)
	}
}

func TestRunner_FailedTickKeepsPreviousSnapshot(t *testing.T) {
	collector := &fakeCollector{}
	runner := newTestRunner(collector, &fakePersister{})

	first, err := runner.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	collector.err = errors.New("counters unavailable")
	if _, err := runner.RunOnce(context.Background()); err == nil {
		t.Fatal("expected error from failing collector")
	}

	if runner.Latest() != first {
		t.Error("expected previous snapshot to survive a failed tick")
	}

	status := runner.Status()
	if status.Failures != 1 {
		t.Errorf("expected 1 failure, got %d", status.Failures)
	}
	if status.LastError == "" {
		t.Error("expected last error to be recorded")
	}
}

func TestRunner_FlushPersistsPendingBatch(t *testing.T) {
	persister := &fakePersister{}
	runner := newTestRunner(&fakeCollector{}, persister)

	for i := 0; i < 3; i++ {
		if _, err := runner.RunOnce(context.Background()); err != nil {
			t.Fatalf("RunOnce() error = %v", err)
		}
	}

	runner.Flush(context.Background())

	if len(persister.batches) != 1 || len(persister.batches[0]) != 3 {
		t.Fatalf("expected one batch of 3 samples, got %+v", persister.batches)
	}
	if runner.Status().PendingSamples != 0 {
		t.Errorf("expected empty pending queue after flush, got %d", runner.Status().PendingSamples)
	}
}

func TestRunner_FailedFlushRetainsBatch(t *testing.T) {
	persister := &fakePersister{err: errors.New("db down")}
	runner := newTestRunner(&fakeCollector{}, persister)

	if _, err := runner.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	runner.Flush(context.Background())
	if runner.Status().PendingSamples != 1 {
		t.Fatalf("expected batch retained after failed flush, got %d pending", runner.Status().PendingSamples)
	}

	// Recovery: the retained batch goes out on the next flush.
	persister.err = nil
	runner.Flush(context.Background())

	if len(persister.batches) != 1 || len(persister.batches[0]) != 1 {
		t.Fatalf("expected retained batch persisted on retry, got %+v", persister.batches)
	}
}

func TestRunner_EmptyFlushIsNoop(t *testing.T) {
	persister := &fakePersister{}
	runner := newTestRunner(&fakeCollector{}, persister)

	runner.Flush(context.Background())

	if len(persister.batches) != 0 {
		t.Errorf("expected no persister calls for empty queue, got %d", len(persister.batches))
	}
}

func TestRunner_StartFlushesOnShutdown(t *testing.T) {
	persister := &fakePersister{}
	runner := NewRunner(&fakeCollector{}, persister, logger.New("error"), 10*time.Millisecond, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runner.Start(ctx)
		close(done)
	}()

	// Let a few ticks happen, then shut down.
	time.Sleep(60 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after context cancellation")
	}

	if len(persister.batches) == 0 {
		t.Error("expected final flush on shutdown")
	}
}
