package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dreschagin/netpulse/internal/application/port"
	"github.com/dreschagin/netpulse/internal/domain/entity"
	"github.com/dreschagin/netpulse/pkg/logger"
)

// bytesPerSecToMbps converts a byte/s rate into megabits per second
// (1 Mbps = 131072 bytes/s).
const bytesPerMbit = 131072.0

var (
	// ErrSamplerNotStarted is returned by Tick before Start has primed
	// the counter baseline.
	ErrSamplerNotStarted = errors.New("network sampler not started")

	// ErrSamplerStopped is returned by Tick after Stop.
	ErrSamplerStopped = errors.New("network sampler stopped")
)

// NetworkSampler produces one sample per tick from the host's interface
// counters and an active round-trip probe. Implements port.SampleSource.
type NetworkSampler struct {
	counters port.CounterSource
	prober   port.Prober
	log      *logger.Logger

	now func() time.Time

	mu       sync.Mutex
	started  bool
	stopped  bool
	lastSent uint64
	lastRecv uint64
	lastSeen time.Time
}

func NewNetworkSampler(counters port.CounterSource, prober port.Prober, log *logger.Logger) *NetworkSampler {
	return &NetworkSampler{
		counters: counters,
		prober:   prober,
		log:      log,
		now:      time.Now,
	}
}

// Start reads the initial counter values so the first Tick measures a
// real interval instead of the whole uptime.
func (s *NetworkSampler) Start(ctx context.Context) error {
	sent, recv, err := s.counters.Counters(ctx)
	if err != nil {
		return fmt.Errorf("failed to prime network counters: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSent = sent
	s.lastRecv = recv
	s.lastSeen = s.now()
	s.started = true
	s.stopped = false

	return nil
}

// Tick measures throughput since the previous call and probes the target.
// A probe failure degrades the sample; a counter read failure fails the
// whole tick because no throughput can be derived.
func (s *NetworkSampler) Tick(ctx context.Context) (*entity.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil, ErrSamplerStopped
	}
	if !s.started {
		return nil, ErrSamplerNotStarted
	}

	sent, recv, err := s.counters.Counters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read network counters: %w", err)
	}

	current := s.now()
	elapsed := current.Sub(s.lastSeen).Seconds()

	var uploadMbps, downloadMbps float64
	if elapsed > 0 {
		uploadMbps = float64(counterDelta(sent, s.lastSent)) / (elapsed * bytesPerMbit)
		downloadMbps = float64(counterDelta(recv, s.lastRecv)) / (elapsed * bytesPerMbit)
	}

	s.lastSent = sent
	s.lastRecv = recv
	s.lastSeen = current

	probe, probeErr := s.prober.Probe(ctx)
	if probeErr != nil {
		s.log.Warn("Round-trip probe failed", "error", probeErr.Error())
		return entity.NewSample(uploadMbps, downloadMbps, 0, 0, true), nil
	}

	return entity.NewSample(uploadMbps, downloadMbps, probe.LatencyMs, probe.PacketLossPct, false), nil
}

// Stop makes further ticks fail fast. Idempotent.
func (s *NetworkSampler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	return nil
}

// counterDelta handles counter resets (reboot, driver reload) by clamping
// a backwards step to zero instead of producing a huge unsigned wrap.
func counterDelta(current, previous uint64) uint64 {
	if current < previous {
		return 0
	}
	return current - previous
}
