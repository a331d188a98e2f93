package collector

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/dreschagin/netpulse/internal/application/port"
	"github.com/dreschagin/netpulse/pkg/logger"
)

type fakeCounterSource struct {
	sent, recv uint64
	err        error
}

func (f *fakeCounterSource) Counters(_ context.Context) (uint64, uint64, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	return f.sent, f.recv, nil
}

type fakeProber struct {
	result port.ProbeResult
	err    error
}

func (f *fakeProber) Probe(_ context.Context) (port.ProbeResult, error) {
	if f.err != nil {
		return port.ProbeResult{}, f.err
	}
	return f.result, nil
}

// fixedClock advances by step on every call, simulating a steady cadence.
type fixedClock struct {
	current time.Time
	step    time.Duration
}

func (c *fixedClock) now() time.Time {
	c.current = c.current.Add(c.step)
	return c.current
}

func newStartedSampler(t *testing.T, counters *fakeCounterSource, prober *fakeProber, step time.Duration) *NetworkSampler {
	t.Helper()

	sampler := NewNetworkSampler(counters, prober, logger.New("error"))
	clock := &fixedClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), step: step}
	sampler.now = clock.now

	if err := sampler.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return sampler
}

func TestNetworkSampler_TickBeforeStart(t *testing.T) {
	sampler := NewNetworkSampler(&fakeCounterSource{}, &fakeProber{}, logger.New("error"))

	if _, err := sampler.Tick(context.Background()); !errors.Is(err, ErrSamplerNotStarted) {
		t.Fatalf("expected ErrSamplerNotStarted, got %v", err)
	}
}

func TestNetworkSampler_ComputesThroughput(t *testing.T) {
	counters := &fakeCounterSource{sent: 0, recv: 0}
	prober := &fakeProber{result: port.ProbeResult{LatencyMs: 25, PacketLossPct: 0}}
	sampler := newStartedSampler(t, counters, prober, 2*time.Second)

	// 2 s interval: 262144 bytes sent is 1 Mbps, 2621440 received is 10 Mbps.
	counters.sent = 262144 * 2
	counters.recv = 2621440 * 2

	sample, err := sampler.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}

	if math.Abs(sample.UploadMbps()-2) > 1e-9 {
		t.Errorf("expected upload 2 Mbps, got %v", sample.UploadMbps())
	}
	if math.Abs(sample.DownloadMbps()-20) > 1e-9 {
		t.Errorf("expected download 20 Mbps, got %v", sample.DownloadMbps())
	}
	if sample.LatencyMs() != 25 {
		t.Errorf("expected latency 25 ms, got %v", sample.LatencyMs())
	}
	if sample.Degraded() {
		t.Error("expected healthy sample")
	}
}

func TestNetworkSampler_CounterResetClampsToZero(t *testing.T) {
	counters := &fakeCounterSource{sent: 1 << 40, recv: 1 << 40}
	prober := &fakeProber{result: port.ProbeResult{LatencyMs: 25}}
	sampler := newStartedSampler(t, counters, prober, 2*time.Second)

	// Counters went backwards, as after a driver reload.
	counters.sent = 1000
	counters.recv = 2000

	sample, err := sampler.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if sample.UploadMbps() != 0 || sample.DownloadMbps() != 0 {
		t.Errorf("expected zero throughput after counter reset, got %v/%v",
			sample.UploadMbps(), sample.DownloadMbps())
	}
}

func TestNetworkSampler_ProbeFailureDegradesSample(t *testing.T) {
	counters := &fakeCounterSource{}
	prober := &fakeProber{err: errors.New("target unreachable")}
	sampler := newStartedSampler(t, counters, prober, 2*time.Second)

	counters.sent = 262144
	counters.recv = 262144

	sample, err := sampler.Tick(context.Background())
	if err != nil {
		t.Fatalf("probe failure must not fail the tick, got %v", err)
	}
	if !sample.Degraded() {
		t.Fatal("expected degraded sample")
	}
	if sample.LatencyMs() != 0 || sample.PacketLossPct() != 0 {
		t.Error("expected zero-filled probe fields on degraded sample")
	}
	if sample.UploadMbps() == 0 {
		t.Error("expected throughput fields to survive probe failure")
	}
}

func TestNetworkSampler_CounterFailureFailsTick(t *testing.T) {
	counters := &fakeCounterSource{}
	sampler := newStartedSampler(t, counters, &fakeProber{}, 2*time.Second)

	counters.err = errors.New("proc unavailable")

	if _, err := sampler.Tick(context.Background()); err == nil {
		t.Fatal("expected error when counters cannot be read")
	}
}

func TestNetworkSampler_TickAfterStop(t *testing.T) {
	sampler := newStartedSampler(t, &fakeCounterSource{}, &fakeProber{}, 2*time.Second)

	if err := sampler.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if _, err := sampler.Tick(context.Background()); !errors.Is(err, ErrSamplerStopped) {
		t.Fatalf("expected ErrSamplerStopped, got %v", err)
	}
}
