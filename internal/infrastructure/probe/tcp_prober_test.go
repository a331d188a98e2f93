package probe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dreschagin/netpulse/pkg/logger"
)

func newTestProber(count int, dial func(ctx context.Context, target string) error) *TCPProber {
	p := NewTCPProber("1.1.1.1:443", count, time.Second, logger.New("error"))
	p.dial = dial
	return p
}

func TestTCPProber_AllProbesSucceed(t *testing.T) {
	calls := 0
	p := newTestProber(5, func(_ context.Context, _ string) error {
		calls++
		return nil
	})

	result, err := p.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}

	if calls != 5 {
		t.Errorf("expected 5 dials, got %d", calls)
	}
	if result.PacketLossPct != 0 {
		t.Errorf("expected 0%% loss, got %v", result.PacketLossPct)
	}
	if result.LatencyMs < 0 {
		t.Errorf("expected non-negative latency, got %v", result.LatencyMs)
	}
}

func TestTCPProber_PartialLoss(t *testing.T) {
	calls := 0
	p := newTestProber(5, func(_ context.Context, _ string) error {
		calls++
		// Attempts 2 and 4 fail.
		if calls%2 == 0 {
			return errors.New("connection refused")
		}
		return nil
	})

	result, err := p.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if result.PacketLossPct != 40 {
		t.Errorf("expected 40%% loss, got %v", result.PacketLossPct)
	}
}

func TestTCPProber_AllProbesFail(t *testing.T) {
	p := newTestProber(5, func(_ context.Context, _ string) error {
		return errors.New("network unreachable")
	})

	if _, err := p.Probe(context.Background()); err == nil {
		t.Fatal("expected error when every probe fails")
	}
}

func TestTCPProber_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestProber(5, func(_ context.Context, _ string) error {
		return nil
	})

	if _, err := p.Probe(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
