package port

import (
	"context"

	"github.com/dreschagin/netpulse/internal/domain/entity"
)

// SampleSource defines the interface for producing network samples (Port).
// Implementation lives in the Infrastructure layer.
type SampleSource interface {
	// Start primes the source (e.g. reads the initial counter values).
	// Tick must not be called before Start has succeeded.
	Start(ctx context.Context) error

	// Tick produces the sample for the interval since the previous call.
	// A failed probe yields a degraded sample, not an error; an error is
	// returned only when no sample could be produced at all.
	Tick(ctx context.Context) (*entity.Sample, error)

	// Stop releases resources held by the source.
	Stop() error
}

// CounterSource reads the host's cumulative network interface counters.
type CounterSource interface {
	// Counters returns total bytes sent and received across all
	// non-loopback interfaces since boot.
	Counters(ctx context.Context) (bytesSent, bytesRecv uint64, err error)
}

// ProbeResult carries the outcome of one round-trip measurement.
type ProbeResult struct {
	LatencyMs     float64
	PacketLossPct float64
}

// Prober measures round-trip latency and packet loss against a target.
type Prober interface {
	// Probe sends a fixed number of probes and aggregates the results.
	// It returns an error only when every probe failed.
	Probe(ctx context.Context) (ProbeResult, error)
}
