package probe

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/dreschagin/netpulse/internal/application/port"
	"github.com/dreschagin/netpulse/pkg/logger"
)

// TCPProber measures round-trip latency by timing TCP handshakes against
// a target address. A refused or timed-out dial counts as a lost probe.
// Implements port.Prober.
type TCPProber struct {
	target  string
	count   int
	timeout time.Duration
	log     *logger.Logger

	dial func(ctx context.Context, target string) error
}

// NewTCPProber creates a prober that dials target count times per Probe
// call with a per-dial timeout.
func NewTCPProber(target string, count int, timeout time.Duration, log *logger.Logger) *TCPProber {
	p := &TCPProber{
		target:  target,
		count:   count,
		timeout: timeout,
		log:     log,
	}
	p.dial = p.dialTCP
	return p
}

// Probe runs the configured number of sequential dials and aggregates
// mean latency and loss percentage. It returns an error only when every
// dial failed, meaning no latency could be measured at all.
func (p *TCPProber) Probe(ctx context.Context) (port.ProbeResult, error) {
	var (
		succeeded int
		totalMs   float64
	)

	for i := 0; i < p.count; i++ {
		if err := ctx.Err(); err != nil {
			return port.ProbeResult{}, err
		}

		start := time.Now()
		if err := p.dial(ctx, p.target); err != nil {
			p.log.Debug("Probe dial failed", "target", p.target, "attempt", i+1, "error", err.Error())
			continue
		}

		succeeded++
		totalMs += float64(time.Since(start).Microseconds()) / 1000.0
	}

	if succeeded == 0 {
		return port.ProbeResult{}, fmt.Errorf("all %d probes to %s failed", p.count, p.target)
	}

	loss := float64(p.count-succeeded) / float64(p.count) * 100

	return port.ProbeResult{
		LatencyMs:     totalMs / float64(succeeded),
		PacketLossPct: loss,
	}, nil
}

func (p *TCPProber) dialTCP(ctx context.Context, target string) error {
	dialCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", target)
	if err != nil {
		return err
	}
	return conn.Close()
}
