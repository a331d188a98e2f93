package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v3/net"
)

// GopsutilCounterSource reads the host's aggregate interface counters via
// gopsutil. Implements port.CounterSource.
type GopsutilCounterSource struct{}

func NewGopsutilCounterSource() *GopsutilCounterSource {
	return &GopsutilCounterSource{}
}

// Counters returns the total bytes sent and received across all
// interfaces since boot.
func (s *GopsutilCounterSource) Counters(ctx context.Context) (uint64, uint64, error) {
	stats, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read interface counters: %w", err)
	}
	if len(stats) == 0 {
		return 0, 0, errors.New("no network interfaces reported")
	}

	return stats[0].BytesSent, stats[0].BytesRecv, nil
}
