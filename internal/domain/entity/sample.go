package entity

import (
	"time"

	"github.com/google/uuid"
)

// Sample is one normalized measurement of host network performance,
// produced exactly once per collection tick. Immutable after creation;
// negative inputs are clamped to zero.
type Sample struct {
	id            string
	uploadMbps    float64
	downloadMbps  float64
	latencyMs     float64
	packetLossPct float64
	degraded      bool
	collectedAt   time.Time
	createdAt     time.Time
}

// NewSample creates a sample collected now. A degraded sample carries
// zero-valued probe fields because the round-trip probe failed.
func NewSample(uploadMbps, downloadMbps, latencyMs, packetLossPct float64, degraded bool) *Sample {
	now := time.Now()

	return &Sample{
		id:            uuid.New().String(),
		uploadMbps:    clampNonNegative(uploadMbps),
		downloadMbps:  clampNonNegative(downloadMbps),
		latencyMs:     clampNonNegative(latencyMs),
		packetLossPct: clampNonNegative(packetLossPct),
		degraded:      degraded,
		collectedAt:   now,
		createdAt:     now,
	}
}

// ReconstructSample restores a sample from storage (for Repository use).
func ReconstructSample(
	id string,
	uploadMbps, downloadMbps, latencyMs, packetLossPct float64,
	degraded bool,
	collectedAt, createdAt time.Time,
) *Sample {
	return &Sample{
		id:            id,
		uploadMbps:    clampNonNegative(uploadMbps),
		downloadMbps:  clampNonNegative(downloadMbps),
		latencyMs:     clampNonNegative(latencyMs),
		packetLossPct: clampNonNegative(packetLossPct),
		degraded:      degraded,
		collectedAt:   collectedAt,
		createdAt:     createdAt,
	}
}

func (s *Sample) ID() string {
	return s.id
}

func (s *Sample) UploadMbps() float64 {
	return s.uploadMbps
}

func (s *Sample) DownloadMbps() float64 {
	return s.downloadMbps
}

func (s *Sample) LatencyMs() float64 {
	return s.latencyMs
}

func (s *Sample) PacketLossPct() float64 {
	return s.packetLossPct
}

// Degraded reports whether the probe portion of this sample failed and
// the latency/packet-loss fields were zero-filled.
func (s *Sample) Degraded() bool {
	return s.degraded
}

func (s *Sample) CollectedAt() time.Time {
	return s.collectedAt
}

func (s *Sample) CreatedAt() time.Time {
	return s.createdAt
}

// TotalMbps is the combined upload+download throughput used by the forecaster.
func (s *Sample) TotalMbps() float64 {
	return s.uploadMbps + s.downloadMbps
}

// Age returns the time elapsed since collection.
func (s *Sample) Age() time.Duration {
	return time.Since(s.collectedAt)
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
