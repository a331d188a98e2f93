package dto

import (
	"time"

	"github.com/dreschagin/netpulse/internal/domain/entity"
)

// SampleDTO carries one network sample between layers.
type SampleDTO struct {
	ID            string    `json:"id"`
	UploadMbps    float64   `json:"upload_mbps"`
	DownloadMbps  float64   `json:"download_mbps"`
	TotalMbps     float64   `json:"total_mbps"`
	LatencyMs     float64   `json:"latency_ms"`
	PacketLossPct float64   `json:"packet_loss_pct"`
	Degraded      bool      `json:"degraded,omitempty"`
	CollectedAt   time.Time `json:"collected_at"`
}

// FromSample converts a Domain Entity into a DTO.
func FromSample(sample *entity.Sample) *SampleDTO {
	return &SampleDTO{
		ID:            sample.ID(),
		UploadMbps:    sample.UploadMbps(),
		DownloadMbps:  sample.DownloadMbps(),
		TotalMbps:     sample.TotalMbps(),
		LatencyMs:     sample.LatencyMs(),
		PacketLossPct: sample.PacketLossPct(),
		Degraded:      sample.Degraded(),
		CollectedAt:   sample.CollectedAt(),
	}
}

// ToSampleDTOs converts a slice of entities into DTOs.
func ToSampleDTOs(samples []*entity.Sample) []*SampleDTO {
	dtos := make([]*SampleDTO, len(samples))
	for i, s := range samples {
		dtos[i] = FromSample(s)
	}
	return dtos
}
