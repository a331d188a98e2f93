package postgres

import (
	"time"

	"github.com/dreschagin/netpulse/internal/domain/entity"
	"github.com/dreschagin/netpulse/internal/domain/valueobject"
)

// SampleDBModel represents a network sample row.
type SampleDBModel struct {
	ID            string
	UploadMbps    float64
	DownloadMbps  float64
	LatencyMs     float64
	PacketLossPct float64
	Degraded      bool
	CollectedAt   time.Time
	CreatedAt     time.Time
}

// AlertDBModel represents an alert row.
type AlertDBModel struct {
	ID             string
	Kind           string
	MetricType     string
	Message        string
	MetricValue    float64
	ThresholdValue float64
	CreatedAt      time.Time
	Resolved       bool
}

// ToSampleDBModel converts a Domain Entity into a DB model.
func ToSampleDBModel(sample *entity.Sample) *SampleDBModel {
	return &SampleDBModel{
		ID:            sample.ID(),
		UploadMbps:    sample.UploadMbps(),
		DownloadMbps:  sample.DownloadMbps(),
		LatencyMs:     sample.LatencyMs(),
		PacketLossPct: sample.PacketLossPct(),
		Degraded:      sample.Degraded(),
		CollectedAt:   sample.CollectedAt(),
		CreatedAt:     sample.CreatedAt(),
	}
}

// ToSampleEntity converts a DB model into a Domain Entity.
func ToSampleEntity(model *SampleDBModel) *entity.Sample {
	return entity.ReconstructSample(
		model.ID,
		model.UploadMbps,
		model.DownloadMbps,
		model.LatencyMs,
		model.PacketLossPct,
		model.Degraded,
		model.CollectedAt,
		model.CreatedAt,
	)
}

// ToAlertDBModel converts a Domain Entity into a DB model.
func ToAlertDBModel(alert *entity.Alert) *AlertDBModel {
	return &AlertDBModel{
		ID:             alert.ID(),
		Kind:           alert.Kind().String(),
		MetricType:     alert.MetricType().String(),
		Message:        alert.Message(),
		MetricValue:    alert.Value(),
		ThresholdValue: alert.Threshold(),
		CreatedAt:      alert.CreatedAt(),
		Resolved:       alert.Resolved(),
	}
}

// ToAlertEntity converts a DB model into a Domain Entity.
func ToAlertEntity(model *AlertDBModel) *entity.Alert {
	return entity.ReconstructAlert(
		model.ID,
		valueobject.AlertKind(model.Kind),
		valueobject.MetricType(model.MetricType),
		model.Message,
		model.MetricValue,
		model.ThresholdValue,
		model.CreatedAt,
		model.Resolved,
	)
}

// ScanSampleRow scans one DB row into a SampleDBModel.
func ScanSampleRow(row interface {
	Scan(dest ...interface{}) error
}) (*SampleDBModel, error) {
	var model SampleDBModel

	err := row.Scan(
		&model.ID,
		&model.UploadMbps,
		&model.DownloadMbps,
		&model.LatencyMs,
		&model.PacketLossPct,
		&model.Degraded,
		&model.CollectedAt,
		&model.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &model, nil
}

// ScanAlertRow scans one DB row into an AlertDBModel.
func ScanAlertRow(row interface {
	Scan(dest ...interface{}) error
}) (*AlertDBModel, error) {
	var model AlertDBModel

	err := row.Scan(
		&model.ID,
		&model.Kind,
		&model.MetricType,
		&model.Message,
		&model.MetricValue,
		&model.ThresholdValue,
		&model.CreatedAt,
		&model.Resolved,
	)
	if err != nil {
		return nil, err
	}

	return &model, nil
}
