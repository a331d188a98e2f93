package dto

import (
	"time"

	"github.com/dreschagin/netpulse/internal/domain/entity"
)

// AlertDTO carries one threshold alert between layers.
type AlertDTO struct {
	ID             string    `json:"id"`
	Kind           string    `json:"kind"`
	MetricType     string    `json:"metric_type"`
	Message        string    `json:"message"`
	Value          float64   `json:"value"`
	ThresholdValue float64   `json:"threshold_value"`
	CreatedAt      time.Time `json:"created_at"`
	Resolved       bool      `json:"resolved"`
}

// FromAlert converts a Domain Entity into a DTO.
func FromAlert(alert *entity.Alert) *AlertDTO {
	return &AlertDTO{
		ID:             alert.ID(),
		Kind:           alert.Kind().String(),
		MetricType:     alert.MetricType().String(),
		Message:        alert.Message(),
		Value:          alert.Value(),
		ThresholdValue: alert.Threshold(),
		CreatedAt:      alert.CreatedAt(),
		Resolved:       alert.Resolved(),
	}
}

// ToAlertDTOs converts a slice of entities into DTOs.
func ToAlertDTOs(alerts []*entity.Alert) []*AlertDTO {
	dtos := make([]*AlertDTO, len(alerts))
	for i, a := range alerts {
		dtos[i] = FromAlert(a)
	}
	return dtos
}
