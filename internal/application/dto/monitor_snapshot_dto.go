package dto

import "time"

// MonitorSnapshotDTO is the full state of one collection tick. It is the
// payload pushed to WebSocket clients and returned by the current-state
// endpoint.
type MonitorSnapshotDTO struct {
	Timestamp time.Time          `json:"timestamp"`
	Sample    *SampleDTO         `json:"sample"`
	Alerts    []*AlertDTO        `json:"alerts"`
	Risk      *RiskAssessmentDTO `json:"risk"`
	Summary   *SnapshotSummary   `json:"summary"`
}

// SnapshotSummary gives clients a cheap way to render overall status
// without walking the alert list.
type SnapshotSummary struct {
	AlertCount    int    `json:"alert_count"`
	AnomalyCount  int    `json:"anomaly_count"`
	Degraded      bool   `json:"degraded"`
	OverallStatus string `json:"overall_status"` // "healthy", "warning", "critical"
}

// NewMonitorSnapshotDTO assembles the broadcast payload for one tick.
func NewMonitorSnapshotDTO(sample *SampleDTO, alerts []*AlertDTO, risk *RiskAssessmentDTO) *MonitorSnapshotDTO {
	summary := &SnapshotSummary{
		AlertCount: len(alerts),
		Degraded:   sample != nil && sample.Degraded,
	}
	if risk != nil {
		summary.AnomalyCount = len(risk.Anomalies)
	}

	switch {
	case hasErrorAlert(alerts) || (risk != nil && (risk.Level == "CRITICAL" || risk.Level == "HIGH")):
		summary.OverallStatus = "critical"
	case len(alerts) > 0 || summary.AnomalyCount > 0 || summary.Degraded:
		summary.OverallStatus = "warning"
	default:
		summary.OverallStatus = "healthy"
	}

	return &MonitorSnapshotDTO{
		Timestamp: time.Now(),
		Sample:    sample,
		Alerts:    alerts,
		Risk:      risk,
		Summary:   summary,
	}
}

func hasErrorAlert(alerts []*AlertDTO) bool {
	for _, a := range alerts {
		if a.Kind == "error" {
			return true
		}
	}
	return false
}
