package dto

import (
	"time"

	"github.com/dreschagin/netpulse/internal/domain/service"
)

// AnomalyDTO carries one detected anomaly.
type AnomalyDTO struct {
	Type       string    `json:"type"`
	Severity   string    `json:"severity"`
	MetricType string    `json:"metric_type"`
	Value      float64   `json:"value"`
	ZScore     float64   `json:"z_score,omitempty"`
	Message    string    `json:"message"`
	DetectedAt time.Time `json:"detected_at"`
}

// BaselineDTO carries the learned profile of one metric.
type BaselineDTO struct {
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Observations int     `json:"observations"`
}

// BaselinesDTO groups the learned profiles of all tracked metrics.
type BaselinesDTO struct {
	Download BaselineDTO `json:"download"`
	Upload   BaselineDTO `json:"upload"`
	Latency  BaselineDTO `json:"latency"`
}

// RiskAssessmentDTO carries the aggregated risk of one evaluation.
type RiskAssessmentDTO struct {
	Level           string        `json:"level"`
	Anomalies       []*AnomalyDTO `json:"anomalies"`
	Recommendations []string      `json:"recommendations"`
	Learning        bool          `json:"learning"`
	Observations    int           `json:"observations"`
	Baselines       BaselinesDTO  `json:"baselines"`
	AssessedAt      time.Time     `json:"assessed_at"`
}

// ForecastPointDTO is one predicted hourly value.
type ForecastPointDTO struct {
	Timestamp  time.Time `json:"timestamp"`
	Predicted  float64   `json:"predicted"`
	Confidence float64   `json:"confidence"`
}

// ForecastDTO carries a 24-hour projection for one metric.
type ForecastDTO struct {
	MetricType  string              `json:"metric_type"`
	Trend       string              `json:"trend"`
	Slope       float64             `json:"slope"`
	Confidence  float64             `json:"confidence"`
	Points      []*ForecastPointDTO `json:"points"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// TrendReportDTO bundles the per-metric forecasts with overall insights.
type TrendReportDTO struct {
	Bandwidth   *ForecastDTO `json:"bandwidth"`
	Latency     *ForecastDTO `json:"latency"`
	Insights    []string     `json:"insights"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// FromAnomaly converts a domain anomaly into a DTO.
func FromAnomaly(a service.Anomaly) *AnomalyDTO {
	return &AnomalyDTO{
		Type:       a.Type,
		Severity:   a.Severity.String(),
		MetricType: a.MetricType.String(),
		Value:      a.Value,
		ZScore:     a.ZScore,
		Message:    a.Message,
		DetectedAt: a.DetectedAt,
	}
}

// FromRiskAssessment converts a domain risk assessment into a DTO.
func FromRiskAssessment(r service.RiskAssessment, learning bool, observations int, baselines service.Baselines) *RiskAssessmentDTO {
	anomalies := make([]*AnomalyDTO, len(r.Anomalies))
	for i, a := range r.Anomalies {
		anomalies[i] = FromAnomaly(a)
	}

	return &RiskAssessmentDTO{
		Level:           r.Level.String(),
		Anomalies:       anomalies,
		Recommendations: r.Recommendations,
		Learning:        learning,
		Observations:    observations,
		Baselines:       fromBaselines(baselines),
		AssessedAt:      r.AssessedAt,
	}
}

func fromBaselines(b service.Baselines) BaselinesDTO {
	return BaselinesDTO{
		Download: BaselineDTO{Mean: b.Download.Mean, StdDev: b.Download.StdDev, Observations: b.Download.Observations},
		Upload:   BaselineDTO{Mean: b.Upload.Mean, StdDev: b.Upload.StdDev, Observations: b.Upload.Observations},
		Latency:  BaselineDTO{Mean: b.Latency.Mean, StdDev: b.Latency.StdDev, Observations: b.Latency.Observations},
	}
}

// FromForecast converts a domain forecast into a DTO.
func FromForecast(f service.Forecast) *ForecastDTO {
	points := make([]*ForecastPointDTO, len(f.Points))
	for i, p := range f.Points {
		points[i] = &ForecastPointDTO{
			Timestamp:  p.Timestamp,
			Predicted:  p.Predicted,
			Confidence: p.Confidence,
		}
	}

	return &ForecastDTO{
		MetricType:  f.MetricType.String(),
		Trend:       f.Trend,
		Slope:       f.Slope,
		Confidence:  f.Confidence,
		Points:      points,
		GeneratedAt: f.GeneratedAt,
	}
}
