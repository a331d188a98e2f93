package service

import (
	"fmt"
	"math"
	"time"

	"github.com/dreschagin/netpulse/internal/domain/entity"
	"github.com/dreschagin/netpulse/internal/domain/valueobject"
)

// Anomaly type identifiers.
const (
	AnomalyBandwidthSpike      = "bandwidth_spike"
	AnomalyLatencySpike        = "latency_spike"
	AnomalyUnusualTimeActivity = "unusual_time_activity"
	AnomalyUnusualTrafficRatio = "unusual_traffic_ratio"
)

// Statistical detection requires this many observations even after the
// learning phase has completed.
const minObservationsForStats = 10

// Off-hours window and thresholds for the pattern rules.
const (
	offHoursStart        = 2
	offHoursEnd          = 5
	offHoursDownloadMbps = 50.0
	trafficRatioLimit    = 0.8
)

// Anomaly describes one detected deviation from learned baselines.
type Anomaly struct {
	Type       string
	Severity   valueobject.Severity
	MetricType valueobject.MetricType
	Value      float64
	ZScore     float64
	Message    string
	DetectedAt time.Time
}

// RiskAssessment aggregates the anomalies of one evaluation into an
// overall risk level with operator recommendations.
type RiskAssessment struct {
	Level           valueobject.RiskLevel
	Anomalies       []Anomaly
	Recommendations []string
	AssessedAt      time.Time
}

// Baseline is the learned profile of one metric.
type Baseline struct {
	Mean         float64
	StdDev       float64
	Observations int
}

// Baselines groups the learned profiles of all tracked metrics.
type Baselines struct {
	Download Baseline
	Upload   Baseline
	Latency  Baseline
}

// AnomalyDetector learns per-metric baselines from the sample stream and
// flags statistical outliers and suspicious traffic patterns (Domain
// Service). Not safe for concurrent use; it is owned by the collection
// loop and fed one sample per tick.
type AnomalyDetector struct {
	learningWindow int
	zThreshold     float64

	download *RollingWindow
	upload   *RollingWindow
	latency  *RollingWindow

	observations int
}

// NewAnomalyDetector creates a detector that stays in learning mode for
// learningWindow observations and flags values whose z-score exceeds
// zThreshold. Each metric keeps at most windowCapacity observations.
func NewAnomalyDetector(learningWindow int, zThreshold float64, windowCapacity int) *AnomalyDetector {
	return &AnomalyDetector{
		learningWindow: learningWindow,
		zThreshold:     zThreshold,
		download:       NewRollingWindow(windowCapacity),
		upload:         NewRollingWindow(windowCapacity),
		latency:        NewRollingWindow(windowCapacity),
	}
}

// Learning reports whether the detector is still building its baseline.
// Statistical checks are suppressed while learning; pattern checks are not.
func (d *AnomalyDetector) Learning() bool {
	return d.observations < d.learningWindow
}

// Observations returns how many samples the detector has seen.
func (d *AnomalyDetector) Observations() int {
	return d.observations
}

// Baselines returns the learned per-metric profiles. Published with every
// risk assessment so consumers can judge how settled the baselines are.
func (d *AnomalyDetector) Baselines() Baselines {
	return Baselines{
		Download: Baseline{Mean: d.download.Mean(), StdDev: d.download.StdDev(), Observations: d.download.Len()},
		Upload:   Baseline{Mean: d.upload.Mean(), StdDev: d.upload.StdDev(), Observations: d.upload.Len()},
		Latency:  Baseline{Mean: d.latency.Mean(), StdDev: d.latency.StdDev(), Observations: d.latency.Len()},
	}
}

// WindowLengths returns how many samples each rolling window currently
// holds, in download, upload, latency order.
func (d *AnomalyDetector) WindowLengths() (int, int, int) {
	return d.download.Len(), d.upload.Len(), d.latency.Len()
}

// Evaluate scores the sample against the learned baselines and pattern
// rules, then absorbs it into the rolling windows. The sample is compared
// against the history that preceded it, never against itself.
func (d *AnomalyDetector) Evaluate(sample *entity.Sample) []Anomaly {
	var anomalies []Anomaly

	if !d.Learning() {
		if a, ok := d.detectStatistical(
			d.download, sample.DownloadMbps(), sample.CollectedAt(),
			AnomalyBandwidthSpike, valueobject.Bandwidth,
			"Unusual bandwidth activity: %.1f Mbps (z-score: %.2f)",
		); ok {
			anomalies = append(anomalies, a)
		}

		if a, ok := d.detectStatistical(
			d.upload, sample.UploadMbps(), sample.CollectedAt(),
			AnomalyBandwidthSpike, valueobject.Bandwidth,
			"Unusual upload activity: %.1f Mbps (z-score: %.2f)",
		); ok {
			anomalies = append(anomalies, a)
		}

		if a, ok := d.detectStatistical(
			d.latency, sample.LatencyMs(), sample.CollectedAt(),
			AnomalyLatencySpike, valueobject.Latency,
			"Unusual latency detected: %.1f ms (z-score: %.2f)",
		); ok {
			anomalies = append(anomalies, a)
		}
	}

	anomalies = append(anomalies, d.detectPatterns(sample)...)

	d.download.Push(sample.DownloadMbps())
	d.upload.Push(sample.UploadMbps())
	d.latency.Push(sample.LatencyMs())
	d.observations++

	return anomalies
}

// detectStatistical flags current when its z-score against the window
// exceeds the configured threshold. A flat baseline (zero deviation)
// never produces an anomaly.
func (d *AnomalyDetector) detectStatistical(
	window *RollingWindow,
	current float64,
	detectedAt time.Time,
	anomalyType string,
	metricType valueobject.MetricType,
	messageFormat string,
) (Anomaly, bool) {
	if window.Len() < minObservationsForStats {
		return Anomaly{}, false
	}

	stdDev := window.StdDev()
	if stdDev == 0 {
		return Anomaly{}, false
	}

	zScore := math.Abs(current-window.Mean()) / stdDev
	if zScore <= d.zThreshold {
		return Anomaly{}, false
	}

	severity := valueobject.SeverityMedium
	if zScore > 3 {
		severity = valueobject.SeverityHigh
	}

	return Anomaly{
		Type:       anomalyType,
		Severity:   severity,
		MetricType: metricType,
		Value:      current,
		ZScore:     zScore,
		Message:    fmt.Sprintf(messageFormat, current, zScore),
		DetectedAt: detectedAt,
	}, true
}

// detectPatterns applies rule-based checks that do not need a learned
// baseline, so they run during the learning phase as well.
func (d *AnomalyDetector) detectPatterns(sample *entity.Sample) []Anomaly {
	var anomalies []Anomaly

	hour := sample.CollectedAt().Hour()
	if hour >= offHoursStart && hour <= offHoursEnd && sample.DownloadMbps() > offHoursDownloadMbps {
		anomalies = append(anomalies, Anomaly{
			Type:       AnomalyUnusualTimeActivity,
			Severity:   valueobject.SeverityMedium,
			MetricType: valueobject.Bandwidth,
			Value:      sample.DownloadMbps(),
			Message:    fmt.Sprintf("High download activity during off-hours: %.1f Mbps", sample.DownloadMbps()),
			DetectedAt: sample.CollectedAt(),
		})
	}

	if sample.UploadMbps() > 0 && sample.DownloadMbps() > 0 {
		ratio := sample.UploadMbps() / sample.DownloadMbps()
		if ratio > trafficRatioLimit {
			anomalies = append(anomalies, Anomaly{
				Type:       AnomalyUnusualTrafficRatio,
				Severity:   valueobject.SeverityMedium,
				MetricType: valueobject.Bandwidth,
				Value:      ratio,
				Message:    fmt.Sprintf("Unusual upload/download ratio: %.2f", ratio),
				DetectedAt: sample.CollectedAt(),
			})
		}
	}

	return anomalies
}

// AssessRisk folds a set of anomalies into an overall risk level.
func (d *AnomalyDetector) AssessRisk(anomalies []Anomaly) RiskAssessment {
	var high, medium int
	for _, a := range anomalies {
		switch a.Severity {
		case valueobject.SeverityHigh:
			high++
		case valueobject.SeverityMedium:
			medium++
		}
	}

	level := valueobject.RiskLow
	switch {
	case high >= 2:
		level = valueobject.RiskCritical
	case high >= 1 || medium >= 3:
		level = valueobject.RiskHigh
	case medium >= 1:
		level = valueobject.RiskMedium
	}

	return RiskAssessment{
		Level:           level,
		Anomalies:       anomalies,
		Recommendations: recommendationsFor(level, anomalies),
		AssessedAt:      time.Now(),
	}
}

func recommendationsFor(level valueobject.RiskLevel, anomalies []Anomaly) []string {
	if len(anomalies) == 0 {
		return []string{"Network behavior is within normal parameters"}
	}

	var recommendations []string
	if level == valueobject.RiskHigh || level == valueobject.RiskCritical {
		recommendations = append(recommendations, "Immediate investigation of network activity is recommended")
	}

	seen := make(map[string]bool)
	for _, a := range anomalies {
		if seen[a.Type] {
			continue
		}
		seen[a.Type] = true

		switch a.Type {
		case AnomalyBandwidthSpike:
			recommendations = append(recommendations, "Check for unexpected large transfers or streaming sessions")
		case AnomalyLatencySpike:
			recommendations = append(recommendations, "Inspect network congestion and routing to the probe target")
		case AnomalyUnusualTimeActivity:
			recommendations = append(recommendations, "Verify scheduled backups and updates running during off-hours")
		case AnomalyUnusualTrafficRatio:
			recommendations = append(recommendations, "High upload share may indicate sync jobs or data exfiltration")
		}
	}

	return recommendations
}
