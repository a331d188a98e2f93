package service

import (
	"math"
	"testing"
	"time"

	"github.com/dreschagin/netpulse/internal/domain/entity"
	"github.com/dreschagin/netpulse/internal/domain/valueobject"
	"github.com/google/uuid"
)

// sampleAt builds a sample with a controlled collection time so tests can
// exercise the hour-of-day pattern rules.
func sampleAt(collectedAt time.Time, upload, download, latency, packetLoss float64) *entity.Sample {
	return entity.ReconstructSample(
		uuid.New().String(),
		upload, download, latency, packetLoss,
		false,
		collectedAt, collectedAt,
	)
}

// midday avoids the off-hours pattern rule in tests that target the
// statistical path.
var midday = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// feedBaseline pushes alternating 45/55 downloads (mean 50, std dev 5)
// with a constant latency so only bandwidth statistics can fire.
func feedBaseline(d *AnomalyDetector, pairs int) {
	for i := 0; i < pairs; i++ {
		d.Evaluate(sampleAt(midday, 0, 45, 20, 0))
		d.Evaluate(sampleAt(midday, 0, 55, 20, 0))
	}
}

func TestAnomalyDetector_NoStatisticalAnomalyWhileLearning(t *testing.T) {
	d := NewAnomalyDetector(100, 2.5, 1000)

	for i := 0; i < 99; i++ {
		d.Evaluate(sampleAt(midday, 0, 50, 20, 0))
	}

	if !d.Learning() {
		t.Fatal("expected detector to still be learning after 99 observations")
	}

	anomalies := d.Evaluate(sampleAt(midday, 0, 500, 20, 0))
	if len(anomalies) != 0 {
		t.Errorf("expected no anomalies during learning, got %d", len(anomalies))
	}
}

func TestAnomalyDetector_NoStatisticalAnomalyUnderMinObservations(t *testing.T) {
	d := NewAnomalyDetector(5, 2.5, 1000)

	// Past the learning window but below the 10-observation floor.
	for i := 0; i < 9; i++ {
		d.Evaluate(sampleAt(midday, 0, 50, 20, 0))
	}

	if d.Learning() {
		t.Fatal("expected learning phase to be over")
	}

	anomalies := d.Evaluate(sampleAt(midday, 0, 500, 20, 0))
	for _, a := range anomalies {
		if a.Type == AnomalyBandwidthSpike {
			t.Error("expected no statistical anomaly with fewer than 10 observations")
		}
	}
}

func TestAnomalyDetector_ZeroDeviationNeverFlags(t *testing.T) {
	d := NewAnomalyDetector(10, 2.5, 1000)

	for i := 0; i < 20; i++ {
		d.Evaluate(sampleAt(midday, 0, 50, 20, 0))
	}

	anomalies := d.Evaluate(sampleAt(midday, 0, 500, 20, 0))
	for _, a := range anomalies {
		if a.Type == AnomalyBandwidthSpike {
			t.Error("expected no anomaly when the baseline has zero deviation")
		}
	}
}

func TestAnomalyDetector_BandwidthSpikeSeverity(t *testing.T) {
	tests := []struct {
		name         string
		download     float64
		wantAnomaly  bool
		wantSeverity valueobject.Severity
		wantZScore   float64
	}{
		{
			name:        "within threshold",
			download:    60, // z = 2.0
			wantAnomaly: false,
		},
		{
			name:         "moderate outlier is medium",
			download:     64, // z = 2.8
			wantAnomaly:  true,
			wantSeverity: valueobject.SeverityMedium,
			wantZScore:   2.8,
		},
		{
			name:         "extreme outlier is high",
			download:     75, // z = 5.0
			wantAnomaly:  true,
			wantSeverity: valueobject.SeverityHigh,
			wantZScore:   5.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewAnomalyDetector(10, 2.5, 1000)
			feedBaseline(d, 5)

			anomalies := d.Evaluate(sampleAt(midday, 0, tt.download, 20, 0))

			var spike *Anomaly
			for i := range anomalies {
				if anomalies[i].Type == AnomalyBandwidthSpike {
					spike = &anomalies[i]
				}
			}

			if !tt.wantAnomaly {
				if spike != nil {
					t.Fatalf("expected no bandwidth spike, got z-score %.2f", spike.ZScore)
				}
				return
			}
			if spike == nil {
				t.Fatal("expected a bandwidth spike anomaly")
			}
			if spike.Severity != tt.wantSeverity {
				t.Errorf("expected severity %s, got %s", tt.wantSeverity, spike.Severity)
			}
			if math.Abs(spike.ZScore-tt.wantZScore) > 1e-9 {
				t.Errorf("expected z-score %.2f, got %v", tt.wantZScore, spike.ZScore)
			}
			if spike.MetricType != valueobject.Bandwidth {
				t.Errorf("expected bandwidth metric, got %s", spike.MetricType)
			}
		})
	}
}

func TestAnomalyDetector_UploadSpike(t *testing.T) {
	d := NewAnomalyDetector(10, 2.5, 1000)

	// Alternating 18/22 Mbps uploads: mean 20, std dev 2. Downloads stay
	// constant and well above the uploads so neither the download path nor
	// the traffic ratio rule can fire.
	for i := 0; i < 25; i++ {
		d.Evaluate(sampleAt(midday, 18, 100, 20, 0))
		d.Evaluate(sampleAt(midday, 22, 100, 20, 0))
	}

	anomalies := d.Evaluate(sampleAt(midday, 50, 100, 20, 0)) // z = 15.0

	if len(anomalies) != 1 {
		t.Fatalf("expected 1 anomaly, got %d: %+v", len(anomalies), anomalies)
	}
	if anomalies[0].Type != AnomalyBandwidthSpike {
		t.Errorf("expected bandwidth spike, got %s", anomalies[0].Type)
	}
	if anomalies[0].Severity != valueobject.SeverityHigh {
		t.Errorf("expected HIGH severity, got %s", anomalies[0].Severity)
	}
	if math.Abs(anomalies[0].ZScore-15) > 1e-9 {
		t.Errorf("expected z-score 15, got %v", anomalies[0].ZScore)
	}
	if anomalies[0].Value != 50 {
		t.Errorf("expected value 50, got %v", anomalies[0].Value)
	}
}

func TestAnomalyDetector_LatencySpike(t *testing.T) {
	d := NewAnomalyDetector(10, 2.5, 1000)

	// Alternating 15/25 ms: mean 20, std dev 5. Downloads constant so the
	// bandwidth path stays silent.
	for i := 0; i < 5; i++ {
		d.Evaluate(sampleAt(midday, 0, 40, 15, 0))
		d.Evaluate(sampleAt(midday, 0, 40, 25, 0))
	}

	anomalies := d.Evaluate(sampleAt(midday, 0, 40, 45, 0)) // z = 5.0

	if len(anomalies) != 1 {
		t.Fatalf("expected 1 anomaly, got %d", len(anomalies))
	}
	if anomalies[0].Type != AnomalyLatencySpike {
		t.Errorf("expected latency spike, got %s", anomalies[0].Type)
	}
	if anomalies[0].Severity != valueobject.SeverityHigh {
		t.Errorf("expected HIGH severity, got %s", anomalies[0].Severity)
	}
}

func TestAnomalyDetector_PatternRulesRunDuringLearning(t *testing.T) {
	d := NewAnomalyDetector(100, 2.5, 1000)
	nightTime := time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)

	anomalies := d.Evaluate(sampleAt(nightTime, 0, 60, 20, 0))

	if len(anomalies) != 1 {
		t.Fatalf("expected 1 anomaly, got %d", len(anomalies))
	}
	if anomalies[0].Type != AnomalyUnusualTimeActivity {
		t.Errorf("expected unusual_time_activity, got %s", anomalies[0].Type)
	}
	if anomalies[0].Severity != valueobject.SeverityMedium {
		t.Errorf("expected MEDIUM severity, got %s", anomalies[0].Severity)
	}
}

func TestAnomalyDetector_OffHoursRule(t *testing.T) {
	tests := []struct {
		name     string
		hour     int
		download float64
		want     bool
	}{
		{name: "inside window above threshold", hour: 3, download: 60, want: true},
		{name: "window lower bound", hour: 2, download: 60, want: true},
		{name: "window upper bound", hour: 5, download: 60, want: true},
		{name: "before window", hour: 1, download: 60, want: false},
		{name: "after window", hour: 6, download: 60, want: false},
		{name: "inside window below threshold", hour: 3, download: 50, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewAnomalyDetector(100, 2.5, 1000)
			at := time.Date(2025, 6, 1, tt.hour, 30, 0, 0, time.UTC)

			anomalies := d.Evaluate(sampleAt(at, 0, tt.download, 20, 0))

			got := false
			for _, a := range anomalies {
				if a.Type == AnomalyUnusualTimeActivity {
					got = true
				}
			}
			if got != tt.want {
				t.Errorf("expected off-hours anomaly=%v, got %v", tt.want, got)
			}
		})
	}
}

func TestAnomalyDetector_TrafficRatioRule(t *testing.T) {
	tests := []struct {
		name     string
		upload   float64
		download float64
		want     bool
	}{
		{name: "ratio above limit", upload: 9, download: 10, want: true},
		{name: "ratio at limit", upload: 8, download: 10, want: false},
		{name: "zero upload", upload: 0, download: 10, want: false},
		{name: "zero download", upload: 9, download: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewAnomalyDetector(100, 2.5, 1000)

			anomalies := d.Evaluate(sampleAt(midday, tt.upload, tt.download, 20, 0))

			got := false
			for _, a := range anomalies {
				if a.Type == AnomalyUnusualTrafficRatio {
					got = true
				}
			}
			if got != tt.want {
				t.Errorf("expected ratio anomaly=%v, got %v", tt.want, got)
			}
		})
	}
}

func TestAnomalyDetector_AssessRisk(t *testing.T) {
	high := Anomaly{Type: AnomalyBandwidthSpike, Severity: valueobject.SeverityHigh}
	medium := Anomaly{Type: AnomalyUnusualTrafficRatio, Severity: valueobject.SeverityMedium}

	tests := []struct {
		name      string
		anomalies []Anomaly
		want      valueobject.RiskLevel
	}{
		{name: "two high is critical", anomalies: []Anomaly{high, high}, want: valueobject.RiskCritical},
		{name: "one high is high", anomalies: []Anomaly{high}, want: valueobject.RiskHigh},
		{name: "three medium is high", anomalies: []Anomaly{medium, medium, medium}, want: valueobject.RiskHigh},
		{name: "one medium is medium", anomalies: []Anomaly{medium}, want: valueobject.RiskMedium},
		{name: "no anomalies is low", anomalies: nil, want: valueobject.RiskLow},
	}

	d := NewAnomalyDetector(100, 2.5, 1000)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assessment := d.AssessRisk(tt.anomalies)

			if assessment.Level != tt.want {
				t.Errorf("expected risk %s, got %s", tt.want, assessment.Level)
			}
			if len(assessment.Recommendations) == 0 {
				t.Error("expected at least one recommendation")
			}
		})
	}
}

func TestAnomalyDetector_RecommendationsDeduplicatedByType(t *testing.T) {
	d := NewAnomalyDetector(100, 2.5, 1000)
	medium := Anomaly{Type: AnomalyUnusualTrafficRatio, Severity: valueobject.SeverityMedium}

	assessment := d.AssessRisk([]Anomaly{medium, medium})

	if len(assessment.Recommendations) != 1 {
		t.Errorf("expected 1 deduplicated recommendation, got %d: %v",
			len(assessment.Recommendations), assessment.Recommendations)
	}
}

func TestAnomalyDetector_BaselineReflectsObservations(t *testing.T) {
	d := NewAnomalyDetector(10, 2.5, 1000)
	feedBaseline(d, 5)

	baseline := d.Baselines().Download
	if baseline.Observations != 10 {
		t.Fatalf("expected 10 observations, got %d", baseline.Observations)
	}
	if baseline.Mean != 50 {
		t.Errorf("expected mean 50, got %v", baseline.Mean)
	}
	if math.Abs(baseline.StdDev-5) > 1e-9 {
		t.Errorf("expected std dev 5, got %v", baseline.StdDev)
	}

	down, up, lat := d.WindowLengths()
	if down != 10 || up != 10 || lat != 10 {
		t.Errorf("expected all windows at 10, got %d/%d/%d", down, up, lat)
	}
}
