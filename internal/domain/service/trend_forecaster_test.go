package service

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/dreschagin/netpulse/internal/domain/valueobject"
)

var forecastNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func linearHistory(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func TestTrendForecaster_InsufficientHistory(t *testing.T) {
	f := NewTrendForecaster()

	forecast := f.Forecast(valueobject.Bandwidth, linearHistory(19, 10, 1), forecastNow)

	if forecast.Trend != TrendInsufficientData {
		t.Errorf("expected trend %q, got %q", TrendInsufficientData, forecast.Trend)
	}
	if forecast.Confidence != 0 {
		t.Errorf("expected confidence 0, got %v", forecast.Confidence)
	}
	if len(forecast.Points) != 0 {
		t.Errorf("expected no points, got %d", len(forecast.Points))
	}
}

func TestTrendForecaster_ProducesFullHorizon(t *testing.T) {
	f := NewTrendForecaster()

	forecast := f.Forecast(valueobject.Bandwidth, linearHistory(30, 10, 0.5), forecastNow)

	if len(forecast.Points) != 24 {
		t.Fatalf("expected 24 points, got %d", len(forecast.Points))
	}
	for i, p := range forecast.Points {
		wantTime := forecastNow.Add(time.Duration(i+1) * time.Hour)
		if !p.Timestamp.Equal(wantTime) {
			t.Errorf("point %d: expected timestamp %v, got %v", i, wantTime, p.Timestamp)
		}
		if p.Predicted < 0 {
			t.Errorf("point %d: predicted value must be non-negative, got %v", i, p.Predicted)
		}
	}
}

func TestTrendForecaster_ConfidenceDecaysStrictly(t *testing.T) {
	f := NewTrendForecaster()

	forecast := f.Forecast(valueobject.Latency, linearHistory(30, 20, 0), forecastNow)

	if forecast.Confidence != forecast.Points[0].Confidence {
		t.Errorf("expected forecast confidence to match first point, got %v vs %v",
			forecast.Confidence, forecast.Points[0].Confidence)
	}
	for i := 1; i < len(forecast.Points); i++ {
		if forecast.Points[i].Confidence >= forecast.Points[i-1].Confidence {
			t.Fatalf("confidence must strictly decrease: point %d has %v after %v",
				i, forecast.Points[i].Confidence, forecast.Points[i-1].Confidence)
		}
	}
	last := forecast.Points[len(forecast.Points)-1]
	if last.Confidence < 0.1 {
		t.Errorf("confidence must not drop below 0.1, got %v", last.Confidence)
	}
}

func TestTrendForecaster_SlopeAndTrendLabels(t *testing.T) {
	tests := []struct {
		name      string
		history   []float64
		wantSlope float64
		wantTrend string
	}{
		{name: "increasing", history: linearHistory(30, 10, 2), wantSlope: 2, wantTrend: TrendIncreasing},
		{name: "decreasing", history: linearHistory(30, 100, -2), wantSlope: -2, wantTrend: TrendDecreasing},
		{name: "flat", history: linearHistory(30, 50, 0), wantSlope: 0, wantTrend: TrendStable},
	}

	f := NewTrendForecaster()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forecast := f.Forecast(valueobject.Bandwidth, tt.history, forecastNow)

			if math.Abs(forecast.Slope-tt.wantSlope) > 1e-9 {
				t.Errorf("expected slope %v, got %v", tt.wantSlope, forecast.Slope)
			}
			if forecast.Trend != tt.wantTrend {
				t.Errorf("expected trend %q, got %q", tt.wantTrend, forecast.Trend)
			}
		})
	}
}

func TestTrendForecaster_UsesOnlyRecentHistory(t *testing.T) {
	f := NewTrendForecaster()

	// Old plateau followed by a clean linear ramp. Only the last 50
	// observations may influence the fit.
	history := make([]float64, 0, 110)
	for i := 0; i < 60; i++ {
		history = append(history, 1000)
	}
	history = append(history, linearHistory(50, 0, 1)...)

	forecast := f.Forecast(valueobject.Bandwidth, history, forecastNow)

	if math.Abs(forecast.Slope-1) > 1e-9 {
		t.Errorf("expected slope 1 from recent ramp, got %v", forecast.Slope)
	}
}

func TestTrendForecaster_PredictionsFlooredAtZero(t *testing.T) {
	f := NewTrendForecaster()

	// Steep decline drives the linear projection negative well within
	// the horizon.
	forecast := f.Forecast(valueobject.Bandwidth, linearHistory(30, 100, -10), forecastNow)

	floored := false
	for _, p := range forecast.Points {
		if p.Predicted == 0 {
			floored = true
		}
		if p.Predicted < 0 {
			t.Fatalf("predicted value went negative: %v", p.Predicted)
		}
	}
	if !floored {
		t.Error("expected at least one prediction floored at zero")
	}
}

func TestTrendForecaster_SeasonalProfileShapesPredictions(t *testing.T) {
	f := NewTrendForecaster()
	history := linearHistory(30, 100, 0)

	forecast := f.Forecast(valueobject.Bandwidth, history, forecastNow)

	// A flat history makes the seasonal factor the only variation:
	// bandwidth peaks when sin((hour-6)*pi/12) is 1, i.e. at hour 12.
	var peak, trough ForecastPoint
	peak, trough = forecast.Points[0], forecast.Points[0]
	for _, p := range forecast.Points {
		if p.Predicted > peak.Predicted {
			peak = p
		}
		if p.Predicted < trough.Predicted {
			trough = p
		}
	}

	if peak.Timestamp.Hour() != 12 {
		t.Errorf("expected bandwidth peak at hour 12, got %d", peak.Timestamp.Hour())
	}
	if trough.Timestamp.Hour() != 0 {
		t.Errorf("expected bandwidth trough at hour 0, got %d", trough.Timestamp.Hour())
	}
	if math.Abs(peak.Predicted-130) > 1e-9 {
		t.Errorf("expected peak 130 with amplitude 0.3, got %v", peak.Predicted)
	}
}

func TestTrendForecaster_Insights(t *testing.T) {
	tests := []struct {
		name           string
		bandwidthSlope float64
		latencySlope   float64
		wantContains   string
	}{
		{name: "rising bandwidth", bandwidthSlope: 0.8, wantContains: "trending up"},
		{name: "falling bandwidth", bandwidthSlope: -0.8, wantContains: "trending down"},
		{name: "degrading latency", latencySlope: 0.2, wantContains: "degrading"},
		{name: "improving latency", latencySlope: -0.2, wantContains: "improving"},
		{name: "everything flat", wantContains: "stable"},
	}

	f := NewTrendForecaster()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bandwidth := Forecast{MetricType: valueobject.Bandwidth, Slope: tt.bandwidthSlope}
			latency := Forecast{MetricType: valueobject.Latency, Slope: tt.latencySlope}

			insights := f.Insights(bandwidth, latency)

			if len(insights) == 0 {
				t.Fatal("expected at least one insight")
			}
			found := false
			for _, s := range insights {
				if strings.Contains(s, tt.wantContains) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected an insight containing %q, got %v", tt.wantContains, insights)
			}
		})
	}
}
