package service

import (
	"fmt"
	"math"
	"time"

	"github.com/dreschagin/netpulse/internal/domain/valueobject"
)

// Forecasting parameters. The seasonal profile is a daily sine curve:
// bandwidth peaks in the evening, latency in the afternoon.
const (
	minHistoryForForecast = 20
	maxHistoryForForecast = 50
	forecastHorizonHours  = 24

	bandwidthSeasonalAmplitude = 0.3
	bandwidthSeasonalPeakShift = 6
	latencySeasonalAmplitude   = 0.2
	latencySeasonalPeakShift   = 14

	trendSlopeEpsilon = 0.1
)

// Trend labels.
const (
	TrendIncreasing       = "increasing"
	TrendDecreasing       = "decreasing"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// ForecastPoint is one predicted hourly value.
type ForecastPoint struct {
	Timestamp  time.Time
	Predicted  float64
	Confidence float64
}

// Forecast is a 24-hour projection for one metric. Confidence is the
// confidence of the nearest point and 0 when history was insufficient.
type Forecast struct {
	MetricType  valueobject.MetricType
	Trend       string
	Slope       float64
	Confidence  float64
	Points      []ForecastPoint
	GeneratedAt time.Time
}

// TrendForecaster projects metric values over the next 24 hours using a
// linear trend fit scaled by a time-of-day seasonal profile (Domain
// Service). Stateless; history is supplied by the caller.
type TrendForecaster struct{}

func NewTrendForecaster() *TrendForecaster {
	return &TrendForecaster{}
}

// Forecast projects history forward by 24 hourly points starting at now.
// Fewer than 20 observations yields an empty forecast with confidence 0.
// Only the most recent 50 observations contribute to the fit.
func (f *TrendForecaster) Forecast(metricType valueobject.MetricType, history []float64, now time.Time) Forecast {
	if len(history) < minHistoryForForecast {
		return Forecast{
			MetricType:  metricType,
			Trend:       TrendInsufficientData,
			Confidence:  0,
			GeneratedAt: now,
		}
	}

	if len(history) > maxHistoryForForecast {
		history = history[len(history)-maxHistoryForForecast:]
	}

	slope := linearSlope(history)
	last := history[len(history)-1]

	amplitude, peakShift := seasonalProfile(metricType)

	points := make([]ForecastPoint, 0, forecastHorizonHours)
	for i := 1; i <= forecastHorizonHours; i++ {
		hour := (now.Hour() + i) % 24
		seasonal := 1 + amplitude*sinDaily(hour, peakShift)

		predicted := (last + slope*float64(i)) * seasonal
		if predicted < 0 {
			predicted = 0
		}

		confidence := 0.9 - 0.02*float64(i)
		if confidence < 0.1 {
			confidence = 0.1
		}

		points = append(points, ForecastPoint{
			Timestamp:  now.Add(time.Duration(i) * time.Hour),
			Predicted:  predicted,
			Confidence: confidence,
		})
	}

	return Forecast{
		MetricType:  metricType,
		Trend:       trendLabel(slope),
		Slope:       slope,
		Confidence:  points[0].Confidence,
		Points:      points,
		GeneratedAt: now,
	}
}

// Insights summarizes a bandwidth and a latency forecast into short
// operator-facing statements.
func (f *TrendForecaster) Insights(bandwidth, latency Forecast) []string {
	var insights []string

	switch {
	case bandwidth.Slope > 0.5:
		insights = append(insights, fmt.Sprintf("Bandwidth usage is trending up (%.2f Mbps/interval); capacity may need review", bandwidth.Slope))
	case bandwidth.Slope < -0.5:
		insights = append(insights, fmt.Sprintf("Bandwidth usage is trending down (%.2f Mbps/interval)", bandwidth.Slope))
	}

	switch {
	case latency.Slope > 0.1:
		insights = append(insights, fmt.Sprintf("Latency is degrading (%.2f ms/interval); investigate before it affects users", latency.Slope))
	case latency.Slope < -0.1:
		insights = append(insights, fmt.Sprintf("Latency is improving (%.2f ms/interval)", latency.Slope))
	}

	if absFloat(bandwidth.Slope) < 0.1 && absFloat(latency.Slope) < 0.1 {
		insights = append(insights, "Network performance is stable with no significant trends")
	}

	return insights
}

// linearSlope fits an ordinary least squares line over the values indexed
// 0..n-1 and returns its slope. A degenerate fit yields 0.
func linearSlope(values []float64) float64 {
	n := float64(len(values))

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func seasonalProfile(metricType valueobject.MetricType) (amplitude float64, peakShift int) {
	if metricType == valueobject.Latency {
		return latencySeasonalAmplitude, latencySeasonalPeakShift
	}
	return bandwidthSeasonalAmplitude, bandwidthSeasonalPeakShift
}

// sinDaily maps an hour of day onto a sine wave with a 24-hour period,
// shifted so the curve peaks 6 hours after peakShift.
func sinDaily(hour, peakShift int) float64 {
	return math.Sin(float64(hour-peakShift) * math.Pi / 12)
}

func trendLabel(slope float64) string {
	switch {
	case slope > trendSlopeEpsilon:
		return TrendIncreasing
	case slope < -trendSlopeEpsilon:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
