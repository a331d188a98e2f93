package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/dreschagin/netpulse/internal/application/dto"
	"github.com/dreschagin/netpulse/internal/domain/repository"
	"github.com/dreschagin/netpulse/internal/domain/service"
	"github.com/dreschagin/netpulse/internal/domain/valueobject"
	"github.com/dreschagin/netpulse/pkg/logger"
)

// History horizon and cap for one forecast query.
const (
	trendHistoryWindow = 24 * time.Hour
	trendHistoryLimit  = 1000
)

// GetTrendReportUseCase builds the 24-hour bandwidth and latency
// forecasts from persisted history.
type GetTrendReportUseCase struct {
	samples    repository.SampleRepository
	forecaster *service.TrendForecaster
	logger     *logger.Logger
}

func NewGetTrendReportUseCase(
	samples repository.SampleRepository,
	forecaster *service.TrendForecaster,
	logger *logger.Logger,
) *GetTrendReportUseCase {
	return &GetTrendReportUseCase{
		samples:    samples,
		forecaster: forecaster,
		logger:     logger,
	}
}

// Execute forecasts total bandwidth and latency over the next 24 hours.
// Insufficient history yields empty forecasts, never an error.
func (uc *GetTrendReportUseCase) Execute(ctx context.Context) (*dto.TrendReportDTO, error) {
	since := time.Now().Add(-trendHistoryWindow)
	samples, err := uc.samples.FindSince(ctx, since, trendHistoryLimit)
	if err != nil {
		uc.logger.Error("Failed to fetch history for forecasting", err)
		return nil, fmt.Errorf("failed to fetch forecast history: %w", err)
	}

	// Repository returns newest first; the fit needs ascending time.
	bandwidth := make([]float64, len(samples))
	latency := make([]float64, len(samples))
	for i, s := range samples {
		j := len(samples) - 1 - i
		bandwidth[j] = s.TotalMbps()
		latency[j] = s.LatencyMs()
	}

	now := time.Now()
	bandwidthForecast := uc.forecaster.Forecast(valueobject.Bandwidth, bandwidth, now)
	latencyForecast := uc.forecaster.Forecast(valueobject.Latency, latency, now)

	return &dto.TrendReportDTO{
		Bandwidth:   dto.FromForecast(bandwidthForecast),
		Latency:     dto.FromForecast(latencyForecast),
		Insights:    uc.forecaster.Insights(bandwidthForecast, latencyForecast),
		GeneratedAt: now,
	}, nil
}
