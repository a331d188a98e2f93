package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/dreschagin/netpulse/internal/application/dto"
	"github.com/dreschagin/netpulse/internal/application/usecase"
	"github.com/dreschagin/netpulse/internal/domain/valueobject"
	"github.com/dreschagin/netpulse/internal/monitor"
	"github.com/dreschagin/netpulse/pkg/logger"
)

// NetworkAPIHandler serves the network measurement endpoints: the latest
// snapshot, historical samples, risk assessment and trend forecast.
type NetworkAPIHandler struct {
	runner      *monitor.Runner
	getHistory  *usecase.GetHistoryUseCase
	getTrend    *usecase.GetTrendReportUseCase
	maxDuration time.Duration
	logger      *logger.Logger
}

func NewNetworkAPIHandler(
	runner *monitor.Runner,
	getHistory *usecase.GetHistoryUseCase,
	getTrend *usecase.GetTrendReportUseCase,
	maxDuration time.Duration,
	logger *logger.Logger,
) *NetworkAPIHandler {
	if maxDuration <= 0 {
		maxDuration = 24 * time.Hour
	}

	return &NetworkAPIHandler{
		runner:      runner,
		getHistory:  getHistory,
		getTrend:    getTrend,
		maxDuration: maxDuration,
		logger:      logger,
	}
}

// GetCurrent returns the most recent monitor snapshot.
func (h *NetworkAPIHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot := h.runner.Latest()
	if snapshot == nil {
		http.Error(w, "No sample collected yet", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, snapshot, h.logger)
}

// GetStatus returns collector health: tick counters, last error, uptime.
func (h *NetworkAPIHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, h.runner.Status(), h.logger)
}

// GetHistory returns persisted samples for the requested duration,
// oldest first.
func (h *NetworkAPIHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	durationStr := r.URL.Query().Get("duration")
	if durationStr == "" {
		durationStr = "1h"
	}

	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		http.Error(w, "Invalid duration format", http.StatusBadRequest)
		return
	}
	if duration <= 0 || duration > h.maxDuration {
		http.Error(w, "Duration out of allowed range", http.StatusBadRequest)
		return
	}

	timeRange, err := valueobject.NewTimeRangeFromDuration(duration)
	if err != nil {
		http.Error(w, "Invalid time range", http.StatusBadRequest)
		return
	}

	samples, err := h.getHistory.Execute(r.Context(), timeRange)
	if err != nil {
		h.logger.Error("Failed to get sample history", err)
		http.Error(w, "Failed to fetch history", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"duration": duration.String(),
		"count":    len(samples),
		"samples":  samples,
	}, h.logger)
}

// GetRisk returns the risk assessment from the most recent snapshot.
func (h *NetworkAPIHandler) GetRisk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot := h.runner.Latest()
	if snapshot == nil || snapshot.Risk == nil {
		http.Error(w, "No risk assessment available yet", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, snapshot.Risk, h.logger)
}

// GetForecast returns the trend forecast built from persisted history.
// The optional hours parameter limits the horizon, up to 24 hours.
func (h *NetworkAPIHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	hours := 24
	if hoursStr := r.URL.Query().Get("hours"); hoursStr != "" {
		parsed, err := strconv.Atoi(hoursStr)
		if err != nil || parsed < 1 || parsed > 24 {
			http.Error(w, "Invalid hours parameter, must be 1-24", http.StatusBadRequest)
			return
		}
		hours = parsed
	}

	report, err := h.getTrend.Execute(r.Context())
	if err != nil {
		h.logger.Error("Failed to build trend report", err)
		http.Error(w, "Failed to build forecast", http.StatusInternalServerError)
		return
	}

	truncateForecast(report.Bandwidth, hours)
	truncateForecast(report.Latency, hours)

	writeJSON(w, http.StatusOK, report, h.logger)
}

func truncateForecast(f *dto.ForecastDTO, hours int) {
	if f != nil && len(f.Points) > hours {
		f.Points = f.Points[:hours]
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}, log *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("Failed to encode response", err)
	}
}
