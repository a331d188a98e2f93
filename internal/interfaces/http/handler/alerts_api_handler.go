package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dreschagin/netpulse/internal/application/usecase"
	"github.com/dreschagin/netpulse/pkg/logger"
)

const maxAlertLimit = 500

// AlertsAPIHandler serves the alert endpoints: active alert listing and
// manual resolution.
type AlertsAPIHandler struct {
	getActive *usecase.GetActiveAlertsUseCase
	resolve   *usecase.ResolveAlertUseCase
	logger    *logger.Logger
}

func NewAlertsAPIHandler(
	getActive *usecase.GetActiveAlertsUseCase,
	resolve *usecase.ResolveAlertUseCase,
	logger *logger.Logger,
) *AlertsAPIHandler {
	return &AlertsAPIHandler{
		getActive: getActive,
		resolve:   resolve,
		logger:    logger,
	}
}

// GetActive returns unresolved alerts, newest first.
func (h *AlertsAPIHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxAlertLimit {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	alerts, err := h.getActive.Execute(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to get active alerts", err)
		http.Error(w, "Failed to fetch alerts", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(alerts),
		"alerts": alerts,
	}, h.logger)
}

// Resolve marks an alert as resolved. Expects a JSON body: {"id": "<uuid>"}.
func (h *AlertsAPIHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.resolve.Execute(r.Context(), strings.TrimSpace(body.ID)); err != nil {
		if errors.Is(err, usecase.ErrEmptyAlertID) {
			http.Error(w, "Alert id is required", http.StatusBadRequest)
			return
		}
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, "Alert not found", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to resolve alert", err)
		http.Error(w, "Failed to resolve alert", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "resolved", "id": body.ID}, h.logger)
}
