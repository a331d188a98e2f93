package handler

import (
	"net/http"
	"strconv"

	"github.com/dreschagin/netpulse/internal/application/port"
	"github.com/dreschagin/netpulse/pkg/logger"
)

// ArchivesAPIHandler lists exported sample archives from the archive index.
// Registered only when archiving is configured.
type ArchivesAPIHandler struct {
	index  port.ArchiveIndex
	logger *logger.Logger
}

func NewArchivesAPIHandler(index port.ArchiveIndex, logger *logger.Logger) *ArchivesAPIHandler {
	return &ArchivesAPIHandler{
		index:  index,
		logger: logger,
	}
}

// List returns archive records for one UTC day, newest first, with cursor
// pagination. Query parameters: day (required, YYYY-MM-DD), limit, cursor.
func (h *ArchivesAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	day := r.URL.Query().Get("day")
	if day == "" {
		http.Error(w, "Missing required parameter: day", http.StatusBadRequest)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	page, err := h.index.ListByDay(r.Context(), port.ArchiveListQuery{
		Day:    day,
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	})
	if err != nil {
		h.logger.Error("Failed to list archives", err, "day", day)
		http.Error(w, "Failed to list archives", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, page, h.logger)
}
