package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/woai-art/shorts-news-sub001/internal/domain"
)

type StatsHandler struct {
	logger *slog.Logger
	items  domain.ItemRepository
}

func NewStatsHandler(logger *slog.Logger, items domain.ItemRepository) *StatsHandler {
	return &StatsHandler{logger: logger, items: items}
}

// HandleStats reports queue depth per lifecycle state: GET /api/v1/stats
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.items.CountByState(r.Context())
	if err != nil {
		h.logger.Error("Failed to count items", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	byState := make(map[string]int, len(counts))
	total := 0
	for state, count := range counts {
		byState[string(state)] = count
		total += count
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"total":     total,
		"states":    byState,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
