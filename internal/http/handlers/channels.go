package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/woai-art/shorts-news-sub001/internal/domain"
)

type ChannelsHandler struct {
	logger   *slog.Logger
	channels domain.ChannelRepository
}

func NewChannelsHandler(logger *slog.Logger, channels domain.ChannelRepository) *ChannelsHandler {
	return &ChannelsHandler{logger: logger, channels: channels}
}

// GetChannels lists watched channels: GET /api/v1/channels
func (h *ChannelsHandler) GetChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.channels.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list channels", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if channels == nil {
		channels = []*domain.Channel{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"channels": channels}); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}
