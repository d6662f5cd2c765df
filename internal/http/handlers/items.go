package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/woai-art/shorts-news-sub001/internal/domain"
)

const DefaultListLimit = 25

type ItemsHandler struct {
	logger *slog.Logger
	items  domain.ItemRepository
}

func NewItemsHandler(logger *slog.Logger, items domain.ItemRepository) *ItemsHandler {
	return &ItemsHandler{logger: logger, items: items}
}

// ItemDto is the outbound item representation: media lists materialized
// as JSON arrays, never the stored pipe-delimited form
type ItemDto struct {
	ID             int64      `json:"id"`
	URL            string     `json:"url"`
	ChannelID      string     `json:"channel_id,omitempty"`
	Username       string     `json:"username,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Source         string     `json:"source"`
	ContentType    string     `json:"content_type"`
	Images         []string   `json:"images"`
	Videos         []string   `json:"videos"`
	LocalImagePath string     `json:"local_image_path,omitempty"`
	LocalVideoPath string     `json:"local_video_path,omitempty"`
	AvatarPath     string     `json:"avatar_path,omitempty"`
	State          string     `json:"state"`
	FailureReason  string     `json:"failure_reason,omitempty"`
	VideoOffsetSec int        `json:"video_offset_sec,omitempty"`
	Processed      bool       `json:"processed"`
	ReceivedAt     time.Time  `json:"received_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

func toItemDto(item *domain.Item) *ItemDto {
	images := item.Images
	if images == nil {
		images = []string{}
	}
	videos := item.Videos
	if videos == nil {
		videos = []string{}
	}
	return &ItemDto{
		ID:             item.ID,
		URL:            item.URL,
		ChannelID:      item.ChannelID,
		Username:       item.Username,
		Title:          item.Title,
		Description:    item.Description,
		Source:         item.Source,
		ContentType:    item.ContentType,
		Images:         images,
		Videos:         videos,
		LocalImagePath: item.LocalImagePath,
		LocalVideoPath: item.LocalVideoPath,
		AvatarPath:     item.AvatarPath,
		State:          string(item.State),
		FailureReason:  item.FailureReason,
		VideoOffsetSec: item.VideoOffsetSec,
		Processed:      item.Processed(),
		ReceivedAt:     item.ReceivedAt,
		UpdatedAt:      item.UpdatedAt,
	}
}

// GetItems lists items filtered by state: GET /api/v1/items?state=failed&limit=10
func (h *ItemsHandler) GetItems(w http.ResponseWriter, r *http.Request) {
	state := domain.State(r.URL.Query().Get("state"))
	if state == "" {
		state = domain.StateReceived
	}
	if !state.IsValid() {
		http.Error(w, "Unknown state", http.StatusBadRequest)
		return
	}

	limit := DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "Bad limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	items, err := h.items.ListByState(r.Context(), state, limit)
	if err != nil {
		h.logger.Error("Failed to list items", "error", err, "state", state)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	dtos := make([]*ItemDto, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toItemDto(item))
	}

	h.writeJSON(w, map[string]any{"items": dtos})
}

// GetItemByID returns one item: GET /api/v1/items/{id}
func (h *ItemsHandler) GetItemByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Bad item id", http.StatusBadRequest)
		return
	}

	item, err := h.items.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Item not found", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to get item", "error", err, "item_id", id)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, toItemDto(item))
}

func (h *ItemsHandler) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}
