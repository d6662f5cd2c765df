package http

import (
	"log/slog"
	"net/http"

	"github.com/woai-art/shorts-news-sub001/internal/domain"
	"github.com/woai-art/shorts-news-sub001/internal/http/handlers"
	"github.com/woai-art/shorts-news-sub001/internal/http/middleware"
)

type Router struct {
	mux             *http.ServeMux
	healthHandler   *handlers.HealthHandler
	statsHandler    *handlers.StatsHandler
	itemsHandler    *handlers.ItemsHandler
	channelsHandler *handlers.ChannelsHandler
}

func NewRouter(logger *slog.Logger, items domain.ItemRepository, channels domain.ChannelRepository) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		healthHandler:   handlers.NewHealthHandler(logger),
		statsHandler:    handlers.NewStatsHandler(logger, items),
		itemsHandler:    handlers.NewItemsHandler(logger, items),
		channelsHandler: handlers.NewChannelsHandler(logger, channels),
	}
}

// SetupRoutes wires the read-only operator API
func (r *Router) SetupRoutes() http.Handler {
	// Health check
	r.mux.HandleFunc("GET /health", r.healthHandler.HandleHealth)

	// API v1 routes - items
	r.mux.HandleFunc("GET /api/v1/items", r.itemsHandler.GetItems)
	r.mux.HandleFunc("GET /api/v1/items/{id}", r.itemsHandler.GetItemByID)

	// API v1 routes - stats and channels
	r.mux.HandleFunc("GET /api/v1/stats", r.statsHandler.HandleStats)
	r.mux.HandleFunc("GET /api/v1/channels", r.channelsHandler.GetChannels)

	return middleware.CORS(middleware.RequestID(r.mux))
}
