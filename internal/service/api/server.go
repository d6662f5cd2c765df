package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/woai-art/shorts-news-sub001/internal/config"
	"github.com/woai-art/shorts-news-sub001/internal/domain"
	apihttp "github.com/woai-art/shorts-news-sub001/internal/http"
)

// Service serves the read-only operator HTTP API
type Service struct {
	cfg    *config.Config
	logger *slog.Logger
	server *http.Server
}

// New creates a new API service
func New(cfg *config.Config, logger *slog.Logger, items domain.ItemRepository, channels domain.ChannelRepository) *Service {
	router := apihttp.NewRouter(logger, items, channels)

	return &Service{
		cfg:    cfg,
		logger: logger,
		server: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router.SetupRoutes(),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start serves until an interrupt signal, then shuts down gracefully
func (s *Service) Start() error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting API server", "port", s.cfg.Port)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	s.logger.Info("Shutting down API server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Stop(ctx)
}

// Stop gracefully shuts down the API server
func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
