package resolver

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/woai-art/shorts-news-sub001/internal/config"
	"github.com/woai-art/shorts-news-sub001/internal/domain"
)

// Service runs the resolver as a long-lived worker: drain the backlog,
// sleep until a wake signal or the poll interval, repeat.
type Service struct {
	cfg          *config.Config
	orchestrator *Orchestrator
	signals      domain.SignalRepository
	logger       *slog.Logger
	ctx          context.Context
	cancel       context.CancelFunc
}

// New creates a new resolver service
func New(cfg *config.Config, orchestrator *Orchestrator, signals domain.SignalRepository, logger *slog.Logger) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		cfg:          cfg,
		orchestrator: orchestrator,
		signals:      signals,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start begins the drain loop and blocks until an interrupt signal
func (s *Service) Start() error {
	s.logger.Info("Starting resolver service...")

	if err := s.orchestrator.RecoverInterrupted(s.ctx); err != nil {
		s.logger.Error("Startup recovery failed", "error", err)
	}

	go s.run()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	s.logger.Info("Resolver service is running. Press Ctrl+C to stop.")
	<-stop

	s.logger.Info("Shutting down resolver service...")
	return s.Stop()
}

// Stop cancels in-flight work and stops the loop
func (s *Service) Stop() error {
	s.cancel()
	s.logger.Info("Resolver service stopped")
	return nil
}

func (s *Service) run() {
	for {
		if s.ctx.Err() != nil {
			s.logger.Info("Drain loop stopped")
			return
		}

		s.serveOperatorRequests()

		resolved, err := s.orchestrator.Drain(s.ctx, s.cfg.Resolver.BatchLimit)
		if err != nil && s.ctx.Err() == nil {
			s.logger.Error("Drain pass failed", "error", err)
		}
		if resolved > 0 {
			s.logger.Info("Drain pass finished", "resolved", resolved)
		}

		// Block until the monitor nudges us or the poll interval passes
		if err := s.signals.WaitForItem(s.ctx, s.cfg.Resolver.PollInterval()); err != nil && s.ctx.Err() == nil {
			s.logger.Warn("Wake wait failed, falling back to polling", "error", err)
		}
	}
}

// serveOperatorRequests reruns items queued by operator commands. These
// jump the drain queue: an operator is watching.
func (s *Service) serveOperatorRequests() {
	for {
		if s.ctx.Err() != nil {
			return
		}

		req, ok, err := s.signals.NextResolveRequest(s.ctx)
		if err != nil {
			s.logger.Error("Failed to read operator request", "error", err)
			return
		}
		if !ok {
			return
		}

		if err := s.orchestrator.ProcessOne(s.ctx, req.ItemID, req.OffsetSec, req.ForceMedia); err != nil {
			s.logger.Warn("Operator resolve request failed",
				"item_id", req.ItemID,
				"error", err,
			)
		}
	}
}
