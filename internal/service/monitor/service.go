package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"

	"github.com/woai-art/shorts-news-sub001/internal/config"
	"github.com/woai-art/shorts-news-sub001/internal/domain"
	"github.com/woai-art/shorts-news-sub001/internal/pkg/urldetector"
)

// Service is the messaging-channel listener. It appends received items to
// the work queue and answers operator commands; it never resolves anything
// itself.
type Service struct {
	cfg      *config.Config
	logger   *slog.Logger
	session  *discordgo.Session
	items    domain.ItemRepository
	channels domain.ChannelRepository
	signals  domain.SignalRepository
	detector *urldetector.Detector

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new monitor service
func New(
	cfg *config.Config,
	logger *slog.Logger,
	items domain.ItemRepository,
	channels domain.ChannelRepository,
	signals domain.SignalRepository,
) (*Service, error) {
	ctx, cancel := context.WithCancel(context.Background())

	service := &Service{
		cfg:      cfg,
		logger:   logger,
		items:    items,
		channels: channels,
		signals:  signals,
		detector: urldetector.New(),
		ctx:      ctx,
		cancel:   cancel,
	}

	session, err := discordgo.New("Bot " + cfg.Monitor.DiscordToken)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	service.session = session

	session.AddHandler(service.onReady)
	session.AddHandler(service.onMessageCreate)

	return service, nil
}

// Start opens the channel connection and blocks until an interrupt signal
func (s *Service) Start() error {
	s.logger.Info("Starting monitor service...")

	if err := s.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	s.logger.Info("Monitor connected")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	s.logger.Info("Monitor is running. Press Ctrl+C to stop.")
	<-stop

	s.logger.Info("Shutting down monitor service...")
	return s.Stop()
}

// Stop closes the messaging session
func (s *Service) Stop() error {
	s.cancel()

	if s.session != nil {
		if err := s.session.Close(); err != nil {
			s.logger.Error("Error closing Discord connection", "error", err)
			return err
		}
	}

	s.logger.Info("Monitor service stopped")
	return nil
}

func (s *Service) onReady(_ *discordgo.Session, ready *discordgo.Ready) {
	s.logger.Info("Monitor session ready",
		"username", ready.User.Username,
		"guilds", len(ready.Guilds),
	)
}
