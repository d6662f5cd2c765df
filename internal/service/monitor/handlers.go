package monitor

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/woai-art/shorts-news-sub001/internal/domain"
)

// onMessageCreate handles new channel messages
func (s *Service) onMessageCreate(session *discordgo.Session, message *discordgo.MessageCreate) {
	if message.Author.Bot {
		return
	}

	if strings.HasPrefix(message.Content, s.cfg.Monitor.CommandPrefix) {
		s.handleCommand(session, message)
		return
	}

	if !s.channelEnabled(message) {
		return
	}

	urls := s.detector.Extract(message.Content)
	if len(urls) == 0 {
		return
	}

	// Platform reconnects replay messages; the dedup mark makes a replay
	// a no-op without touching the database
	first, err := s.signals.MarkMessageSeen(s.ctx, message.ID)
	if err != nil {
		s.logger.Warn("Message dedup check failed, relying on URL uniqueness",
			"message_id", message.ID,
			"error", err,
		)
	} else if !first {
		s.logger.Debug("Skipping replayed message", "message_id", message.ID)
		return
	}

	s.logger.Info("Detected URLs in message",
		"message_id", message.ID,
		"channel_id", message.ChannelID,
		"count", len(urls),
	)

	created := 0
	for _, url := range urls {
		item := &domain.Item{
			URL:        url,
			ChannelID:  message.ChannelID,
			Username:   message.Author.Username,
			ReceivedAt: time.Now(),
		}

		isNew, err := s.items.Create(s.ctx, item)
		if err != nil {
			s.logger.Error("Failed to create item",
				"error", err,
				"url", url,
				"message_id", message.ID,
			)
			continue
		}
		if !isNew {
			s.logger.Info("URL already queued",
				"item_id", item.ID,
				"url", url,
				"state", item.State,
			)
			continue
		}

		created++
		if err := s.signals.NotifyItemReceived(s.ctx, item.ID); err != nil {
			// The resolver polls anyway
			s.logger.Warn("Failed to wake resolver", "item_id", item.ID, "error", err)
		}
	}

	if created > 0 {
		if err := session.MessageReactionAdd(message.ChannelID, message.ID, "📥"); err != nil {
			s.logger.Warn("Failed to add reaction",
				"error", err,
				"message_id", message.ID,
			)
		}
	}
}

// channelEnabled reports whether the message's channel should be watched.
// Unknown channels are registered enabled on first contact; an operator
// disables them explicitly.
func (s *Service) channelEnabled(message *discordgo.MessageCreate) bool {
	channel, err := s.channels.GetByID(s.ctx, message.ChannelID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Channel lookup failed",
				"error", err,
				"channel_id", message.ChannelID,
			)
			return false
		}

		channel = &domain.Channel{
			ID:      message.ChannelID,
			Name:    message.ChannelID,
			Enabled: true,
		}
		if name := s.channelName(message.ChannelID); name != "" {
			channel.Name = name
		}
		if err := s.channels.Create(s.ctx, channel); err != nil {
			s.logger.Error("Failed to register channel",
				"error", err,
				"channel_id", message.ChannelID,
			)
		}
		return true
	}

	return channel.Enabled
}

func (s *Service) channelName(channelID string) string {
	ch, err := s.session.Channel(channelID)
	if err != nil {
		return ""
	}
	return ch.Name
}
