package monitor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/woai-art/shorts-news-sub001/internal/domain"
)

// handleCommand dispatches operator prefix commands
func (s *Service) handleCommand(session *discordgo.Session, message *discordgo.MessageCreate) {
	fields := strings.Fields(strings.TrimPrefix(message.Content, s.cfg.Monitor.CommandPrefix))
	if len(fields) == 0 {
		return
	}

	command := strings.ToLower(fields[0])
	args := fields[1:]

	s.logger.Info("Operator command",
		"command", command,
		"args", args,
		"user", message.Author.Username,
	)

	var reply string
	switch command {
	case "resolve":
		reply = s.handleResolveCommand(args)
	case "status":
		reply = s.handleStatusCommand(args)
	case "stats":
		reply = s.handleStatsCommand()
	case "channel":
		reply = s.handleChannelCommand(message.ChannelID, args)
	default:
		return // not ours, stay quiet
	}

	if _, err := session.ChannelMessageSendReply(message.ChannelID, reply, message.Reference()); err != nil {
		s.logger.Error("Failed to send command reply", "error", err, "command", command)
	}
}

// handleResolveCommand queues a single-item resolution:
// !resolve <id> [offset_seconds]
func (s *Service) handleResolveCommand(args []string) string {
	if len(args) < 1 {
		return "Usage: resolve <id> [offset_seconds]"
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Sprintf("Bad item id %q", args[0])
	}

	offset := 0
	if len(args) > 1 {
		offset, err = strconv.Atoi(args[1])
		if err != nil || offset < 0 {
			return fmt.Sprintf("Bad offset %q", args[1])
		}
	}

	item, err := s.items.GetByID(s.ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Sprintf("Item %d not found", id)
		}
		return fmt.Sprintf("Lookup failed: %v", err)
	}
	if item.State == domain.StateResolving {
		return fmt.Sprintf("Item %d is being resolved right now", id)
	}

	req := domain.ResolveRequest{ItemID: id, OffsetSec: offset, ForceMedia: true}
	if err := s.signals.RequestResolve(s.ctx, req); err != nil {
		return fmt.Sprintf("Failed to queue resolution: %v", err)
	}

	if offset > 0 {
		return fmt.Sprintf("Item %d queued for resolution with %ds trim offset", id, offset)
	}
	return fmt.Sprintf("Item %d queued for resolution", id)
}

// handleStatusCommand shows one item's lifecycle state: !status <id>
func (s *Service) handleStatusCommand(args []string) string {
	if len(args) < 1 {
		return "Usage: status <id>"
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Sprintf("Bad item id %q", args[0])
	}

	item, err := s.items.GetByID(s.ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Sprintf("Item %d not found", id)
		}
		return fmt.Sprintf("Lookup failed: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Item %d** [%s]\n", item.ID, item.State)
	fmt.Fprintf(&b, "URL: %s\n", item.URL)
	if item.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", item.Title)
	}
	if item.Source != "" {
		fmt.Fprintf(&b, "Source: %s\n", item.Source)
	}
	if item.LocalVideoPath != "" {
		b.WriteString("Video: acquired\n")
	}
	if item.LocalImagePath != "" {
		b.WriteString("Image: acquired\n")
	}
	if item.FailureReason != "" {
		fmt.Fprintf(&b, "Failure: %s\n", item.FailureReason)
	}
	return b.String()
}

// handleStatsCommand shows queue depth per state: !stats
func (s *Service) handleStatsCommand() string {
	counts, err := s.items.CountByState(s.ctx)
	if err != nil {
		return fmt.Sprintf("Stats unavailable: %v", err)
	}

	states := []domain.State{
		domain.StateReceived,
		domain.StateResolving,
		domain.StateMediaResolved,
		domain.StateProcessed,
		domain.StateFailed,
	}

	var b strings.Builder
	b.WriteString("**Queue**\n")
	for _, state := range states {
		fmt.Fprintf(&b, "%s: %d\n", state, counts[state])
	}
	return b.String()
}

// handleChannelCommand toggles monitoring for the current channel:
// !channel on|off
func (s *Service) handleChannelCommand(channelID string, args []string) string {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		return "Usage: channel on|off"
	}
	enabled := args[0] == "on"

	err := s.channels.SetEnabled(s.ctx, channelID, enabled)
	if errors.Is(err, domain.ErrNotFound) {
		channel := &domain.Channel{ID: channelID, Name: s.channelName(channelID), Enabled: enabled}
		if channel.Name == "" {
			channel.Name = channelID
		}
		err = s.channels.Create(s.ctx, channel)
	}
	if err != nil {
		return fmt.Sprintf("Failed to update channel: %v", err)
	}

	if enabled {
		return "Monitoring enabled for this channel"
	}
	return "Monitoring disabled for this channel"
}
