package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"ctfwatch/internal/domain"
)

// maxMessageLen stays safely under Discord's 2000 character message limit.
const maxMessageLen = 1900

// Sender is the single send capability needed from the chat client.
// *discordgo.Session satisfies it.
type Sender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord announces change events to one configured channel, packing as many
// event lines as fit into each message.
type Discord struct {
	sender    Sender
	channelID string
	logger    *slog.Logger
}

func NewDiscord(sender Sender, channelID string, logger *slog.Logger) *Discord {
	return &Discord{
		sender:    sender,
		channelID: channelID,
		logger:    logger.With("notifier", "discord"),
	}
}

// Announce delivers the events. No events means no messages.
func (d *Discord) Announce(ctx context.Context, events []domain.ChangeEvent) error {
	if len(events) == 0 {
		return nil
	}

	lines := make([]string, 0, len(events))
	for _, ev := range events {
		lines = append(lines, formatEvent(ev))
	}

	messages := batchLines(lines, maxMessageLen)
	for _, msg := range messages {
		if _, err := d.sender.ChannelMessageSend(d.channelID, msg, discordgo.WithContext(ctx)); err != nil {
			return &domain.DeliveryError{Err: fmt.Errorf("send announcement: %w", err)}
		}
	}

	d.logger.Info("announced changes", "events", len(events), "messages", len(messages))
	return nil
}

func formatEvent(ev domain.ChangeEvent) string {
	switch ev.Kind {
	case domain.EventCreated:
		return fmt.Sprintf("🆕 New challenge: **%s** [%s / %d pts] %s",
			ev.Challenge.Name, ev.Challenge.Category, ev.Challenge.Points, ev.Challenge.URL)
	case domain.EventSolves:
		return fmt.Sprintf("🏁 **%s** solves: %d → %d",
			ev.Challenge.Name, ev.PrevSolves, ev.NewSolves)
	case domain.EventRemoved:
		return fmt.Sprintf("🗑️ Challenge removed: **%s**", ev.Challenge.Name)
	default:
		return ""
	}
}

// batchLines joins lines with newlines into as few strings as fit within
// limit. A single oversized line becomes its own message.
func batchLines(lines []string, limit int) []string {
	var messages []string
	var b strings.Builder

	for _, line := range lines {
		if b.Len() > 0 && b.Len()+len(line)+1 > limit {
			messages = append(messages, b.String())
			b.Reset()
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	if b.Len() > 0 {
		messages = append(messages, b.String())
	}
	return messages
}
