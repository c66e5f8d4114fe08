package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"ctfwatch/internal/domain"
	"ctfwatch/internal/scheduler"
)

// Trigger starts a manual check outside the regular schedule.
type Trigger interface {
	TriggerNow(ctx context.Context) (*domain.TickStats, error)
}

// Handler wires prefix commands to the tracking core. It owns no state of its
// own; concurrent manual checks are serialized by the scheduler's
// single-flight guard.
type Handler struct {
	trigger Trigger
	prefix  string
	logger  *slog.Logger
}

func NewHandler(trigger Trigger, prefix string, logger *slog.Logger) *Handler {
	return &Handler{
		trigger: trigger,
		prefix:  prefix,
		logger:  logger.With("component", "bot"),
	}
}

// Register attaches the message handler to the session.
func (h *Handler) Register(session *discordgo.Session) {
	session.AddHandler(h.onMessage)
}

func (h *Handler) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if !strings.HasPrefix(m.Content, h.prefix) {
		return
	}

	switch strings.TrimSpace(strings.TrimPrefix(m.Content, h.prefix)) {
	case "ping":
		h.reply(s, m.ChannelID, "pong")
	case "check":
		h.runCheck(s, m.ChannelID)
	}
}

func (h *Handler) runCheck(s *discordgo.Session, channelID string) {
	stats, err := h.trigger.TriggerNow(context.Background())
	if errors.Is(err, scheduler.ErrTickInProgress) {
		h.reply(s, channelID, "A check is already running.")
		return
	}
	if err != nil {
		h.logger.Error("manual check failed", "error", err)
		h.reply(s, channelID, "Check failed, see logs.")
		return
	}

	h.reply(s, channelID, fmt.Sprintf(
		"Checked %d challenges: %d new, %d solve updates, %d removed.",
		stats.Fetched, stats.Created, stats.Solves, stats.Removed,
	))
}

func (h *Handler) reply(s *discordgo.Session, channelID, content string) {
	if _, err := s.ChannelMessageSend(channelID, content); err != nil {
		h.logger.Error("failed to send reply", "error", err)
	}
}
