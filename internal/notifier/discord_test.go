package notifier

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctfwatch/internal/domain"
)

type fakeSender struct {
	sent    []string
	channel string
	err     error
}

func (f *fakeSender) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.channel = channelID
	f.sent = append(f.sent, content)
	return &discordgo.Message{}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func created(name string) domain.ChangeEvent {
	return domain.ChangeEvent{
		Kind: domain.EventCreated,
		Challenge: domain.Challenge{
			ID:       name,
			Name:     name,
			Category: "crypto",
			Points:   250,
			URL:      "https://alpacahack.com/challenges/" + name,
		},
	}
}

func TestAnnounce_EmptyEventsSendNothing(t *testing.T) {
	sender := &fakeSender{}
	d := NewDiscord(sender, "chan-1", testLogger())

	err := d.Announce(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestAnnounce_BatchesEventsIntoOneMessage(t *testing.T) {
	sender := &fakeSender{}
	d := NewDiscord(sender, "chan-1", testLogger())

	events := []domain.ChangeEvent{
		created("rsa-trapdoor"),
		{
			Kind:       domain.EventSolves,
			Challenge:  domain.Challenge{ID: "babyheap", Name: "babyheap"},
			PrevSolves: 3,
			NewSolves:  5,
		},
		{
			Kind:      domain.EventRemoved,
			Challenge: domain.Challenge{ID: "old-one", Name: "old-one"},
		},
	}

	err := d.Announce(context.Background(), events)
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "chan-1", sender.channel)

	msg := sender.sent[0]
	assert.Contains(t, msg, "New challenge: **rsa-trapdoor**")
	assert.Contains(t, msg, "crypto / 250 pts")
	assert.Contains(t, msg, "**babyheap** solves: 3 → 5")
	assert.Contains(t, msg, "removed: **old-one**")
}

func TestAnnounce_SplitsWhenOverLimit(t *testing.T) {
	sender := &fakeSender{}
	d := NewDiscord(sender, "chan-1", testLogger())

	var events []domain.ChangeEvent
	for i := 0; i < 60; i++ {
		events = append(events, created(strings.Repeat("x", 40)))
	}

	err := d.Announce(context.Background(), events)
	require.NoError(t, err)

	assert.Greater(t, len(sender.sent), 1)
	for _, msg := range sender.sent {
		assert.LessOrEqual(t, len(msg), maxMessageLen)
	}
}

func TestAnnounce_SendFailureIsDeliveryError(t *testing.T) {
	sender := &fakeSender{err: errors.New("rate limited")}
	d := NewDiscord(sender, "chan-1", testLogger())

	err := d.Announce(context.Background(), []domain.ChangeEvent{created("a")})
	require.Error(t, err)

	var dErr *domain.DeliveryError
	assert.ErrorAs(t, err, &dErr)
}

func TestBatchLines(t *testing.T) {
	messages := batchLines([]string{"aaa", "bbb", "ccc"}, 7)

	// "aaa\nbbb" fits, "ccc" starts the next message
	require.Len(t, messages, 2)
	assert.Equal(t, "aaa\nbbb", messages[0])
	assert.Equal(t, "ccc", messages[1])
}

func TestBatchLines_OversizedLineKeptWhole(t *testing.T) {
	long := strings.Repeat("z", 50)
	messages := batchLines([]string{"short", long, "short"}, 10)

	require.Len(t, messages, 3)
	assert.Equal(t, long, messages[1])
}

func TestBatchLines_Empty(t *testing.T) {
	assert.Empty(t, batchLines(nil, 10))
}
