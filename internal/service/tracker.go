package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ctfwatch/internal/domain"
)

// Tracker runs the full tracking pass: fetch the listing, diff it against the
// persisted baseline, announce the changes and commit the new baseline.
type Tracker struct {
	fetcher   Fetcher
	store     StateStore
	notifier  Notifier
	publisher Publisher
	logger    *slog.Logger
}

func NewTracker(
	fetcher Fetcher,
	store StateStore,
	notifier Notifier,
	publisher Publisher,
	logger *slog.Logger,
) *Tracker {
	return &Tracker{
		fetcher:   fetcher,
		store:     store,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger.With("source", fetcher.Name()),
	}
}

// Track executes one pass. Any failure returns before Save, so the persisted
// baseline stays at the last successful pass and the same diff is recomputed
// on the next attempt — announcements are never lost to a transient failure.
func (t *Tracker) Track(ctx context.Context) (*domain.TickStats, error) {
	start := time.Now()
	t.logger.Debug("starting tick")

	snap, err := t.fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}

	prev, err := t.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	events, next := domain.Reconcile(prev, snap)

	stats := &domain.TickStats{Fetched: len(snap.Challenges)}
	for _, ev := range events {
		switch ev.Kind {
		case domain.EventCreated:
			stats.Created++
		case domain.EventSolves:
			stats.Solves++
		case domain.EventRemoved:
			stats.Removed++
		}
	}

	if len(events) > 0 {
		if err := t.notifier.Announce(ctx, events); err != nil {
			return nil, fmt.Errorf("announce events: %w", err)
		}

		if t.publisher != nil {
			for _, ev := range events {
				if err := t.publisher.Publish(ctx, ev); err != nil {
					return nil, fmt.Errorf("publish event: %w", err)
				}
			}
		}
	}

	if err := t.store.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}

	stats.Duration = time.Since(start)

	t.logger.Info("tick completed",
		"fetched", stats.Fetched,
		"created", stats.Created,
		"solve_updates", stats.Solves,
		"removed", stats.Removed,
		"duration", stats.Duration,
	)

	return stats, nil
}
