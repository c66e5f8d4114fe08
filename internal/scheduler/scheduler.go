package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"ctfwatch/internal/domain"
)

// Tracker runs one full check pass.
type Tracker interface {
	Track(ctx context.Context) (*domain.TickStats, error)
}

// ErrTickInProgress is returned when a tick is triggered while another one is
// still running. The trigger is dropped, never queued.
var ErrTickInProgress = errors.New("tick already in progress")

// tickTimeout bounds one full pass so a hung remote call cannot stall the loop.
const tickTimeout = 5 * time.Minute

type Config struct {
	Interval    time.Duration
	BackoffBase time.Duration
	MaxBackoff  time.Duration
}

// Scheduler drives periodic tracking passes. After a failure the next attempt
// is delayed with exponential backoff up to MaxBackoff; a success resets the
// failure streak and restores the regular interval.
type Scheduler struct {
	tracker     Tracker
	interval    time.Duration
	backoffBase time.Duration
	maxBackoff  time.Duration
	logger      *slog.Logger

	running atomic.Bool
	streak  int // consecutive failures, touched only by the Start loop
}

func New(tracker Tracker, cfg Config, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		tracker:     tracker,
		interval:    cfg.Interval,
		backoffBase: cfg.BackoffBase,
		maxBackoff:  cfg.MaxBackoff,
		logger:      logger,
	}
}

// Start runs an immediate first pass and then loops until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	timer := time.NewTimer(s.runTick(ctx))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-timer.C:
			timer.Reset(s.runTick(ctx))
		}
	}
}

// TriggerNow runs a single pass outside the regular schedule, sharing the
// single-flight guard with scheduled ticks. A manual pass does not alter the
// failure streak or the schedule's pacing.
func (s *Scheduler) TriggerNow(ctx context.Context) (*domain.TickStats, error) {
	tickCtx, cancel := context.WithTimeout(ctx, tickTimeout)
	defer cancel()

	return s.run(tickCtx)
}

// runTick executes one scheduled pass and returns the delay until the next.
func (s *Scheduler) runTick(ctx context.Context) time.Duration {
	tickCtx, cancel := context.WithTimeout(ctx, tickTimeout)
	defer cancel()

	_, err := s.run(tickCtx)
	if err == nil {
		s.streak = 0
		return s.interval
	}

	if errors.Is(err, ErrTickInProgress) {
		// a manual check holds the slot; skip this trigger
		s.logger.Warn("tick already running, dropping scheduled trigger")
		return s.interval
	}

	s.streak++
	delay := s.backoff(s.streak)
	s.logger.Error("tick failed",
		"error", err,
		"failure_streak", s.streak,
		"next_attempt_in", delay,
	)
	return delay
}

// run enforces single-flight: at most one pass at a time, concurrent triggers
// are rejected.
func (s *Scheduler) run(ctx context.Context) (*domain.TickStats, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrTickInProgress
	}
	defer s.running.Store(false)

	return s.tracker.Track(ctx)
}

func (s *Scheduler) backoff(streak int) time.Duration {
	delay := s.backoffBase
	for i := 1; i < streak; i++ {
		delay *= 2
		if delay >= s.maxBackoff {
			return s.maxBackoff
		}
	}
	if delay > s.maxBackoff {
		delay = s.maxBackoff
	}
	return delay
}
