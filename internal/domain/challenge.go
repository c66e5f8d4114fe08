package domain

import "time"

// Challenge is one CTF challenge as observed on the platform listing.
// ID is stable across snapshots; every other field may change.
type Challenge struct {
	ID         string `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	Category   string `json:"category" db:"category"`
	Points     int    `json:"points" db:"points"`
	SolveCount int    `json:"solve_count" db:"solve_count"`
	URL        string `json:"url" db:"url"`
}

// Snapshot is a point-in-time capture of the full challenge listing.
// Challenges contains no duplicate IDs.
type Snapshot struct {
	Challenges []Challenge
	FetchedAt  time.Time
}

// PersistedState maps challenge ID to the last-seen record. It is the single
// source of truth for "previous" data between ticks.
type PersistedState map[string]Challenge

type EventKind string

const (
	EventCreated EventKind = "created"
	EventSolves  EventKind = "solve_count_increased"
	EventRemoved EventKind = "removed"
)

// ChangeEvent describes one observed difference between two snapshots.
// For EventRemoved, Challenge holds the last record seen before removal.
// PrevSolves and NewSolves are meaningful only for EventSolves.
type ChangeEvent struct {
	Kind       EventKind
	Challenge  Challenge
	PrevSolves int
	NewSolves  int
}
