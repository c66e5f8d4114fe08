package domain

import "time"

// TickStats holds statistics about one tracking pass.
type TickStats struct {
	Fetched  int
	Created  int
	Solves   int
	Removed  int
	Duration time.Duration
}
