package domain

import "sort"

// Reconcile computes the change events between the previously persisted state
// and a freshly fetched snapshot, plus the state to persist next. It is a pure
// function: no I/O, inputs are never modified.
//
// Event order is deterministic: created events first (in snapshot order), then
// solve-count increases (in snapshot order), then removals (id ascending).
// A solve count lower than the persisted one produces no event; the new count
// still replaces the old one in the next state. The next state is exactly the
// snapshot, so a challenge that disappears and later reappears is reported as
// created again.
func Reconcile(prev PersistedState, snap Snapshot) ([]ChangeEvent, PersistedState) {
	next := make(PersistedState, len(snap.Challenges))

	var created, increased []ChangeEvent
	for _, ch := range snap.Challenges {
		if _, dup := next[ch.ID]; dup {
			// duplicate id within one snapshot, first occurrence wins
			continue
		}
		next[ch.ID] = ch

		old, ok := prev[ch.ID]
		if !ok {
			created = append(created, ChangeEvent{
				Kind:      EventCreated,
				Challenge: ch,
				NewSolves: ch.SolveCount,
			})
			continue
		}
		if ch.SolveCount > old.SolveCount {
			increased = append(increased, ChangeEvent{
				Kind:       EventSolves,
				Challenge:  ch,
				PrevSolves: old.SolveCount,
				NewSolves:  ch.SolveCount,
			})
		}
	}

	var removedIDs []string
	for id := range prev {
		if _, ok := next[id]; !ok {
			removedIDs = append(removedIDs, id)
		}
	}
	sort.Strings(removedIDs)

	events := make([]ChangeEvent, 0, len(created)+len(increased)+len(removedIDs))
	events = append(events, created...)
	events = append(events, increased...)
	for _, id := range removedIDs {
		events = append(events, ChangeEvent{Kind: EventRemoved, Challenge: prev[id]})
	}

	return events, next
}
