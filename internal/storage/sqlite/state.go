package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"ctfwatch/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS challenges (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	category    TEXT NOT NULL,
	points      INTEGER NOT NULL,
	solve_count INTEGER NOT NULL,
	url         TEXT NOT NULL
)`

// StateStore persists the last-seen challenge listing in a sqlite file.
// Save replaces the whole image inside one transaction, so a crash mid-write
// leaves the previous state loadable.
type StateStore struct {
	db *sqlx.DB
}

func NewStateStore(db *sqlx.DB) (*StateStore, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, &domain.PersistenceError{Err: fmt.Errorf("create schema: %w", err)}
	}
	return &StateStore{db: db}, nil
}

// Load returns the persisted state. An empty database yields an empty state,
// not an error; the first run starts from nothing.
func (s *StateStore) Load(ctx context.Context) (domain.PersistedState, error) {
	var rows []domain.Challenge
	query := `SELECT id, name, category, points, solve_count, url FROM challenges`

	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, &domain.PersistenceError{Err: fmt.Errorf("load state: %w", err)}
	}

	state := make(domain.PersistedState, len(rows))
	for _, ch := range rows {
		state[ch.ID] = ch
	}
	return state, nil
}

// Save atomically replaces the persisted state with the given one.
func (s *StateStore) Save(ctx context.Context, state domain.PersistedState) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return &domain.PersistenceError{Err: fmt.Errorf("begin transaction: %w", err)}
	}

	if err := replaceAll(ctx, tx, state); err != nil {
		_ = tx.Rollback()
		return &domain.PersistenceError{Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &domain.PersistenceError{Err: fmt.Errorf("commit state: %w", err)}
	}
	return nil
}

func replaceAll(ctx context.Context, tx *sqlx.Tx, state domain.PersistedState) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM challenges`); err != nil {
		return fmt.Errorf("clear previous state: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx,
		`INSERT INTO challenges (id, name, category, points, solve_count, url) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, ch := range state {
		if _, err := stmt.ExecContext(ctx, ch.ID, ch.Name, ch.Category, ch.Points, ch.SolveCount, ch.URL); err != nil {
			return fmt.Errorf("insert challenge %s: %w", ch.ID, err)
		}
	}
	return nil
}
