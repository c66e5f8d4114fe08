package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"ctfwatch/internal/domain"
)

type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) (domain.Snapshot, error)
}

type StateStore interface {
	Load(ctx context.Context) (domain.PersistedState, error)
	Save(ctx context.Context, state domain.PersistedState) error
}

type Notifier interface {
	Announce(ctx context.Context, events []domain.ChangeEvent) error
}

type Publisher interface {
	Publish(ctx context.Context, event domain.ChangeEvent) error
	Close() error
}
