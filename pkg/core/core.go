package core

import (
	"context"
)

// Source lists the futures contracts currently tradable on one exchange
type Source interface {
	// Name is the human readable exchange name used in notifications, eg: MEXC
	Name() string
	// Contracts returns the symbol of every listed contract
	Contracts(ctx context.Context) ([]string, error)
}

// Sender delivers a text message to a single recipient
type Sender interface {
	Send(ctx context.Context, to string, text string) error
}

// Store keeps the subscriber set and the known symbols between checks
type Store interface {
	// Subscribers returns every registered recipient in registration order
	Subscribers(ctx context.Context) ([]string, error)
	// AddSubscriber registers id and reports whether it was not registered before
	AddSubscriber(ctx context.Context, id string) (bool, error)
	// RemoveSubscriber drops id and reports whether it was registered
	RemoveSubscriber(ctx context.Context, id string) (bool, error)

	// KnownSymbols returns the stored baseline
	KnownSymbols(ctx context.Context) ([]string, error)
	// ReplaceKnownSymbols overwrites the stored baseline
	ReplaceKnownSymbols(ctx context.Context, symbols []string) error

	Close() error
}
