// Package futwatch watches an exchange for new futures contracts and
// announces every listing to the subscribed Telegram chats.
package futwatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/raykavin/futwatch/pkg/core"
	"github.com/raykavin/futwatch/pkg/logger"
	"github.com/raykavin/futwatch/pkg/notification"
	"github.com/raykavin/futwatch/pkg/storage"
	"github.com/raykavin/futwatch/pkg/watcher"
)

// Futwatch wires a source, a store and a sender around the listing watcher
type Futwatch struct {
	settings core.Settings
	source   core.Source
	store    core.Store
	sender   core.Sender
	telegram *notification.Telegram
	watcher  *watcher.Watcher
	logger   logger.Logger

	telegramOptions []notification.Option
}

// New creates a Futwatch instance with the provided settings and dependencies
func New(settings core.Settings, options ...Option) (*Futwatch, error) {
	f := &Futwatch{
		settings: settings,
		logger:   DefaultLog,
	}

	// Apply custom options
	for _, option := range options {
		option(f)
	}

	// Initialize source
	if err := initializeSource(f); err != nil {
		return nil, err
	}

	// Initialize storage
	if err := initializeStorage(f); err != nil {
		return nil, err
	}

	// Initialize notification systems
	if err := initializeTelegram(f); err != nil {
		_ = f.store.Close()
		return nil, err
	}

	f.watcher = watcher.New(f.source, f.sender, f.store, f.logger, watcher.WithInterval(settings.Interval))
	if f.telegram != nil {
		f.telegram.Bind(f.watcher)
	}

	return f, nil
}

// initializeSource builds the source from the settings unless one was given
func initializeSource(f *Futwatch) error {
	if f.source != nil {
		return nil
	}

	source, err := NewSource(f.settings.Exchange, f.settings.Source, f.logger)
	if err != nil {
		return err
	}
	f.source = source
	return nil
}

// initializeStorage sets up the data storage
func initializeStorage(f *Futwatch) error {
	if f.store != nil {
		return nil
	}

	store, err := storage.FromMemory()
	if err != nil {
		return err
	}
	f.store = store
	return nil
}

// initializeTelegram sets up the Telegram bot unless a sender was given
func initializeTelegram(f *Futwatch) error {
	if f.sender != nil {
		return nil
	}

	if f.settings.Telegram.Token == "" {
		return errors.New("telegram token is required")
	}

	telegram, err := notification.NewTelegram(f.settings.Telegram, f.logger, f.telegramOptions...)
	if err != nil {
		return err
	}

	f.telegram = telegram
	f.sender = telegram
	return nil
}

// Watcher exposes the underlying watcher
func (f *Futwatch) Watcher() *watcher.Watcher {
	return f.watcher
}

// Run restores the stored state, starts the Telegram bot and checks for new
// listings until ctx is cancelled. The store is closed on return.
func (f *Futwatch) Run(ctx context.Context) error {
	defer func() {
		if err := f.store.Close(); err != nil {
			f.logger.WithError(err).Error("failed to close storage")
		}
	}()

	if err := f.watcher.Restore(ctx); err != nil {
		return fmt.Errorf("failed to restore state: %w", err)
	}

	if f.telegram != nil {
		f.telegram.Start(ctx)
	}

	f.logger.WithField("exchange", f.source.Name()).Info("futwatch is running")
	f.watcher.Run(ctx)

	return nil
}
