package futwatch

import (
	"github.com/raykavin/futwatch/pkg/core"
	"github.com/raykavin/futwatch/pkg/logger"
	"github.com/raykavin/futwatch/pkg/notification"
)

// Option is a functional option for configuring a Futwatch instance
type Option func(*Futwatch)

// WithStorage sets the storage, by default an in-memory buntdb is used so
// nothing survives a restart
func WithStorage(store core.Store) Option {
	return func(f *Futwatch) {
		f.store = store
	}
}

// WithSource replaces the source built from the settings
func WithSource(source core.Source) Option {
	return func(f *Futwatch) {
		f.source = source
	}
}

// WithSender delivers messages through sender instead of a Telegram bot, no
// commands are served in that case
func WithSender(sender core.Sender) Option {
	return func(f *Futwatch) {
		f.sender = sender
	}
}

// WithLogger replaces DefaultLog
func WithLogger(log logger.Logger) Option {
	return func(f *Futwatch) {
		f.logger = log
	}
}

// WithTelegramOptions forwards options to the Telegram client
func WithTelegramOptions(options ...notification.Option) Option {
	return func(f *Futwatch) {
		f.telegramOptions = append(f.telegramOptions, options...)
	}
}
