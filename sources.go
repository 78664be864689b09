package futwatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/raykavin/futwatch/pkg/core"
	"github.com/raykavin/futwatch/pkg/exchange"
	"github.com/raykavin/futwatch/pkg/exchange/binance"
	"github.com/raykavin/futwatch/pkg/exchange/mexc"
	"github.com/raykavin/futwatch/pkg/logger"
)

// Supported exchanges
const (
	ExchangeMEXC    = "mexc"
	ExchangeBinance = "binance"
)

// ErrUnknownExchange is returned for an exchange without a source
var ErrUnknownExchange = errors.New("unknown exchange")

// NewSource builds the contract list source for the named exchange
func NewSource(name string, settings core.SourceSettings, log logger.Logger) (core.Source, error) {
	policy := retryPolicy(settings)

	switch strings.ToLower(name) {
	case "", ExchangeMEXC:
		return mexc.NewClient(log, mexc.Config{
			URL:     settings.URL,
			Timeout: settings.Timeout,
			Retry:   policy,
		}), nil
	case ExchangeBinance:
		return binance.NewClient(log, binance.Config{
			BaseURL: settings.URL,
			Retry:   policy,
		}), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExchange, name)
	}
}

// retryPolicy fills the zero values of settings with the default policy
func retryPolicy(settings core.SourceSettings) exchange.RetryPolicy {
	policy := exchange.DefaultRetryPolicy

	if settings.RetryAttempts > 0 {
		policy.Attempts = settings.RetryAttempts
	}
	if settings.MinBackoff > 0 {
		policy.MinBackoff = settings.MinBackoff
	}
	if settings.MaxBackoff > 0 {
		policy.MaxBackoff = settings.MaxBackoff
	}

	return policy
}
