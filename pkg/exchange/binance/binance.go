// Package binance lists USDⓈ-M futures contracts through go-binance
package binance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/raykavin/futwatch/pkg/exchange"
	"github.com/raykavin/futwatch/pkg/logger"
)

// Name is used in notifications
const Name = "Binance"

// Config represents the configuration of the Binance futures client
type Config struct {
	BaseURL    string               // custom API endpoint (if needed)
	HTTPClient *http.Client         // optional custom client
	Retry      exchange.RetryPolicy // transport retry policy
}

// Client lists Binance futures contracts from the exchangeInfo endpoint
type Client struct {
	client *futures.Client
	retry  exchange.RetryPolicy
	logger logger.Logger
}

// NewClient creates an unauthenticated futures client, exchangeInfo is public
func NewClient(log logger.Logger, config Config) *Client {
	client := futures.NewClient("", "")
	if config.BaseURL != "" {
		client.BaseURL = config.BaseURL
	}
	if config.HTTPClient != nil {
		client.HTTPClient = config.HTTPClient
	}

	return &Client{
		client: client,
		retry:  config.Retry,
		logger: log.WithField("exchange", Name),
	}
}

// Name implements core.Source
func (c *Client) Name() string {
	return Name
}

// Contracts implements core.Source. Every listed symbol is returned whatever
// its trading status, so a contract is reported once when it first shows up.
func (c *Client) Contracts(ctx context.Context) ([]string, error) {
	var info *futures.ExchangeInfo

	err := exchange.Retry(ctx, c.retry, func(ctx context.Context) error {
		var err error
		info, err = c.client.NewExchangeInfoService().Do(ctx)
		return classify(err)
	}, func(attempt int, wait time.Duration, err error) {
		c.logger.WithError(err).WithFields(map[string]any{
			"attempt": attempt,
			"wait":    wait.String(),
		}).Warn("exchange info request failed, retrying")
	})
	if err != nil {
		return nil, fmt.Errorf("binance: failed to get futures exchange info: %w", err)
	}

	symbols := make([]string, 0, len(info.Symbols))
	for i, symbol := range info.Symbols {
		if symbol.Symbol == "" {
			return nil, fmt.Errorf("binance: %w: element %d", exchange.ErrMissingSymbol, i)
		}
		symbols = append(symbols, symbol.Symbol)
	}

	c.logger.Debugf("fetched %d contracts", len(symbols))
	return symbols, nil
}

// rateLimitCodes are API error codes worth another attempt
var rateLimitCodes = map[int64]bool{
	-1003: true, // too many requests
	-1001: true, // internal disconnect
}

// classify marks API errors as permanent unless they are rate limits
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiError *common.APIError
	if errors.As(err, &apiError) && !rateLimitCodes[apiError.Code] {
		return exchange.Permanent(err)
	}

	return err
}
