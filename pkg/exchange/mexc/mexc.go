// Package mexc reads the futures contract list from the public MEXC contract API
package mexc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/raykavin/futwatch/pkg/exchange"
	"github.com/raykavin/futwatch/pkg/logger"
	"github.com/tidwall/gjson"
)

const (
	// DefaultURL is the public contract detail endpoint
	DefaultURL = "https://contract.mexc.com/api/v1/contract/detail"

	// Name is used in notifications
	Name = "MEXC"

	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

// Config represents the configuration of the MEXC client
type Config struct {
	URL        string               // contract detail endpoint, DefaultURL when empty
	HTTPClient *http.Client         // optional custom client
	Timeout    time.Duration        // used when HTTPClient is nil
	Retry      exchange.RetryPolicy // transport retry policy
}

// Client lists MEXC futures contracts
type Client struct {
	url    string
	http   *http.Client
	retry  exchange.RetryPolicy
	logger logger.Logger
}

// NewClient creates a MEXC client, zero values in config fall back to defaults
func NewClient(log logger.Logger, config Config) *Client {
	url := config.URL
	if url == "" {
		url = DefaultURL
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		url:    url,
		http:   httpClient,
		retry:  config.Retry,
		logger: log.WithField("exchange", Name),
	}
}

// Name implements core.Source
func (c *Client) Name() string {
	return Name
}

// Contracts implements core.Source. Transport failures are retried following
// the configured policy, malformed payloads are not.
func (c *Client) Contracts(ctx context.Context) ([]string, error) {
	var symbols []string

	err := exchange.Retry(ctx, c.retry, func(ctx context.Context) error {
		body, err := c.get(ctx)
		if err != nil {
			return err
		}

		symbols, err = ParseContracts(body)
		return exchange.Permanent(err)
	}, func(attempt int, wait time.Duration, err error) {
		c.logger.WithError(err).WithFields(map[string]any{
			"attempt": attempt,
			"wait":    wait.String(),
		}).Warn("contract request failed, retrying")
	})
	if err != nil {
		return nil, fmt.Errorf("mexc: %w", err)
	}

	c.logger.Debugf("fetched %d contracts", len(symbols))
	return symbols, nil
}

// get performs one GET and returns the body of a 2xx response
func (c *Client) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, exchange.Permanent(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &exchange.StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}

// ParseContracts extracts the symbols of a contract detail payload. The list
// is either the payload itself or wrapped in its "data" field. Every element
// must expose a string "symbol", otherwise the whole batch is rejected.
func ParseContracts(body []byte) ([]string, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid json", exchange.ErrUnexpectedShape)
	}

	list := gjson.ParseBytes(body)
	if list.IsObject() {
		if data := list.Get("data"); data.Exists() {
			list = data
		}
	}

	if !list.IsArray() {
		return nil, fmt.Errorf("%w: expected a list of contracts", exchange.ErrUnexpectedShape)
	}

	items := list.Array()
	symbols := make([]string, 0, len(items))
	for i, item := range items {
		symbol := item.Get("symbol")
		if symbol.Type != gjson.String {
			return nil, fmt.Errorf("%w: element %d", exchange.ErrMissingSymbol, i)
		}
		symbols = append(symbols, symbol.String())
	}

	return symbols, nil
}
