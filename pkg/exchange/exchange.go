// Package exchange holds what every contract listing source has in common:
// error types and the retry loop used around REST calls.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jpillora/backoff"
)

var (
	// ErrUnexpectedShape is returned when the payload is not a contract list
	ErrUnexpectedShape = errors.New("unexpected payload shape")
	// ErrMissingSymbol is returned when a contract entry has no symbol field
	ErrMissingSymbol = errors.New("contract without symbol")
)

// StatusError reports a non-2xx HTTP response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether the request might succeed if repeated
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err so Retry gives up immediately
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsRetryable reports whether Retry should try again after err
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var permanent *permanentError
	if errors.As(err, &permanent) {
		return false
	}

	var status *StatusError
	if errors.As(err, &status) {
		return status.Temporary()
	}

	return true
}

// RetryPolicy bounds the number of attempts and the wait between them
type RetryPolicy struct {
	Attempts   int           // total attempts, values below 1 mean a single attempt
	MinBackoff time.Duration // first wait
	MaxBackoff time.Duration // wait cap
}

// DefaultRetryPolicy mirrors the exchange clients' usual settings
var DefaultRetryPolicy = RetryPolicy{
	Attempts:   3,
	MinBackoff: 500 * time.Millisecond,
	MaxBackoff: 5 * time.Second,
}

// newBackoff creates a jittered exponential backoff for the policy
func (p RetryPolicy) newBackoff() *backoff.Backoff {
	return &backoff.Backoff{
		Min:    p.MinBackoff,
		Max:    p.MaxBackoff,
		Factor: 2,
		Jitter: true,
	}
}

// OnRetry is called before waiting for the next attempt
type OnRetry func(attempt int, wait time.Duration, err error)

// Retry calls fn until it succeeds, returns a non retryable error, the
// attempts are exhausted or ctx is done. The last error is returned.
func Retry(ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) error, onRetry OnRetry) error {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	b := policy.newBackoff()
	var err error
	for attempt := 1; ; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}

		if attempt >= attempts || !IsRetryable(err) {
			return unwrapPermanent(err)
		}

		wait := b.Duration()
		if onRetry != nil {
			onRetry(attempt, wait, err)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
		case <-timer.C:
		}
	}
}

func unwrapPermanent(err error) error {
	var permanent *permanentError
	if errors.As(err, &permanent) {
		return permanent.err
	}
	return err
}
