package futwatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/raykavin/futwatch/pkg/core"
	"github.com/raykavin/futwatch/pkg/exchange/binance"
	"github.com/raykavin/futwatch/pkg/exchange/mexc"
	"github.com/raykavin/futwatch/pkg/logger/zerolog"
	"github.com/raykavin/futwatch/pkg/storage"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	mu      sync.Mutex
	symbols []string
}

func (s *staticSource) Name() string { return "MEXC" }

func (s *staticSource) Contracts(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.symbols...), nil
}

func (s *staticSource) set(symbols ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.symbols = symbols
}

type recordingSender struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingSender) Send(_ context.Context, to, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, to+": "+text)
	return nil
}

func (r *recordingSender) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sent...)
}

func TestNewSource(t *testing.T) {
	log := zerolog.Nop()

	source, err := NewSource("", core.SourceSettings{}, log)
	require.NoError(t, err)
	require.IsType(t, &mexc.Client{}, source)

	source, err = NewSource("Binance", core.SourceSettings{}, log)
	require.NoError(t, err)
	require.IsType(t, &binance.Client{}, source)

	_, err = NewSource("kraken", core.SourceSettings{}, log)
	require.ErrorIs(t, err, ErrUnknownExchange)
}

func TestRetryPolicy(t *testing.T) {
	policy := retryPolicy(core.SourceSettings{RetryAttempts: 5, MaxBackoff: time.Second})
	require.Equal(t, 5, policy.Attempts)
	require.Equal(t, 500*time.Millisecond, policy.MinBackoff)
	require.Equal(t, time.Second, policy.MaxBackoff)
}

func TestNew_RequiresToken(t *testing.T) {
	_, err := New(core.Settings{}, WithSource(&staticSource{}), WithLogger(zerolog.Nop()))
	require.EqualError(t, err, "telegram token is required")
}

func TestFutwatch_Run(t *testing.T) {
	source := &staticSource{symbols: []string{"BTC_USDT"}}
	sender := &recordingSender{}

	store, err := storage.FromMemory()
	require.NoError(t, err)
	_, err = store.AddSubscriber(context.Background(), "1")
	require.NoError(t, err)

	app, err := New(core.Settings{Interval: 5 * time.Millisecond},
		WithSource(source),
		WithSender(sender),
		WithStorage(store),
		WithLogger(zerolog.Nop()),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool {
		return app.Watcher().Status().Baseline
	}, time.Second, time.Millisecond)

	source.set("BTC_USDT", "SOL_USDT")
	require.Eventually(t, func() bool {
		return len(sender.messages()) == 1
	}, time.Second, time.Millisecond)
	require.Equal(t, []string{"1: New futures pair on MEXC: SOL_USDT"}, sender.messages())

	cancel()
	require.NoError(t, <-done)
}
