package mexc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/raykavin/futwatch/pkg/exchange"
	"github.com/raykavin/futwatch/pkg/logger/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = exchange.RetryPolicy{Attempts: 3, MinBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()

	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client := NewClient(zerolog.Nop(), Config{URL: server.URL, Retry: fastRetry})
	return client, &hits
}

func TestParseContracts(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    []string
		wantErr error
	}{
		{
			name: "wrapped in data",
			body: `{"success":true,"code":0,"data":[{"symbol":"BTC_USDT","displayName":"BTC_USDT PERPETUAL"},{"symbol":"ETH_USDT"}]}`,
			want: []string{"BTC_USDT", "ETH_USDT"},
		},
		{
			name: "bare list",
			body: `[{"symbol":"SOL_USDT"}]`,
			want: []string{"SOL_USDT"},
		},
		{
			name: "empty list",
			body: `{"data":[]}`,
			want: []string{},
		},
		{
			name:    "missing symbol discards batch",
			body:    `{"data":[{"symbol":"BTC_USDT"},{"name":"ETH_USDT"}]}`,
			wantErr: exchange.ErrMissingSymbol,
		},
		{
			name:    "non string symbol",
			body:    `[{"symbol":42}]`,
			wantErr: exchange.ErrMissingSymbol,
		},
		{
			name:    "error envelope",
			body:    `{"success":false,"code":510,"message":"too frequent"}`,
			wantErr: exchange.ErrUnexpectedShape,
		},
		{
			name:    "invalid json",
			body:    `{"data":[`,
			wantErr: exchange.ErrUnexpectedShape,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseContracts([]byte(tt.body))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, got)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Contracts(t *testing.T) {
	client, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[{"symbol":"BTC_USDT"},{"symbol":"ETH_USDT"}]}`))
	})

	symbols, err := client.Contracts(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"BTC_USDT", "ETH_USDT"}, symbols)
	require.EqualValues(t, 1, atomic.LoadInt32(hits))
	require.Equal(t, "MEXC", client.Name())
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	client, hits := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"symbol":"BTC_USDT"}]}`))
	})

	symbols, err := client.Contracts(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"BTC_USDT"}, symbols)
	require.EqualValues(t, 2, atomic.LoadInt32(hits))
}

func TestClient_StatusErrorNotRetried(t *testing.T) {
	client, hits := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	_, err := client.Contracts(context.Background())
	var status *exchange.StatusError
	require.ErrorAs(t, err, &status)
	require.Equal(t, http.StatusNotFound, status.StatusCode)
	require.Equal(t, "gone", status.Body)
	require.EqualValues(t, 1, atomic.LoadInt32(hits))
}

func TestClient_MalformedPayloadNotRetried(t *testing.T) {
	client, hits := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":1}]}`))
	})

	_, err := client.Contracts(context.Background())
	require.ErrorIs(t, err, exchange.ErrMissingSymbol)
	require.EqualValues(t, 1, atomic.LoadInt32(hits))
}

func TestClient_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(zerolog.Nop(), Config{URL: url, Retry: fastRetry})
	_, err := client.Contracts(context.Background())
	require.Error(t, err)
}
