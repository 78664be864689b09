package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/raykavin/futwatch/pkg/core"
	"github.com/stretchr/testify/require"
)

// testStore runs the behaviour every core.Store must provide
func testStore(t *testing.T, store core.Store) {
	ctx := context.Background()

	subscribers, err := store.Subscribers(ctx)
	require.NoError(t, err)
	require.Empty(t, subscribers)

	for _, id := range []string{"300", "100", "200"} {
		added, err := store.AddSubscriber(ctx, id)
		require.NoError(t, err)
		require.True(t, added)
	}

	added, err := store.AddSubscriber(ctx, "100")
	require.NoError(t, err)
	require.False(t, added)

	subscribers, err = store.Subscribers(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"300", "100", "200"}, subscribers)

	removed, err := store.RemoveSubscriber(ctx, "100")
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = store.RemoveSubscriber(ctx, "100")
	require.NoError(t, err)
	require.False(t, removed)

	subscribers, err = store.Subscribers(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"300", "200"}, subscribers)

	require.NoError(t, store.ReplaceKnownSymbols(ctx, []string{"ETH_USDT", "BTC_USDT"}))
	known, err := store.KnownSymbols(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"BTC_USDT", "ETH_USDT"}, known)

	require.NoError(t, store.ReplaceKnownSymbols(ctx, []string{"SOL_USDT"}))
	known, err = store.KnownSymbols(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"SOL_USDT"}, known)

	require.NoError(t, store.ReplaceKnownSymbols(ctx, nil))
	known, err = store.KnownSymbols(ctx)
	require.NoError(t, err)
	require.Empty(t, known)
}

func TestBuntStorage_Memory(t *testing.T) {
	store, err := FromMemory()
	require.NoError(t, err)
	defer store.Close()

	testStore(t, store)
}

func TestBuntStorage_FileSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "futwatch.db")

	store, err := FromFile(path)
	require.NoError(t, err)

	_, err = store.AddSubscriber(ctx, "42")
	require.NoError(t, err)
	require.NoError(t, store.ReplaceKnownSymbols(ctx, []string{"BTC_USDT"}))
	require.NoError(t, store.Close())

	store, err = FromFile(path)
	require.NoError(t, err)
	defer store.Close()

	// registration order continues after the restored subscribers
	_, err = store.AddSubscriber(ctx, "7")
	require.NoError(t, err)

	subscribers, err := store.Subscribers(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"42", "7"}, subscribers)

	known, err := store.KnownSymbols(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"BTC_USDT"}, known)
}

func TestRedisStorage(t *testing.T) {
	addr := os.Getenv("FUTWATCH_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("FUTWATCH_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	store, err := NewRedisStorage(ctx, RedisConfig{Addr: addr, Namespace: "test-" + t.Name()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	keys := []string{store.subscribersKey(), store.sequenceKey(), store.knownKey()}
	require.NoError(t, store.client.Del(ctx, keys...).Err())
	t.Cleanup(func() { store.client.Del(context.Background(), keys...) })

	testStore(t, store)
}
