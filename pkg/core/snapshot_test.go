package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_NewSnapshot(t *testing.T) {
	snapshot := NewSnapshot("BTC_USDT", "ETH_USDT", "BTC_USDT")
	require.Equal(t, 2, snapshot.Len())
	require.True(t, snapshot.Contains("BTC_USDT"))
	require.False(t, snapshot.Contains("btc_usdt"))
	require.True(t, NewSnapshot().IsEmpty())
}

func TestSnapshot_Difference(t *testing.T) {
	known := NewSnapshot("BTC_USDT", "ETH_USDT")
	fetched := NewSnapshot("BTC_USDT", "ETH_USDT", "SOL_USDT", "ADA_USDT")

	assert.Equal(t, []string{"ADA_USDT", "SOL_USDT"}, fetched.Difference(known))
	assert.Empty(t, known.Difference(fetched))
	assert.Equal(t, known.Symbols(), known.Difference(nil))
}

func TestSnapshot_Union(t *testing.T) {
	known := NewSnapshot("BTC_USDT", "OLD_USDT")
	fetched := NewSnapshot("BTC_USDT", "SOL_USDT")

	union := known.Union(fetched)
	assert.Equal(t, []string{"BTC_USDT", "OLD_USDT", "SOL_USDT"}, union.Symbols())

	// operands are left untouched
	assert.Equal(t, 2, known.Len())
	assert.Equal(t, 2, fetched.Len())
}

func TestSnapshot_Clone(t *testing.T) {
	original := NewSnapshot("BTC_USDT")
	clone := original.Clone()
	clone["ETH_USDT"] = struct{}{}

	assert.False(t, original.Contains("ETH_USDT"))
	assert.True(t, clone.Contains("ETH_USDT"))
}
