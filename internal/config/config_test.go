package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadAppConfig_Defaults(t *testing.T) {
	t.Setenv(keyToken, " 123:abc ")

	config, err := LoadAppConfig()
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	require.Equal(t, "mexc", config.Exchange)
	require.Equal(t, time.Minute, config.Interval)
	require.Equal(t, 10*time.Second, config.HTTPTimeout)
	require.Equal(t, 3, config.Retries)
	require.Equal(t, "123:abc", config.Telegram.Token)
	require.Equal(t, ":memory:", config.Storage.Path)
	require.False(t, config.Storage.UseRedis())

	settings := config.Settings()
	require.Equal(t, "mexc", settings.Exchange)
	require.Empty(t, settings.Source.URL)
	require.Equal(t, 3, settings.Source.RetryAttempts)
}

func TestLoadAppConfig_Environment(t *testing.T) {
	t.Setenv(keyToken, "123:abc")
	t.Setenv(keyExchange, "Binance")
	t.Setenv(keyInterval, "1d")
	t.Setenv(keyBinanceURL, "http://localhost:9999")
	t.Setenv(keyRedisAddr, "localhost:6379")
	t.Setenv(keyRedisDB, "2")

	config, err := LoadAppConfig()
	require.NoError(t, err)

	require.Equal(t, "binance", config.Exchange)
	require.Equal(t, 24*time.Hour, config.Interval)
	require.True(t, config.Storage.UseRedis())
	require.Equal(t, 2, config.Storage.RedisDB)
	require.Equal(t, "http://localhost:9999", config.Settings().Source.URL)
}

func TestLoadAppConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "futwatch.yaml")
	content := "telegram_token: \"456:def\"\nfutwatch_interval: 30s\nfutwatch_retry_attempts: 5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv(keyConfigPath, path)
	t.Setenv(keyRetryAttempts, "2")

	config, err := LoadAppConfig()
	require.NoError(t, err)
	require.Equal(t, "456:def", config.Telegram.Token)
	require.Equal(t, 30*time.Second, config.Interval)
	require.Equal(t, 2, config.Retries, "environment overrides the file")
}

func TestLoadAppConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"exchange", keyExchange, "kraken"},
		{"interval syntax", keyInterval, "soon"},
		{"interval too short", keyInterval, "100ms"},
		{"retries", keyRetryAttempts, "0"},
		{"missing file", keyConfigPath, "/does/not/exist.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadAppConfig()
			require.Error(t, err)
		})
	}
}

func TestValidate_RequiresToken(t *testing.T) {
	t.Setenv(keyToken, "")

	config, err := LoadAppConfig()
	require.NoError(t, err)
	require.EqualError(t, config.Validate(), "TELEGRAM_TOKEN is required")
}
