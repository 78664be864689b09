// Package config handles application configuration management using Viper
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/raykavin/futwatch/pkg/core"
	"github.com/spf13/viper"
	"github.com/xhit/go-str2duration/v2"
)

// Constants for configuration
const (
	DefaultExchange      = "mexc"
	DefaultInterval      = "1m"
	DefaultHTTPTimeout   = "10s"
	DefaultPollTimeout   = "10s"
	DefaultRetryAttempts = 3
	DefaultStoragePath   = ":memory:"

	minInterval = time.Second
)

// Environment variable names, also accepted as lower case keys in the config file
const (
	keyConfigPath    = "FUTWATCH_CONFIG"
	keyToken         = "TELEGRAM_TOKEN"
	keyPollTimeout   = "TELEGRAM_POLL_TIMEOUT"
	keyExchange      = "FUTWATCH_EXCHANGE"
	keyInterval      = "FUTWATCH_INTERVAL"
	keyMEXCURL       = "FUTWATCH_MEXC_URL"
	keyBinanceURL    = "FUTWATCH_BINANCE_URL"
	keyHTTPTimeout   = "FUTWATCH_HTTP_TIMEOUT"
	keyRetryAttempts = "FUTWATCH_RETRY_ATTEMPTS"
	keyStoragePath   = "FUTWATCH_STORAGE_PATH"
	keyRedisAddr     = "FUTWATCH_REDIS_ADDR"
	keyRedisPassword = "FUTWATCH_REDIS_PASSWORD"
	keyRedisDB       = "FUTWATCH_REDIS_DB"
)

var supportedExchanges = map[string]bool{
	"mexc":    true,
	"binance": true,
}

// AppConfig holds the application configuration
type AppConfig struct {
	Exchange    string
	Interval    time.Duration
	HTTPTimeout time.Duration
	Retries     int
	MEXCURL     string
	BinanceURL  string
	Telegram    TelegramConfig
	Storage     StorageConfig
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	Token       string
	PollTimeout time.Duration
}

// StorageConfig selects where subscribers and known symbols are kept
type StorageConfig struct {
	Path          string // buntdb file, ":memory:" keeps nothing across restarts
	RedisAddr     string // when set redis is used instead of buntdb
	RedisPassword string
	RedisDB       int
}

// UseRedis reports whether the redis backend is configured
func (s StorageConfig) UseRedis() bool {
	return s.RedisAddr != ""
}

// LoadAppConfig loads application configuration from the environment and, when
// FUTWATCH_CONFIG points to one, a config file. Environment values win.
func LoadAppConfig() (*AppConfig, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*AppConfig, error) {
	// Set up Viper for environment variables
	v.AutomaticEnv()

	// Set default values
	v.SetDefault(keyExchange, DefaultExchange)
	v.SetDefault(keyInterval, DefaultInterval)
	v.SetDefault(keyHTTPTimeout, DefaultHTTPTimeout)
	v.SetDefault(keyPollTimeout, DefaultPollTimeout)
	v.SetDefault(keyRetryAttempts, DefaultRetryAttempts)
	v.SetDefault(keyStoragePath, DefaultStoragePath)
	v.SetDefault(keyRedisDB, 0)

	if path := v.GetString(keyConfigPath); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	interval, err := parseDuration(v, keyInterval)
	if err != nil {
		return nil, err
	}

	httpTimeout, err := parseDuration(v, keyHTTPTimeout)
	if err != nil {
		return nil, err
	}

	pollTimeout, err := parseDuration(v, keyPollTimeout)
	if err != nil {
		return nil, err
	}

	// Create the configuration
	config := &AppConfig{
		Exchange:    strings.ToLower(strings.TrimSpace(v.GetString(keyExchange))),
		Interval:    interval,
		HTTPTimeout: httpTimeout,
		Retries:     v.GetInt(keyRetryAttempts),
		MEXCURL:     v.GetString(keyMEXCURL),
		BinanceURL:  v.GetString(keyBinanceURL),
		Telegram: TelegramConfig{
			Token:       strings.TrimSpace(v.GetString(keyToken)),
			PollTimeout: pollTimeout,
		},
		Storage: StorageConfig{
			Path:          v.GetString(keyStoragePath),
			RedisAddr:     v.GetString(keyRedisAddr),
			RedisPassword: v.GetString(keyRedisPassword),
			RedisDB:       v.GetInt(keyRedisDB),
		},
	}

	if err := config.validateSource(); err != nil {
		return nil, err
	}

	return config, nil
}

// parseDuration accepts Go durations plus day and week units, eg: 1d, 2w
func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	duration, err := str2duration.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return duration, nil
}

// validateSource checks what every command needs to reach the exchange
func (c *AppConfig) validateSource() error {
	if !supportedExchanges[c.Exchange] {
		return fmt.Errorf("unsupported exchange %q, use mexc or binance", c.Exchange)
	}
	if c.Interval < minInterval {
		return fmt.Errorf("interval %s is below the %s minimum", c.Interval, minInterval)
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("http timeout must be positive")
	}
	if c.Retries < 1 {
		return fmt.Errorf("retry attempts must be at least 1, got %d", c.Retries)
	}
	return nil
}

// Validate checks the settings needed to run the bot
func (c *AppConfig) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("%s is required", keyToken)
	}
	return c.validateSource()
}

// Settings converts the configuration to core settings
func (c *AppConfig) Settings() core.Settings {
	url := c.MEXCURL
	if c.Exchange == "binance" {
		url = c.BinanceURL
	}

	return core.Settings{
		Exchange: c.Exchange,
		Interval: c.Interval,
		Source: core.SourceSettings{
			URL:           url,
			Timeout:       c.HTTPTimeout,
			RetryAttempts: c.Retries,
		},
		Telegram: core.TelegramSettings{
			Token:       c.Telegram.Token,
			PollTimeout: c.Telegram.PollTimeout,
		},
	}
}
