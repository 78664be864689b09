package core

import "time"

// Settings represents the main configuration for the watcher
type Settings struct {
	Exchange string           // Exchange whose futures listings are tracked, eg: mexc
	Interval time.Duration    // Time between two listing checks
	Source   SourceSettings   // Contract list endpoint settings
	Telegram TelegramSettings // Telegram delivery settings
}

// SourceSettings holds the REST client configuration
type SourceSettings struct {
	URL           string        // Custom endpoint (if needed)
	Timeout       time.Duration // HTTP client timeout
	RetryAttempts int           // Attempts per check
	MinBackoff    time.Duration // First wait between attempts
	MaxBackoff    time.Duration // Wait cap between attempts
}

// TelegramSettings holds configuration for Telegram integration
type TelegramSettings struct {
	Token       string        // Telegram bot token
	PollTimeout time.Duration // Long polling timeout
}
