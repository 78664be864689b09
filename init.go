package futwatch

import (
	"os"
	"strconv"

	"github.com/raykavin/futwatch/pkg/logger"
	"github.com/raykavin/futwatch/pkg/logger/logrus"
	"github.com/raykavin/futwatch/pkg/logger/zerolog"
)

const (
	// Default configuration values
	defaultLogLevel      = "info"
	defaultLogTimeFormat = "2006-01-02 15:04:05"
	defaultLogColored    = "true"
	defaultLogJSON       = "false"
	defaultLogBackend    = "zerolog"
)

// Environment variable names
const (
	envLogLevel      = "FUTWATCH_LOG_LEVEL"
	envLogTimeFormat = "FUTWATCH_LOG_TIME_FORMAT"
	envLogColor      = "FUTWATCH_LOG_COLOR"
	envLogJSON       = "FUTWATCH_LOG_JSON"
	envLogBackend    = "FUTWATCH_LOG_BACKEND"
)

// DefaultLog is the logger used when no other is given through WithLogger
var DefaultLog logger.Logger

func init() {
	// Initialize the logger with configuration from environment variables
	log, err := initLogger()
	if err != nil {
		panic(err)
	}

	DefaultLog = log
}

// initLogger creates a new logger instance configured from environment variables
func initLogger() (logger.Logger, error) {
	// Get configuration from environment variables with defaults
	logLevel := getEnvWithDefault(envLogLevel, defaultLogLevel)
	logTimeFormat := getEnvWithDefault(envLogTimeFormat, defaultLogTimeFormat)

	// Parse boolean configurations
	logColored, err := parseBoolEnv(envLogColor, defaultLogColored)
	if err != nil {
		return nil, err
	}

	logJSON, err := parseBoolEnv(envLogJSON, defaultLogJSON)
	if err != nil {
		return nil, err
	}

	if getEnvWithDefault(envLogBackend, defaultLogBackend) == "logrus" {
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return nil, err
		}
		return logrus.New(level, logJSON, nil), nil
	}

	// Create and return the logger
	log, err := zerolog.NewLogger(zerolog.Options{
		Level:          logLevel,
		DateTimeLayout: logTimeFormat,
		Colored:        logColored,
		JSON:           logJSON,
	})
	if err != nil {
		return nil, err
	}
	return log, nil
}

// getEnvWithDefault returns the value of the environment variable or the default if not set
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// parseBoolEnv gets a boolean environment variable with a default value
func parseBoolEnv(key, defaultValue string) (bool, error) {
	value := getEnvWithDefault(key, defaultValue)
	return strconv.ParseBool(value)
}
