package zerolog

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/raykavin/futwatch/pkg/logger"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	require.Error(t, err)
}

func TestAdapter_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(Options{Level: "debug", JSON: true, Output: &buf})
	require.NoError(t, err)

	log.WithField("symbol", "SOL_USDT").
		WithError(errors.New("boom")).
		Info("delivery failed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "info", line["level"])
	require.Equal(t, "SOL_USDT", line["symbol"])
	require.Equal(t, "boom", line["error"])
	require.Equal(t, "delivery failed", line["message"])
}

func TestAdapter_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(Options{Level: "info", JSON: true, Output: &buf})
	require.NoError(t, err)

	log.Debug("hidden")
	require.Zero(t, buf.Len())

	log.SetLevel(logger.DebugLevel)
	require.Equal(t, logger.DebugLevel, log.GetLevel())
	log.Debug("visible")
	require.Contains(t, buf.String(), "visible")
}

func TestConsoleWriter_Plain(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(Options{Level: "info", DateTimeLayout: "15:04:05", Output: &buf})
	require.NoError(t, err)

	log.Warn("slow delivery")
	out := buf.String()
	require.True(t, strings.Contains(out, "[WAR]"), out)
	require.Contains(t, out, "> slow delivery")
}

func TestShortCaller(t *testing.T) {
	require.Equal(t, "watcher.go        :  42", shortCaller("/src/pkg/watcher/watcher.go:42"))
	require.Equal(t, "nocolon", shortCaller("nocolon"))
}
