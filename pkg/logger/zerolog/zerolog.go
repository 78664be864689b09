// Package zerolog builds the default futwatch logger on top of rs/zerolog
package zerolog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/goterm/term"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Options controls how log lines are rendered
type Options struct {
	Level          string    // zerolog level name, eg: debug, info
	DateTimeLayout string    // layout used for console timestamps
	Colored        bool      // colorize console output
	JSON           bool      // emit raw JSON lines instead of console output
	Output         io.Writer // destination, stdout when nil
}

// New creates a zerolog.Logger configured from opts
func New(opts Options) (*zerolog.Logger, error) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	if !opts.JSON {
		out = consoleWriter(out, opts.DateTimeLayout, opts.Colored)
	}

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		CallerWithSkipFrameCount(3).
		Logger()

	return &logger, nil
}

// NewLogger is a shortcut returning the logger already wrapped in an Adapter
func NewLogger(opts Options) (*Adapter, error) {
	logger, err := New(opts)
	if err != nil {
		return nil, err
	}
	return NewAdapter(logger), nil
}

func consoleWriter(out io.Writer, layout string, colored bool) zerolog.ConsoleWriter {
	paint := func(color func(string, ...interface{}) string, format string, args ...interface{}) string {
		if !colored {
			return fmt.Sprintf(format, args...)
		}
		return color(format, args...)
	}

	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    !colored,
		TimeFormat: layout,
		FormatLevel: func(i interface{}) string {
			level, _ := i.(string)
			return formatLevel(level, paint)
		},
		FormatMessage: func(i interface{}) string {
			msg, _ := i.(string)
			return paint(term.Whitef, "> %s", padMessage(msg))
		},
		FormatCaller: func(i interface{}) string {
			caller, _ := i.(string)
			if caller == "" {
				return ""
			}
			return paint(term.Yellowf, "[%s]", shortCaller(caller))
		},
		FormatTimestamp: func(i interface{}) string {
			return paint(term.Cyanf, "[%s]", formatTimestamp(i, layout))
		},
	}
}

type painter func(color func(string, ...interface{}) string, format string, args ...interface{}) string

func formatLevel(level string, paint painter) string {
	switch level {
	case zerolog.LevelTraceValue:
		return paint(term.Cyanf, "[TRC]")
	case zerolog.LevelDebugValue:
		return paint(term.Cyanf, "[DBG]")
	case zerolog.LevelInfoValue:
		return paint(term.Greenf, "[INF]")
	case zerolog.LevelWarnValue:
		return paint(term.Yellowf, "[WAR]")
	case zerolog.LevelErrorValue:
		return paint(term.Redf, "[ERR]")
	case zerolog.LevelFatalValue:
		return paint(term.Redf, "[FTL]")
	case zerolog.LevelPanicValue:
		return paint(term.Redf, "[PAN]")
	default:
		return paint(term.Whitef, "[UNK]")
	}
}

// padMessage truncates or pads msg so fields line up in the console
func padMessage(msg string) string {
	const maxSize = 60

	if len(msg) > maxSize {
		return msg[:maxSize]
	}
	return msg + strings.Repeat(" ", maxSize-len(msg))
}

// shortCaller renders file:line with a fixed width
func shortCaller(caller string) string {
	const maxFileSize = 18
	const maxLineSize = 4

	file, line, found := strings.Cut(filepath.Base(caller), ":")
	if !found {
		return file
	}

	if len(file) > maxFileSize {
		file = file[:maxFileSize]
	}
	if len(line) > maxLineSize {
		line = line[len(line)-maxLineSize:]
	}

	return fmt.Sprintf("%-*s:%*s", maxFileSize, file, maxLineSize, line)
}

func formatTimestamp(i interface{}, layout string) string {
	raw, ok := i.(string)
	if !ok {
		return fmt.Sprint(i)
	}

	ts, err := time.ParseInLocation(zerolog.TimeFieldFormat, raw, time.Local)
	if err != nil {
		return raw
	}
	return ts.In(time.Local).Format(layout)
}

// Nop returns a logger that discards everything, handy in tests
func Nop() *Adapter {
	logger := zerolog.Nop()
	return NewAdapter(&logger)
}
