package cli

import (
	"io"
	"log/slog"
	"strings"

	"github.com/rs/zerolog"
)

// NewLogger builds the diagnostic logger for CLI commands. Output goes to
// w (stderr in production); a nil w discards everything.
//
// The "text" format is slog's text handler. The "console" format encodes
// records as JSON and renders them through zerolog's ConsoleWriter, which
// prints aligned, human-friendly lines.
func NewLogger(w io.Writer, format string, verbose bool) *slog.Logger {
	if w == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	if format == "console" {
		console := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05"}
		return slog.New(slog.NewJSONHandler(console, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: zerologFields,
		}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// zerologFields renames slog's built-in keys to the ones ConsoleWriter
// reads.
func zerologFields(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.MessageKey:
		a.Key = zerolog.MessageFieldName
	case slog.LevelKey:
		a.Key = zerolog.LevelFieldName
		a.Value = slog.StringValue(strings.ToLower(a.Value.String()))
	case slog.TimeKey:
		a.Key = zerolog.TimestampFieldName
	}
	return a
}
