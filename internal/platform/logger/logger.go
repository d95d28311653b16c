// Package logger builds the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const formatJSON = "json"

// New returns a logger writing to w. An empty format picks JSON in production
// and text everywhere else.
func New(w io.Writer, level, format, environment string) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = "text"
		if strings.EqualFold(environment, "production") {
			format = formatJSON
		}
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, formatJSON) {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel converts a string to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
