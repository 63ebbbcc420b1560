package logger

import (
	"io"
	"log/slog"
	"strings"
)

// Init initializes the global application logger.
//
// The "pretty" flag dictates whether the output is human-readable text or JSON lines.
func Init(writer io.Writer, level string, pretty bool) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if pretty {
		handler = slog.NewTextHandler(writer, opts)
	} else {
		handler = slog.NewJSONHandler(writer, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// parseLevel converts the given level string to a slog.Level value.
// Unrecognized values default to info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
