package common

import (
	"log/slog"
	"os"
)

// SetupLogger configures the global logger with appropriate settings.
func SetupLogger(level slog.Level, format string) error {
	var handler slog.Handler

	opts := &slog.HandlerOptions{Level: level}

	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))

	return nil
}

// ParseLogLevel maps a config string to a slog level, defaulting to info.
func ParseLogLevel(s string) slog.Level {
	switch s {
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
