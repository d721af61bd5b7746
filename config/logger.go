package config

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. GO_ENV=production selects JSON
// output; anything else gets a human-readable text handler. LOG_LEVEL
// accepts debug, info, warn, or error and defaults to info.
func NewLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv("LOG_LEVEL"))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if os.Getenv("GO_ENV") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
