// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

// ParseLevel maps a configured level name to a slog level.
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

// NewLogHandler returns a JSON handler for format "json" and a colored
// text handler otherwise.
func NewLogHandler(w io.Writer, level, format string) slog.Handler {
	lvl := ParseLevel(level)
	if format == "json" {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	}
	return tint.NewHandler(w, &tint.Options{Level: lvl})
}

// SetupLogger configures the global slog logger.
func SetupLogger(level, format string) {
	slog.SetDefault(slog.New(NewLogHandler(os.Stdout, level, format)))
}
