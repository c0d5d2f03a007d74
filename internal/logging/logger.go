// Package logging provides structured logging for the bridge steps.
//
// Logs are formatted Maven-style with colors:
// [LEVEL] [step] [HH:MM:SS] message key=value
package logging

import (
	"log/slog"
	"os"

	"github.com/misdekor/pohoda-bridge/internal/config"
)

// NewLogger creates a structured logger based on config
func NewLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := NewStepHandler(os.Stdout, opts)

	return slog.New(handler)
}

// NewStepLogger creates a logger tagged with a pipeline step name
// (e.g. "fetch-orders", "build-pohoda"). Every line the external
// scheduler sees carries the step in brackets.
func NewStepLogger(cfg config.LoggingConfig, step string) *slog.Logger {
	return NewLogger(cfg).With("step", step)
}
