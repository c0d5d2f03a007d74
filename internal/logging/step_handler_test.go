package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewStepHandler(&buf, nil)).With("step", "fetch-orders")

	logger.Info("fetched orders", "count", 3)

	out := buf.String()
	assert.Contains(t, out, "[INFO] [fetch-orders]")
	assert.Contains(t, out, "fetched orders count=3")
	assert.NotContains(t, out, "step=", "step rides the bracket, not the attrs")
	assert.NotContains(t, out, "\033[", "no colors when writer is not a terminal")
}

func TestStepHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewStepHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	logger.Info("hidden")
	logger.Warn("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "[WARN]")
}
