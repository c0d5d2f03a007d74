package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("ESHOP_API_PASSWORD", "super-secret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
api:
  password: ${ESHOP_API_PASSWORD}
  max_attempts: 3
  backoff_policy: linear
pohoda:
  firm_ico: "87654321"
  include_stock_items: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "super-secret", cfg.API.Password)
	assert.Equal(t, 3, cfg.API.MaxAttempts)
	assert.Equal(t, "linear", cfg.API.BackoffPolicy)
	assert.Equal(t, "87654321", cfg.Pohoda.FirmICO)
	assert.True(t, cfg.Pohoda.IncludeStockItems)

	// Unset fields keep their defaults.
	assert.Equal(t, "https://www.misdekor.cz/request.php", cfg.API.BaseURL)
	assert.Equal(t, 25*time.Second, cfg.API.Timeout())
	assert.Equal(t, 2*time.Second, cfg.API.BackoffBase())
	assert.Equal(t, filepath.Join("output", "new_orders.json"), cfg.Output.NewOrdersPath())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ESHOP_API_PASSWORD", "env-secret")
	t.Setenv("ESHOP_API_MAX_ATTEMPTS", "7")
	t.Setenv("OUTPUT_DIR", "artifacts")
	t.Setenv("STATE_FILE", "wm.json")

	cfg := LoadFromEnv()

	assert.Equal(t, "env-secret", cfg.API.Password)
	assert.Equal(t, 7, cfg.API.MaxAttempts)
	assert.Equal(t, "artifacts", cfg.Output.Dir)
	assert.Equal(t, "wm.json", cfg.State.Path)
	assert.Equal(t, "exponential", cfg.API.BackoffPolicy)
}

func TestLoadOrEnvFallsBack(t *testing.T) {
	t.Setenv("ESHOP_API_PASSWORD", "fallback-secret")

	cfg := LoadOrEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, "fallback-secret", cfg.API.Password)
}

func TestRunMode(t *testing.T) {
	tests := []struct {
		env  string
		want Mode
	}{
		{"", ModeLive},
		{"live", ModeLive},
		{"test", ModeReplay},
		{"TEST", ModeReplay},
		{" test ", ModeReplay},
		{"whatever", ModeLive},
	}

	for _, tt := range tests {
		t.Setenv("MODE", tt.env)
		assert.Equal(t, tt.want, RunMode(), "MODE=%q", tt.env)
	}
}
