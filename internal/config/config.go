// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	password := cfg.API.Password
//	statePath := cfg.State.Path
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode selects how the sync treats the watermark.
type Mode string

const (
	// ModeLive exports only orders above the persisted watermark and
	// advances it afterwards.
	ModeLive Mode = "live"
	// ModeReplay exports every fetched order and leaves the persisted
	// watermark untouched. Used for one-off backfills.
	ModeReplay Mode = "test"
)

// Config represents the entire application configuration
type Config struct {
	API     APIConfig     `yaml:"api"`
	Output  OutputConfig  `yaml:"output"`
	State   StateConfig   `yaml:"state"`
	Pohoda  PohodaConfig  `yaml:"pohoda"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig holds e-shop API settings
type APIConfig struct {
	BaseURL            string `yaml:"base_url"`
	Password           string `yaml:"password"`
	TimeoutSeconds     int    `yaml:"timeout_seconds"`
	MaxAttempts        int    `yaml:"max_attempts"`
	BackoffBaseSeconds int    `yaml:"backoff_base_seconds"`
	BackoffPolicy      string `yaml:"backoff_policy"` // "exponential" or "linear"
}

// Timeout returns the per-request timeout as a duration.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// BackoffBase returns the backoff base delay as a duration.
func (a APIConfig) BackoffBase() time.Duration {
	return time.Duration(a.BackoffBaseSeconds) * time.Second
}

// OutputConfig holds artifact locations
type OutputConfig struct {
	Dir           string `yaml:"dir"`
	OrdersFile    string `yaml:"orders_file"`
	NewOrdersFile string `yaml:"new_orders_file"`
	DocumentFile  string `yaml:"document_file"`
}

// OrdersPath returns the full path of the all-orders snapshot artifact.
func (o OutputConfig) OrdersPath() string {
	return filepath.Join(o.Dir, o.OrdersFile)
}

// NewOrdersPath returns the full path of the new-orders artifact.
func (o OutputConfig) NewOrdersPath() string {
	return filepath.Join(o.Dir, o.NewOrdersFile)
}

// DocumentPath returns the full path of the rendered XML document.
func (o OutputConfig) DocumentPath() string {
	return filepath.Join(o.Dir, o.DocumentFile)
}

// StateConfig holds watermark persistence settings
type StateConfig struct {
	Path string `yaml:"path"`
}

// PohodaConfig holds settings for the accounting import document
type PohodaConfig struct {
	FirmICO           string `yaml:"firm_ico"`
	Application       string `yaml:"application"`
	IncludeStockItems bool   `yaml:"include_stock_items"`
	DefaultStore      string `yaml:"default_store"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${ESHOP_API_PASSWORD})
	expanded := os.ExpandEnv(string(data))

	cfg := defaults()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := defaults()
	cfg.API.BaseURL = getEnv("ESHOP_API_BASE", cfg.API.BaseURL)
	cfg.API.Password = os.Getenv("ESHOP_API_PASSWORD")
	cfg.API.TimeoutSeconds = getEnvInt("ESHOP_API_TIMEOUT", cfg.API.TimeoutSeconds)
	cfg.API.MaxAttempts = getEnvInt("ESHOP_API_MAX_ATTEMPTS", cfg.API.MaxAttempts)
	cfg.Output.Dir = getEnv("OUTPUT_DIR", cfg.Output.Dir)
	cfg.State.Path = getEnv("STATE_FILE", cfg.State.Path)
	cfg.Pohoda.FirmICO = getEnv("POHODA_FIRM_ICO", cfg.Pohoda.FirmICO)
	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	return cfg
}

// LoadOrEnv tries to load from the given path (or config.yaml when empty),
// falling back to environment variables
func LoadOrEnv(path string) *Config {
	if path == "" {
		path = "config.yaml"
	}
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// RunMode reads the MODE environment variable. Unrecognized values mean live.
func RunMode() Mode {
	mode := Mode(strings.ToLower(strings.TrimSpace(os.Getenv("MODE"))))
	if mode == ModeReplay {
		return ModeReplay
	}
	return ModeLive
}

func defaults() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:            "https://www.misdekor.cz/request.php",
			TimeoutSeconds:     25,
			MaxAttempts:        5,
			BackoffBaseSeconds: 2,
			BackoffPolicy:      "exponential",
		},
		Output: OutputConfig{
			Dir:           "output",
			OrdersFile:    "orders.json",
			NewOrdersFile: "new_orders.json",
			DocumentFile:  "pohoda.xml",
		},
		State: StateConfig{
			Path: "state.json",
		},
		Pohoda: PohodaConfig{
			Application:  "misdekor-bridge",
			DefaultStore: "ZBOŽÍ",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}
