// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for alphabot.
//
// Configuration precedence:
//   - ALPHABOT_* environment variables
//   - ~/.alphabot/config.toml
//   - Built-in defaults
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/alphabot-dev/alphabot-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete alphabot configuration.
type Config struct {
	// Backend configuration
	Backend BackendConfig `toml:"backend"`

	// History configuration
	History HistoryConfig `toml:"history"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// BackendConfig contains AlphaBot backend connection configuration.
type BackendConfig struct {
	// BaseURL is the URL of the AlphaBot API server
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the timeout for non-streaming requests in seconds
	TimeoutSecs int `toml:"timeout_secs"`
	// RequestsPerMinute caps outgoing chat requests
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// HistoryConfig contains chat history configuration.
type HistoryConfig struct {
	// Dir is the storage directory (empty = ~/.alphabot)
	Dir string `toml:"dir"`
	// Enabled toggles persistence entirely
	Enabled bool `toml:"enabled"`
}

// UIConfig contains terminal UI configuration.
type UIConfig struct {
	// Markdown enables glamour rendering of assistant messages
	Markdown bool `toml:"markdown"`
	// Spinner enables the status spinner while waiting
	Spinner bool `toml:"spinner"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:           "http://127.0.0.1:8780",
			TimeoutSecs:       30,
			RequestsPerMinute: 30,
		},
		History: HistoryConfig{
			Enabled: true,
		},
		UI: UIConfig{
			Markdown: true,
			Spinner:  true,
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".alphabot", "config.toml")
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads configuration from the default path, applies environment
// overrides, and validates. A missing file yields defaults, not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom reads configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, err
			}
		}
	}

	cfg.applyEnv()
	cfg.Validate()
	return cfg, nil
}

// applyEnv overrides fields from ALPHABOT_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("ALPHABOT_BASE_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("ALPHABOT_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Backend.TimeoutSecs = n
		}
	}
	if v := os.Getenv("ALPHABOT_HISTORY_DIR"); v != "" {
		c.History.Dir = v
	}
	if v := os.Getenv("ALPHABOT_HISTORY_ENABLED"); v != "" {
		c.History.Enabled = v != "false" && v != "0"
	}
}

// Validate clamps out-of-range values to sane bounds.
func (c *Config) Validate() {
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = "http://127.0.0.1:8780"
	}
	if c.Backend.TimeoutSecs < 1 {
		c.Backend.TimeoutSecs = 30
	}
	if c.Backend.TimeoutSecs > 600 {
		c.Backend.TimeoutSecs = 600
	}
	if c.Backend.RequestsPerMinute < 1 {
		c.Backend.RequestsPerMinute = 30
	}
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSecs) * time.Second
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to the given path atomically.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return err
	}
	return util.AtomicWriteFile(path, buf.Bytes(), 0644)
}
