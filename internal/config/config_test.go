// Copyright (c) 2025-2026 AlphaBot Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// =============================================================================
// DEFAULT TESTS
// =============================================================================

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Backend.BaseURL != "http://127.0.0.1:8780" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.TimeoutSecs != 30 {
		t.Errorf("TimeoutSecs = %d, want 30", cfg.Backend.TimeoutSecs)
	}
	if cfg.Backend.RequestsPerMinute != 30 {
		t.Errorf("RequestsPerMinute = %d, want 30", cfg.Backend.RequestsPerMinute)
	}
	if !cfg.History.Enabled {
		t.Error("history should be enabled by default")
	}
	if !cfg.UI.Markdown || !cfg.UI.Spinner {
		t.Error("markdown and spinner should be enabled by default")
	}
}

func TestTimeout(t *testing.T) {
	cfg := Default()
	cfg.Backend.TimeoutSecs = 45
	if cfg.Timeout() != 45*time.Second {
		t.Errorf("Timeout() = %v, want 45s", cfg.Timeout())
	}
}

// =============================================================================
// LOADING TESTS
// =============================================================================

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom missing file: %v", err)
	}
	if cfg.Backend.BaseURL != Default().Backend.BaseURL {
		t.Error("missing file should yield defaults")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[backend]
base_url = "http://10.0.0.5:9000"
timeout_secs = 60

[history]
enabled = false

[ui]
markdown = false
spinner = true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Backend.BaseURL != "http://10.0.0.5:9000" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.TimeoutSecs != 60 {
		t.Errorf("TimeoutSecs = %d", cfg.Backend.TimeoutSecs)
	}
	if cfg.History.Enabled {
		t.Error("history should be disabled by the file")
	}
	if cfg.UI.Markdown {
		t.Error("markdown should be disabled by the file")
	}
	// Unset fields keep their defaults.
	if cfg.Backend.RequestsPerMinute != 30 {
		t.Errorf("RequestsPerMinute = %d, want default 30", cfg.Backend.RequestsPerMinute)
	}
}

func TestLoadFromInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[backend\nbroken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("invalid TOML should error")
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDE TESTS
// =============================================================================

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ALPHABOT_BASE_URL", "http://env.example:1234")
	t.Setenv("ALPHABOT_TIMEOUT_SECS", "90")
	t.Setenv("ALPHABOT_HISTORY_DIR", "/tmp/envhistory")
	t.Setenv("ALPHABOT_HISTORY_ENABLED", "false")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Backend.BaseURL != "http://env.example:1234" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.TimeoutSecs != 90 {
		t.Errorf("TimeoutSecs = %d, want 90", cfg.Backend.TimeoutSecs)
	}
	if cfg.History.Dir != "/tmp/envhistory" {
		t.Errorf("History.Dir = %q", cfg.History.Dir)
	}
	if cfg.History.Enabled {
		t.Error("ALPHABOT_HISTORY_ENABLED=false should disable history")
	}
}

func TestEnvInvalidTimeoutIgnored(t *testing.T) {
	t.Setenv("ALPHABOT_TIMEOUT_SECS", "not-a-number")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Backend.TimeoutSecs != 30 {
		t.Errorf("TimeoutSecs = %d, want default", cfg.Backend.TimeoutSecs)
	}
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestValidateClamps(t *testing.T) {
	cfg := &Config{}
	cfg.Backend.TimeoutSecs = 0
	cfg.Backend.RequestsPerMinute = -5
	cfg.Validate()

	if cfg.Backend.TimeoutSecs != 30 {
		t.Errorf("TimeoutSecs = %d, want clamped to 30", cfg.Backend.TimeoutSecs)
	}
	if cfg.Backend.RequestsPerMinute != 30 {
		t.Errorf("RequestsPerMinute = %d, want clamped to 30", cfg.Backend.RequestsPerMinute)
	}
	if cfg.Backend.BaseURL == "" {
		t.Error("empty BaseURL should be replaced")
	}

	cfg.Backend.TimeoutSecs = 10000
	cfg.Validate()
	if cfg.Backend.TimeoutSecs != 600 {
		t.Errorf("TimeoutSecs = %d, want capped at 600", cfg.Backend.TimeoutSecs)
	}
}

// =============================================================================
// SAVE TESTS
// =============================================================================

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Backend.BaseURL = "http://saved.example:8780"
	cfg.UI.Markdown = false
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.Backend.BaseURL != "http://saved.example:8780" {
		t.Errorf("BaseURL = %q", loaded.Backend.BaseURL)
	}
	if loaded.UI.Markdown {
		t.Error("markdown flag lost in round trip")
	}
}
