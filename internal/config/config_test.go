// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arteusai/council-tui/internal/api"
)

// =============================================================================
// DEFAULTS AND VALIDATION
// =============================================================================

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.AuthMode() != api.AuthModeToken {
		t.Errorf("default auth mode = %v, want token", cfg.AuthMode())
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad auth mode", func(c *Config) { c.Server.AuthMode = "cookie" }},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }},
		{"bad language", func(c *Config) { c.UI.Language = "fr" }},
		{"bad origin scheme", func(c *Config) { c.Server.Origin = "ftp://x" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.SetDefaults()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSetDefaults_FillsPartialConfig(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()
	if cfg.UI.Theme != "dark" || cfg.UI.SidebarWidth != 32 {
		t.Errorf("defaults not filled: %+v", cfg.UI)
	}
	if cfg.Server.Origin == "" {
		t.Error("origin default not filled")
	}
	if cfg.Storage.Path == "" {
		t.Error("storage path default not filled")
	}
}

// =============================================================================
// FILE LOADING
// =============================================================================

func TestLoadFromPath_TOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
version = "1.0.0"

[server]
origin = "https://example.com"
sub_path = "council"
auth_mode = "session"

[council]
models = ["openai/gpt-5", "anthropic/claude-3"]
language = "ru"

[ui]
theme = "light"
language = "ru"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	base, err := cfg.ResolveBaseURL()
	if err != nil {
		t.Fatalf("ResolveBaseURL failed: %v", err)
	}
	if base != "https://example.com/council" {
		t.Errorf("base URL = %q", base)
	}
	if cfg.AuthMode() != api.AuthModeSession {
		t.Errorf("auth mode = %v, want session", cfg.AuthMode())
	}
	if len(cfg.Council.Models) != 2 || cfg.Council.Language != "ru" {
		t.Errorf("council section not loaded: %+v", cfg.Council)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("theme = %q", cfg.UI.Theme)
	}
	// Partial file still gets defaults for omitted fields.
	if cfg.UI.SidebarWidth != 32 {
		t.Errorf("sidebar width default missing: %d", cfg.UI.SidebarWidth)
	}
}

func TestLoadFromPath_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{"server":{"base_url":"https://api.example.com"},"ui":{"theme":"light"}}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	base, _ := cfg.ResolveBaseURL()
	if base != "https://api.example.com" {
		t.Errorf("base URL override not applied: %q", base)
	}
}

func TestLoadFromPath_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	os.WriteFile(path, []byte("not [valid toml"), 0600)

	if _, err := LoadFromPath(path); err == nil {
		t.Error("expected error for invalid TOML")
	}
}

// =============================================================================
// ENV OVERRIDES
// =============================================================================

func TestEnvCredentialsNotPersisted(t *testing.T) {
	t.Setenv("ARTEUS_TOKEN", "secret-token")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	dir := t.TempDir()
	t.Setenv("HOME", dir)

	if err := Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	path := filepath.Join(dir, ".arteus-council", "config.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	if string(data) == "" {
		t.Fatal("empty config written")
	}
	if strings.Contains(string(data), "secret-token") {
		t.Error("credential leaked into persisted config")
	}
}
