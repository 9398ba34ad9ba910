// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and persists council-tui configuration.
//
// Configuration is resolved in layers: built-in defaults, then the TOML
// config file (JSON fallback), then a .env file, then ARTEUS_* environment
// variables. Credentials live in the local state store, not here; the env
// layer can inject them for one-shot CLI use.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"encoding/json"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/arteusai/council-tui/internal/api"
	"github.com/arteusai/council-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete council-tui configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Server  ServerConfig  `toml:"server" json:"server"`
	Council CouncilConfig `toml:"council" json:"council"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Export  ExportConfig  `toml:"export" json:"export"`
	Storage StorageConfig `toml:"storage" json:"storage"`
}

// ServerConfig locates and authenticates against the backend.
type ServerConfig struct {
	// BaseURL is an explicit override for the backend base URL.
	BaseURL string `toml:"base_url" json:"base_url"`
	// Origin is the deployment origin used when BaseURL is empty.
	Origin string `toml:"origin" json:"origin"`
	// SubPath mounts the backend under a non-root path of the origin.
	SubPath string `toml:"sub_path" json:"sub_path"`
	// AuthMode is "token" or "session".
	AuthMode string `toml:"auth_mode" json:"auth_mode"`

	// Env-only credential overrides, never persisted.
	Token     string `toml:"-" json:"-"`
	SessionID string `toml:"-" json:"-"`
}

// CouncilConfig holds default council composition for new sessions.
type CouncilConfig struct {
	// Models are the preferred council models; empty means backend default.
	Models []string `toml:"models" json:"models"`
	// ChairmanModel overrides the backend's default chairman.
	ChairmanModel string `toml:"chairman_model" json:"chairman_model"`
	// Language is the council answer language ("en" or "ru").
	Language string `toml:"language" json:"language"`
}

// UIConfig contains terminal UI configuration.
type UIConfig struct {
	// Theme is "dark" or "light".
	Theme string `toml:"theme" json:"theme"`
	// Language is the interface language ("en" or "ru").
	Language string `toml:"language" json:"language"`
	// SidebarWidth is the conversation list width in columns.
	SidebarWidth int `toml:"sidebar_width" json:"sidebar_width"`
	// CompactMode collapses stage panels to one line each.
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
}

// ExportConfig configures document export.
type ExportConfig struct {
	// OutputDir is where exports are written. Default: current directory.
	OutputDir string `toml:"output_dir" json:"output_dir"`
	// FontRegular and FontBold point at TTF files or HTTP URLs for the
	// PDF's Unicode font pair. Empty means core-font fallback.
	FontRegular string `toml:"font_regular" json:"font_regular"`
	FontBold    string `toml:"font_bold" json:"font_bold"`
}

// StorageConfig configures the local state database.
type StorageConfig struct {
	// Path is the sqlite database file. Empty means the default location
	// under the config directory.
	Path string `toml:"path" json:"path"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Server: ServerConfig{
			Origin:   "https://council.arteus.ai",
			AuthMode: "token",
		},
		Council: CouncilConfig{
			Language: "en",
		},
		UI: UIConfig{
			Theme:        "dark",
			Language:     "en",
			SidebarWidth: 32,
		},
		Export: ExportConfig{
			OutputDir: ".",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the council-tui configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".arteus-council"), nil
}

// PathTOML returns the path to the TOML config file.
func PathTOML() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// PathJSON returns the path to the JSON config file.
func PathJSON() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultStoragePath returns the default sqlite location.
func DefaultStoragePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "state.db"), nil
}

// EnsureDir creates the configuration directory if missing.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// =============================================================================
// LOADING
// =============================================================================

// Load resolves the configuration: defaults, config file, .env, then
// environment overrides. A missing config file is not an error.
func Load() (*Config, error) {
	// Best effort; a missing .env is the normal case.
	_ = godotenv.Load()

	cfg := Default()

	if path, err := PathTOML(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, fmt.Errorf("load TOML config: %w", err)
			}
			return finalize(cfg)
		}
	}

	if path, err := PathJSON(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadJSON(cfg, path); err != nil {
				return nil, fmt.Errorf("load JSON config: %w", err)
			}
			return finalize(cfg)
		}
	}

	return finalize(cfg)
}

func finalize(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file over the receiver.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file over the receiver.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads a config file by extension, for --config overrides.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := LoadJSON(cfg, path); err != nil {
			return nil, err
		}
	default:
		if err := LoadTOML(cfg, path); err != nil {
			return nil, err
		}
	}
	return finalize(cfg)
}

// Save writes the configuration as TOML to the default location.
func Save(cfg *Config) error {
	if err := EnsureDir(); err != nil {
		return err
	}
	path, err := PathTOML()
	if err != nil {
		return err
	}

	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("encode TOML: %w", err)
	}
	return util.AtomicWriteFile(path, []byte(sb.String()), 0600)
}

// =============================================================================
// OVERRIDES, DEFAULTS, VALIDATION
// =============================================================================

// ApplyEnvOverrides applies ARTEUS_* environment variables on top of the
// loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("ARTEUS_BASE_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("ARTEUS_ORIGIN"); v != "" {
		c.Server.Origin = v
	}
	if v := os.Getenv("ARTEUS_SUB_PATH"); v != "" {
		c.Server.SubPath = v
	}
	if v := os.Getenv("ARTEUS_AUTH_MODE"); v != "" {
		c.Server.AuthMode = v
	}
	if v := os.Getenv("ARTEUS_TOKEN"); v != "" {
		c.Server.Token = v
	}
	if v := os.Getenv("ARTEUS_SESSION_ID"); v != "" {
		c.Server.SessionID = v
	}
	if v := os.Getenv("ARTEUS_LANGUAGE"); v != "" {
		c.UI.Language = v
		c.Council.Language = v
	}
	if v := os.Getenv("ARTEUS_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("ARTEUS_EXPORT_DIR"); v != "" {
		c.Export.OutputDir = v
	}
	if v := os.Getenv("ARTEUS_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
}

// SetDefaults fills zero values left by partial config files.
func (c *Config) SetDefaults() {
	def := Default()
	if c.Version == "" {
		c.Version = def.Version
	}
	if c.Server.AuthMode == "" {
		c.Server.AuthMode = def.Server.AuthMode
	}
	if c.Server.BaseURL == "" && c.Server.Origin == "" {
		c.Server.Origin = def.Server.Origin
	}
	if c.Council.Language == "" {
		c.Council.Language = def.Council.Language
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
	if c.UI.Language == "" {
		c.UI.Language = def.UI.Language
	}
	if c.UI.SidebarWidth <= 0 {
		c.UI.SidebarWidth = def.UI.SidebarWidth
	}
	if c.Export.OutputDir == "" {
		c.Export.OutputDir = def.Export.OutputDir
	}
	if c.Storage.Path == "" {
		if path, err := DefaultStoragePath(); err == nil {
			c.Storage.Path = path
		}
	}
}

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks field values after all layers are applied.
func (c *Config) Validate() error {
	if _, err := c.ResolveBaseURL(); err != nil {
		return ValidationError{Field: "server", Message: err.Error()}
	}

	switch strings.ToLower(c.Server.AuthMode) {
	case "token", "session":
	default:
		return ValidationError{Field: "server.auth_mode", Message: fmt.Sprintf("must be \"token\" or \"session\", got %q", c.Server.AuthMode)}
	}

	switch c.UI.Theme {
	case "dark", "light":
	default:
		return ValidationError{Field: "ui.theme", Message: fmt.Sprintf("must be \"dark\" or \"light\", got %q", c.UI.Theme)}
	}

	switch c.UI.Language {
	case "en", "ru":
	default:
		return ValidationError{Field: "ui.language", Message: fmt.Sprintf("must be \"en\" or \"ru\", got %q", c.UI.Language)}
	}

	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// ResolveBaseURL resolves the backend base URL from the server section.
func (c *Config) ResolveBaseURL() (string, error) {
	return api.ResolveBaseURL(c.Server.BaseURL, c.Server.Origin, c.Server.SubPath)
}

// AuthMode returns the parsed auth mode.
func (c *Config) AuthMode() api.AuthMode {
	return api.ParseAuthMode(c.Server.AuthMode)
}
