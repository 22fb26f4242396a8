// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for
// draftpilot.
//
// Configuration is TOML with environment variable overrides and
// built-in defaults. File location: ~/.draftpilot/config.toml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/draftpilot-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete draftpilot configuration.
type Config struct {
	// Backend configuration
	Backend BackendConfig `toml:"backend"`

	// Conversation configuration
	Conversation ConversationConfig `toml:"conversation"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// References maps @mention names to canonical reference ids
	References map[string]string `toml:"references"`
}

// BackendConfig points the client at the agent API.
type BackendConfig struct {
	// URL is the base URL of the agent backend
	URL string `toml:"url"`
	// ProjectID scopes every request to one project
	ProjectID string `toml:"project_id"`
}

// ConversationConfig tunes the conversation core.
type ConversationConfig struct {
	// DefaultMode is the mode a new session starts in
	DefaultMode string `toml:"default_mode"`
	// UndoWindowSecs is how long an accepted suggestion stays undoable
	UndoWindowSecs int `toml:"undo_window_secs"`
	// HistoryPath is the SQLite database location
	// (empty = ~/.draftpilot/history.db)
	HistoryPath string `toml:"history_path"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// ShowActivity renders the streaming activity label
	ShowActivity bool `toml:"show_activity"`
	// Theme is the color theme name
	Theme string `toml:"theme"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL: "http://localhost:8080",
		},
		Conversation: ConversationConfig{
			DefaultMode:    "draft",
			UndoWindowSecs: 15,
		},
		UI: UIConfig{
			ShowActivity: true,
			Theme:        "dark",
		},
	}
}

// UndoWindow returns the configured undo window as a duration.
func (c *Config) UndoWindow() time.Duration {
	return time.Duration(c.Conversation.UndoWindowSecs) * time.Second
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the draftpilot configuration directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".draftpilot"), nil
}

// ConfigPath returns the TOML configuration file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// HistoryPath returns the conversation database path, honoring the
// configured override.
func (c *Config) HistoryPath() (string, error) {
	if c.Conversation.HistoryPath != "" {
		return c.Conversation.HistoryPath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration file, falling back to defaults when it
// does not exist, and applies environment overrides.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported environment variables:
//   - DRAFTPILOT_URL: overrides backend.url
//   - DRAFTPILOT_PROJECT: overrides backend.project_id
//   - DRAFTPILOT_MODE: overrides conversation.default_mode
//   - DRAFTPILOT_UNDO_SECS: overrides conversation.undo_window_secs
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("DRAFTPILOT_URL"); u != "" {
		c.Backend.URL = u
	}
	if project := os.Getenv("DRAFTPILOT_PROJECT"); project != "" {
		c.Backend.ProjectID = project
	}
	if mode := os.Getenv("DRAFTPILOT_MODE"); mode != "" {
		c.Conversation.DefaultMode = mode
	}
	if secs := os.Getenv("DRAFTPILOT_UNDO_SECS"); secs != "" {
		if n, err := strconv.Atoi(secs); err == nil && n > 0 {
			c.Conversation.UndoWindowSecs = n
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Backend.URL != "" {
		parsed, err := url.Parse(c.Backend.URL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return fmt.Errorf("backend.url %q is not a valid http(s) URL", c.Backend.URL)
		}
	}
	if c.Conversation.UndoWindowSecs <= 0 {
		return fmt.Errorf("conversation.undo_window_secs must be positive, got %d",
			c.Conversation.UndoWindowSecs)
	}
	if c.Conversation.DefaultMode == "" {
		return errors.New("conversation.default_mode must not be empty")
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to the default path atomically.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration to a specific file.
func SaveToPath(cfg *Config, path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700)
}
