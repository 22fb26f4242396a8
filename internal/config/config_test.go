// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Conversation.DefaultMode != "draft" || cfg.Conversation.UndoWindowSecs != 15 {
		t.Errorf("defaults not applied: %+v", cfg.Conversation)
	}
}

func TestLoadFromPath_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[backend]
url = "https://agent.example.com"
project_id = "proj-42"

[conversation]
default_mode = "outline"
undo_window_secs = 30
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Backend.URL != "https://agent.example.com" || cfg.Backend.ProjectID != "proj-42" {
		t.Errorf("backend = %+v", cfg.Backend)
	}
	if cfg.Conversation.DefaultMode != "outline" {
		t.Errorf("default_mode = %q", cfg.Conversation.DefaultMode)
	}
	if cfg.UndoWindow() != 30*time.Second {
		t.Errorf("UndoWindow() = %v", cfg.UndoWindow())
	}
	// Untouched sections keep defaults.
	if !cfg.UI.ShowActivity {
		t.Error("ui defaults lost")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DRAFTPILOT_URL", "http://env.example.com")
	t.Setenv("DRAFTPILOT_MODE", "polish")
	t.Setenv("DRAFTPILOT_UNDO_SECS", "45")

	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend.URL != "http://env.example.com" {
		t.Errorf("url = %q", cfg.Backend.URL)
	}
	if cfg.Conversation.DefaultMode != "polish" || cfg.Conversation.UndoWindowSecs != 45 {
		t.Errorf("conversation = %+v", cfg.Conversation)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"bad url", func(c *Config) { c.Backend.URL = "not a url" }, true},
		{"ftp url", func(c *Config) { c.Backend.URL = "ftp://x" }, true},
		{"zero undo window", func(c *Config) { c.Conversation.UndoWindowSecs = 0 }, true},
		{"empty mode", func(c *Config) { c.Conversation.DefaultMode = "" }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := Default()
	cfg.Backend.ProjectID = "proj-7"
	cfg.Conversation.UndoWindowSecs = 20

	if err := SaveToPath(cfg, path); err != nil {
		t.Fatalf("SaveToPath: %v", err)
	}
	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.Backend.ProjectID != "proj-7" || loaded.Conversation.UndoWindowSecs != 20 {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestWatch_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := SaveToPath(Default(), path); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 1)
	w, err := Watch(path, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	cfg := Default()
	cfg.Backend.ProjectID = "reloaded-project"
	if err := SaveToPath(cfg, path); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-reloaded:
		if got.Backend.ProjectID != "reloaded-project" {
			t.Errorf("reloaded project = %q", got.Backend.ProjectID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("reload not observed")
	}
}
