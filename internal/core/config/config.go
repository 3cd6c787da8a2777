// Package config handles configuration loading and validation for taskdeck.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Backend  BackendConfig  `yaml:"backend"`
	Engine   EngineConfig   `yaml:"engine"`
	TUI      TUIConfig      `yaml:"tui"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// DatabaseConfig holds SQLite connection settings.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	// BusyTimeout is the SQLite busy timeout in milliseconds.
	BusyTimeout int `yaml:"busy_timeout"`
}

// BackendConfig holds the remote sync endpoint settings. An empty base
// URL disables the backend mirror entirely.
type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	// TimeoutMS is the per-request timeout in milliseconds.
	TimeoutMS int `yaml:"timeout_ms"`
}

// Timeout returns the request timeout as a duration.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutMS) * time.Millisecond
}

// EngineConfig holds task engine tunables.
type EngineConfig struct {
	// DisplayPageSize is the initial display cap; load-more grows the cap
	// by the same amount.
	DisplayPageSize int `yaml:"display_page_size"`
	// OrderingDebounceMS is the quiet period before reorder/indent
	// mutations are flushed to storage.
	OrderingDebounceMS int `yaml:"ordering_debounce_ms"`
	// RefreshDebounceMS coalesces store-change notifications into one
	// full recompute.
	RefreshDebounceMS int `yaml:"refresh_debounce_ms"`
	// UndoTTLMS is how long the undo stack survives after the last
	// delete or undo.
	UndoTTLMS int `yaml:"undo_ttl_ms"`
	// UndoDepth caps the undo stack; the oldest entry is evicted first.
	UndoDepth int `yaml:"undo_depth"`
	// StrictWrites refreshes the view from the store after a failed
	// write instead of leaving the optimistic state in place.
	StrictWrites bool `yaml:"strict_writes"`
}

// OrderingDebounce returns the ordering sync quiet period as a duration.
func (e EngineConfig) OrderingDebounce() time.Duration {
	return time.Duration(e.OrderingDebounceMS) * time.Millisecond
}

// RefreshDebounce returns the store-change coalescing window as a duration.
func (e EngineConfig) RefreshDebounce() time.Duration {
	return time.Duration(e.RefreshDebounceMS) * time.Millisecond
}

// UndoTTL returns the undo stack lifetime as a duration.
func (e EngineConfig) UndoTTL() time.Duration {
	return time.Duration(e.UndoTTLMS) * time.Millisecond
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme string `yaml:"theme"`
	// DoubleEnterWindowMS is the window in which a second Enter press
	// opens the editor instead of the inline-create row.
	DoubleEnterWindowMS int `yaml:"double_enter_window_ms"`
	// SearchDebounceMS delays search-as-you-type store queries.
	SearchDebounceMS int `yaml:"search_debounce_ms"`
}

// DoubleEnterWindow returns the double-press window as a duration.
func (t TUIConfig) DoubleEnterWindow() time.Duration {
	return time.Duration(t.DoubleEnterWindowMS) * time.Millisecond
}

// SearchDebounce returns the search-as-you-type quiet period as a duration.
func (t TUIConfig) SearchDebounce() time.Duration {
	return time.Duration(t.SearchDebounceMS) * time.Millisecond
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			BusyTimeout:  5000,
		},
		Backend: BackendConfig{
			TimeoutMS: 10_000,
		},
		Engine: EngineConfig{
			DisplayPageSize:    100,
			OrderingDebounceMS: 500,
			RefreshDebounceMS:  300,
			UndoTTLMS:          5000,
			UndoDepth:          10,
		},
		TUI: TUIConfig{
			Theme:               "tokyo-night",
			DoubleEnterWindowMS: 400,
			SearchDebounceMS:    250,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills zero values a user config may have omitted.
func (c *Config) applyDefaults() {
	def := DefaultConfig()

	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = def.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = def.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = def.Database.BusyTimeout
	}
	if c.Backend.TimeoutMS == 0 {
		c.Backend.TimeoutMS = def.Backend.TimeoutMS
	}
	if c.Engine.DisplayPageSize == 0 {
		c.Engine.DisplayPageSize = def.Engine.DisplayPageSize
	}
	if c.Engine.OrderingDebounceMS == 0 {
		c.Engine.OrderingDebounceMS = def.Engine.OrderingDebounceMS
	}
	if c.Engine.RefreshDebounceMS == 0 {
		c.Engine.RefreshDebounceMS = def.Engine.RefreshDebounceMS
	}
	if c.Engine.UndoTTLMS == 0 {
		c.Engine.UndoTTLMS = def.Engine.UndoTTLMS
	}
	if c.Engine.UndoDepth == 0 {
		c.Engine.UndoDepth = def.Engine.UndoDepth
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = def.TUI.Theme
	}
	if c.TUI.DoubleEnterWindowMS == 0 {
		c.TUI.DoubleEnterWindowMS = def.TUI.DoubleEnterWindowMS
	}
	if c.TUI.SearchDebounceMS == 0 {
		c.TUI.SearchDebounceMS = def.TUI.SearchDebounceMS
	}
}
