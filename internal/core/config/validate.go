package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.MaxOpenConns < 1 {
		errs = append(errs, fmt.Errorf("database.max_open_conns must be at least 1, got %d", c.Database.MaxOpenConns))
	}
	if c.Database.MaxIdleConns < 0 {
		errs = append(errs, fmt.Errorf("database.max_idle_conns must not be negative, got %d", c.Database.MaxIdleConns))
	}
	if c.Database.BusyTimeout < 0 {
		errs = append(errs, fmt.Errorf("database.busy_timeout must not be negative, got %d", c.Database.BusyTimeout))
	}

	if c.Backend.BaseURL != "" {
		u, err := url.Parse(c.Backend.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("backend.base_url is not a valid URL: %q", c.Backend.BaseURL))
		}
	}
	if c.Backend.TimeoutMS < 1 {
		errs = append(errs, fmt.Errorf("backend.timeout_ms must be positive, got %d", c.Backend.TimeoutMS))
	}

	if c.Engine.DisplayPageSize < 1 {
		errs = append(errs, fmt.Errorf("engine.display_page_size must be positive, got %d", c.Engine.DisplayPageSize))
	}
	if c.Engine.OrderingDebounceMS < 0 {
		errs = append(errs, fmt.Errorf("engine.ordering_debounce_ms must not be negative, got %d", c.Engine.OrderingDebounceMS))
	}
	if c.Engine.RefreshDebounceMS < 0 {
		errs = append(errs, fmt.Errorf("engine.refresh_debounce_ms must not be negative, got %d", c.Engine.RefreshDebounceMS))
	}
	if c.Engine.UndoTTLMS < 1 {
		errs = append(errs, fmt.Errorf("engine.undo_ttl_ms must be positive, got %d", c.Engine.UndoTTLMS))
	}
	if c.Engine.UndoDepth < 1 {
		errs = append(errs, fmt.Errorf("engine.undo_depth must be positive, got %d", c.Engine.UndoDepth))
	}

	if c.TUI.DoubleEnterWindowMS < 1 {
		errs = append(errs, fmt.Errorf("tui.double_enter_window_ms must be positive, got %d", c.TUI.DoubleEnterWindowMS))
	}
	if c.TUI.SearchDebounceMS < 0 {
		errs = append(errs, fmt.Errorf("tui.search_debounce_ms must not be negative, got %d", c.TUI.SearchDebounceMS))
	}

	return errors.Join(errs...)
}
