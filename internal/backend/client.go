// Package backend mirrors local mutations to the remote task service.
// All calls are best-effort: the local store is the source of truth and
// callers log failures instead of surfacing them.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/taskdeck/taskdeck/internal/core/config"
	"github.com/taskdeck/taskdeck/internal/core/logging"
	"github.com/taskdeck/taskdeck/internal/core/task"
)

// Client talks to the remote task service.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     zerolog.Logger
}

// New creates a backend client from configuration. Returns nil when no
// base URL is configured; callers treat a nil client as "mirror disabled".
func New(cfg config.BackendConfig) *Client {
	if cfg.BaseURL == "" {
		return nil
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout()},
		log:     logging.Component("backend"),
	}
}

// Enabled reports whether the client is configured to mirror writes.
func (c *Client) Enabled() bool {
	return c != nil
}

// BatchUpdateSortOrders mirrors a sort-order batch to the backend.
func (c *Client) BatchUpdateSortOrders(ctx context.Context, updates []task.SortUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	body := struct {
		Updates []task.SortUpdate `json:"updates"`
	}{Updates: updates}

	return c.do(ctx, http.MethodPost, "/v1/tasks/sort-orders", body, nil)
}

// CreateTask mirrors a task creation and returns the confirmed record.
// The backend assigns the canonical id that replaces the local placeholder.
func (c *Client) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	var confirmed task.Task
	if err := c.do(ctx, http.MethodPost, "/v1/tasks", t, &confirmed); err != nil {
		return task.Task{}, err
	}
	return confirmed, nil
}

// DeleteTask mirrors a task deletion.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/tasks/"+id, nil, nil)
}

// RestoreTask mirrors an undo of a deletion.
func (c *Client) RestoreTask(ctx context.Context, t task.Task) error {
	return c.do(ctx, http.MethodPost, "/v1/tasks/"+t.ID+"/restore", t, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "taskdeck")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Debug().Err(err).Msg("close response body")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if dest != nil {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response body: %w", err)
		}
		if err := json.Unmarshal(data, dest); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}
