package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/internal/backend"
	"github.com/taskdeck/taskdeck/internal/core/config"
	"github.com/taskdeck/taskdeck/internal/core/task"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return backend.New(config.BackendConfig{
		BaseURL:   srv.URL,
		APIKey:    "sk-test",
		TimeoutMS: 1000,
	})
}

func TestNew_DisabledWithoutBaseURL(t *testing.T) {
	client := backend.New(config.BackendConfig{})
	assert.Nil(t, client)
	assert.False(t, client.Enabled())
}

func TestClient_BatchUpdateSortOrders(t *testing.T) {
	var got struct {
		Updates []task.SortUpdate `json:"updates"`
	}
	var auth string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/tasks/sort-orders", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	})

	updates := []task.SortUpdate{
		{ID: "t1", SortOrder: 1000, IndentLevel: 0},
		{ID: "t2", SortOrder: 2000, IndentLevel: 1},
	}
	require.NoError(t, client.BatchUpdateSortOrders(context.Background(), updates))

	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, updates, got.Updates)
}

func TestClient_BatchUpdateSortOrders_EmptyIsNoop(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	require.NoError(t, client.BatchUpdateSortOrders(context.Background(), nil))
}

func TestClient_CreateTask(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/tasks", r.URL.Path)

		var incoming task.Task
		require.NoError(t, json.NewDecoder(r.Body).Decode(&incoming))
		assert.Equal(t, "local_abc", incoming.ID)

		incoming.ID = "srv-1"
		require.NoError(t, json.NewEncoder(w).Encode(incoming))
	})

	confirmed, err := client.CreateTask(context.Background(), task.Task{
		ID:          "local_abc",
		Description: "ship it",
	})
	require.NoError(t, err)
	assert.Equal(t, "srv-1", confirmed.ID)
	assert.Equal(t, "ship it", confirmed.Description)
}

func TestClient_ErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := client.DeleteTask(context.Background(), "t1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
