package kv_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/internal/core/kv"
	"github.com/taskdeck/taskdeck/internal/data/db"
	"github.com/taskdeck/taskdeck/internal/data/stores"
)

func newTestKV(t *testing.T) kv.KV {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return stores.NewKVStore(database)
}

func TestTypedKV_SetAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestKV(t)
	typed := kv.Scoped[string](store, "test")

	require.NoError(t, typed.Set(ctx, "greeting", "hello"))

	got, err := typed.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestTypedKV_ScopedPrefix(t *testing.T) {
	ctx := context.Background()
	store := newTestKV(t)

	ordering := kv.Scoped[[]string](store, "ordering")
	views := kv.Scoped[[]string](store, "views")

	require.NoError(t, ordering.Set(ctx, "today", []string{"a", "b"}))
	require.NoError(t, views.Set(ctx, "today", []string{"c"}))

	a, err := ordering.Get(ctx, "today")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, a)

	b, err := views.Get(ctx, "today")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, b)

	keys, err := store.ListKeys(ctx)
	require.NoError(t, err)
	assert.Contains(t, keys, "ordering:today")
	assert.Contains(t, keys, "views:today")
}

func TestTypedKV_Delete(t *testing.T) {
	ctx := context.Background()
	store := newTestKV(t)
	typed := kv.Scoped[string](store, "ns")

	require.NoError(t, typed.Set(ctx, "key", "val"))
	require.NoError(t, typed.Delete(ctx, "key"))

	has, err := typed.Has(ctx, "key")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestTypedKV_TTL(t *testing.T) {
	ctx := context.Background()
	store := newTestKV(t)
	typed := kv.Scoped[string](store, "ttl")

	require.NoError(t, typed.SetTTL(ctx, "temp", "gone", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, err := typed.Get(ctx, "temp")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTypedKV_StructValue(t *testing.T) {
	ctx := context.Background()
	store := newTestKV(t)

	type override struct {
		TaskID string `json:"task_id"`
		Indent int    `json:"indent"`
	}

	typed := kv.Scoped[override](store, "indent")
	require.NoError(t, typed.Set(ctx, "t1", override{TaskID: "t1", Indent: 2}))

	got, err := typed.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Indent)
}
