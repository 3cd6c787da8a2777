package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/internal/core/task"
)

func TestEngine_MoveTaskAndFlush(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(t, testEngineConfig())

	a := seedTask(t, store, task.Task{Description: "a"})
	b := seedTask(t, store, task.Task{Description: "b"})
	c := seedTask(t, store, task.Task{Description: "c"})
	require.NoError(t, eng.Bootstrap(ctx))

	// Bootstrap backfilled sort orders from the date rule: newest first
	// among the undated.
	require.Equal(t, []string{c.ID, b.ID, a.ID}, displayIDs(eng))

	eng.MoveTask(a.ID, -2)
	assert.Equal(t, []string{a.ID, c.ID, b.ID}, displayIDs(eng))

	require.NoError(t, eng.FlushOrdering(ctx))

	got, err := store.Get(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SortOrder)
	// All three are undated, so they share the no-deadline band.
	assert.Equal(t, task.SortOrderFor(task.CategoryNoDeadline, 0), *got.SortOrder)

	got, err = store.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, task.SortOrderFor(task.CategoryNoDeadline, 1), *got.SortOrder)

	// A refresh from the store preserves the manual order.
	require.NoError(t, eng.Refresh(ctx))
	assert.Equal(t, []string{a.ID, c.ID, b.ID}, displayIDs(eng))
}

func TestEngine_MoveDebounceCoalesces(t *testing.T) {
	ctx := context.Background()
	cfg := testEngineConfig()
	cfg.OrderingDebounceMS = 30
	eng, store := newTestEngine(t, cfg)

	a := seedTask(t, store, task.Task{Description: "a"})
	b := seedTask(t, store, task.Task{Description: "b"})
	c := seedTask(t, store, task.Task{Description: "c"})
	require.NoError(t, eng.Bootstrap(ctx))

	// Display after bootstrap is c, b, a. Two rapid moves bubble a to
	// the top within the quiet period.
	eng.MoveTask(a.ID, -1)
	eng.MoveTask(a.ID, -1)

	got, err := store.Get(ctx, a.ID)
	require.NoError(t, err)
	initial := *got.SortOrder

	// After the quiet period the coalesced order lands in one batch.
	require.Eventually(t, func() bool {
		got, err := store.Get(ctx, a.ID)
		return err == nil && *got.SortOrder != initial
	}, time.Second, 5*time.Millisecond)

	got, err = store.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, task.SortOrderFor(task.CategoryNoDeadline, 0), *got.SortOrder)

	got, err = store.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, task.SortOrderFor(task.CategoryNoDeadline, 1), *got.SortOrder)
	_ = b
}

func TestEngine_RefreshInsideDebounceKeepsMove(t *testing.T) {
	ctx := context.Background()
	cfg := testEngineConfig()
	cfg.OrderingDebounceMS = 60_000 // the flush stays pending all test long
	eng, store := newTestEngine(t, cfg)

	a := seedTask(t, store, task.Task{Description: "a"})
	b := seedTask(t, store, task.Task{Description: "b"})
	c := seedTask(t, store, task.Task{Description: "c"})
	require.NoError(t, eng.Bootstrap(ctx))
	require.Equal(t, []string{c.ID, b.ID, a.ID}, displayIDs(eng))

	eng.MoveTask(a.ID, -2)
	require.Equal(t, []string{a.ID, c.ID, b.ID}, displayIDs(eng))

	// A store-driven recompute before the flush sees the old sort orders
	// but must not revert the pending move.
	require.NoError(t, eng.Refresh(ctx))
	assert.Equal(t, []string{a.ID, c.ID, b.ID}, displayIDs(eng))

	// Once flushed, the store carries the order and the pin is released.
	require.NoError(t, eng.FlushOrdering(ctx))
	require.NoError(t, eng.Refresh(ctx))
	assert.Equal(t, []string{a.ID, c.ID, b.ID}, displayIDs(eng))
}

func TestEngine_MoveStaysWithinSection(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(t, testEngineConfig())

	due := time.Now().Add(2 * time.Hour)
	today := seedTask(t, store, task.Task{Description: "today", DueAt: &due})
	someday := seedTask(t, store, task.Task{Description: "someday"})
	require.NoError(t, eng.Bootstrap(ctx))

	// Moving past the section edge clamps instead of crossing over.
	eng.MoveTask(someday.ID, -5)

	sections := eng.Sections()
	for _, s := range sections {
		switch s.Category {
		case task.CategoryToday:
			require.Len(t, s.Tasks, 1)
			assert.Equal(t, today.ID, s.Tasks[0].ID)
		case task.CategoryNoDeadline:
			require.Len(t, s.Tasks, 1)
			assert.Equal(t, someday.ID, s.Tasks[0].ID)
		}
	}
}

func TestEngine_ChangeIndent(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(t, testEngineConfig())

	tk := seedTask(t, store, task.Task{Description: "nested"})
	require.NoError(t, eng.Bootstrap(ctx))

	eng.ChangeIndent(tk.ID, 1)
	eng.ChangeIndent(tk.ID, 1)

	display := eng.DisplayTasks()
	require.Len(t, display, 1)
	assert.Equal(t, 2, display[0].Indent())

	// Clamped at the maximum depth.
	eng.ChangeIndent(tk.ID, 5)
	assert.Equal(t, task.MaxIndent, eng.DisplayTasks()[0].Indent())

	require.NoError(t, eng.FlushOrdering(ctx))

	got, err := store.Get(ctx, tk.ID)
	require.NoError(t, err)
	require.NotNil(t, got.IndentLevel)
	assert.Equal(t, task.MaxIndent, *got.IndentLevel)

	// Never below zero.
	eng.ChangeIndent(tk.ID, -10)
	assert.Equal(t, 0, eng.DisplayTasks()[0].Indent())
}

func TestEngine_FlushSkipsLocalIDs(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(t, testEngineConfig())

	local := seedTask(t, store, task.Task{ID: task.LocalIDPrefix + "abc", Description: "pending"})
	confirmed := seedTask(t, store, task.Task{Description: "confirmed"})
	require.NoError(t, eng.Bootstrap(ctx))

	eng.MoveTask(confirmed.ID, 1)
	require.NoError(t, eng.FlushOrdering(ctx))

	got, err := store.Get(ctx, local.ID)
	require.NoError(t, err)
	assert.Nil(t, got.SortOrder, "placeholder ids are never written")

	got, err = store.Get(ctx, confirmed.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.SortOrder)
}

func TestEngine_OrderingMigrationRunsOnce(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(t, testEngineConfig())

	due := time.Now().Add(time.Hour)
	dated := seedTask(t, store, task.Task{Description: "dated", DueAt: &due})
	undated := seedTask(t, store, task.Task{Description: "undated"})

	require.NoError(t, eng.Bootstrap(ctx))

	got, err := store.Get(ctx, dated.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SortOrder)
	assert.Equal(t, task.SortOrderFor(task.CategoryToday, 0), *got.SortOrder)

	got, err = store.Get(ctx, undated.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SortOrder)
	assert.Equal(t, task.SortOrderFor(task.CategoryNoDeadline, 0), *got.SortOrder)

	// A later task without a sort order is untouched by a second bootstrap.
	late := seedTask(t, store, task.Task{Description: "late"})
	require.NoError(t, eng.Bootstrap(ctx))

	got, err = store.Get(ctx, late.ID)
	require.NoError(t, err)
	assert.Nil(t, got.SortOrder)
}
