package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/internal/core/config"
	"github.com/taskdeck/taskdeck/internal/core/eventbus"
	"github.com/taskdeck/taskdeck/internal/core/filter"
	"github.com/taskdeck/taskdeck/internal/core/task"
	"github.com/taskdeck/taskdeck/internal/data/db"
	"github.com/taskdeck/taskdeck/internal/data/stores"
	"github.com/taskdeck/taskdeck/internal/engine"
)

func testEngineConfig() config.EngineConfig {
	cfg := config.DefaultConfig().Engine
	cfg.OrderingDebounceMS = 20
	cfg.RefreshDebounceMS = 10
	cfg.UndoTTLMS = 100
	return cfg
}

func newTestEngine(t *testing.T, cfg config.EngineConfig) (*engine.Engine, *stores.TaskStore) {
	t.Helper()

	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	bus := eventbus.New()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go bus.Start(ctx)

	taskStore := stores.NewTaskStore(database)
	eng := engine.New(taskStore, stores.NewKVStore(database), nil, bus, cfg)
	t.Cleanup(func() { _ = eng.Close() })
	return eng, taskStore
}

func seedTask(t *testing.T, store *stores.TaskStore, tk task.Task) task.Task {
	t.Helper()
	created, err := store.Create(context.Background(), tk)
	require.NoError(t, err)
	return created
}

func displayIDs(eng *engine.Engine) []string {
	var ids []string
	for _, tk := range eng.DisplayTasks() {
		ids = append(ids, tk.ID)
	}
	return ids
}

func TestEngine_DefaultSelection(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(t, testEngineConfig())

	now := time.Now()
	open := seedTask(t, store, task.Task{Description: "open"})
	done := seedTask(t, store, task.Task{Description: "done", Completed: true})
	stale := seedTask(t, store, task.Task{Description: "stale", CreatedAt: now.Add(-30 * 24 * time.Hour)})
	gone := seedTask(t, store, task.Task{Description: "gone"})
	require.NoError(t, store.Delete(ctx, gone.ID))

	require.NoError(t, eng.Bootstrap(ctx))

	ids := displayIDs(eng)
	assert.Contains(t, ids, open.ID)
	assert.NotContains(t, ids, done.ID, "completed excluded by default")
	assert.NotContains(t, ids, stale.ID, "stale incomplete tasks drop out of the inbox")
	assert.NotContains(t, ids, gone.ID, "deleted excluded by default")

	// Dropping the date filter does not bring it back: the horizon rule
	// is not a filter.
	require.NoError(t, eng.ToggleTag(ctx, filter.TagLast7Days))
	assert.NotContains(t, displayIDs(eng), stale.ID)
}

func TestEngine_StaleIncompleteLeavesEveryBucket(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(t, testEngineConfig())

	old := time.Now().Add(-8 * 24 * time.Hour)
	staleOpen := seedTask(t, store, task.Task{Description: "stale open", CreatedAt: old})
	staleDone := seedTask(t, store, task.Task{Description: "stale done", Completed: true, CreatedAt: old})

	require.NoError(t, eng.Bootstrap(ctx))

	// Clear every default filter. The horizon rule must still apply.
	require.NoError(t, eng.ToggleTag(ctx, filter.TagLast7Days))
	require.NoError(t, eng.ToggleTag(ctx, filter.TagTodo))

	for _, s := range eng.Sections() {
		for _, tk := range s.Tasks {
			assert.NotEqual(t, staleOpen.ID, tk.ID, "stale incomplete tasks leave every bucket")
		}
	}
	assert.NotContains(t, displayIDs(eng), staleOpen.ID)
	assert.Contains(t, displayIDs(eng), staleDone.ID, "completed tasks are exempt")
}

// flakyCountsStore fails the aggregate query on demand while the rest of
// the store keeps working.
type flakyCountsStore struct {
	task.Store
	fail bool
}

func (s *flakyCountsStore) FilterCounts(ctx context.Context) (task.Counts, error) {
	if s.fail {
		return task.Counts{}, errors.New("aggregates offline")
	}
	return s.Store.FilterCounts(ctx)
}

func TestEngine_CountsFailureKeepsFreshDisplay(t *testing.T) {
	ctx := context.Background()

	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	bus := eventbus.New()
	bctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go bus.Start(bctx)

	taskStore := stores.NewTaskStore(database)
	flaky := &flakyCountsStore{Store: taskStore}
	eng := engine.New(flaky, stores.NewKVStore(database), nil, bus, testEngineConfig())
	t.Cleanup(func() { _ = eng.Close() })

	seedTask(t, taskStore, task.Task{Description: "open"})
	seedTask(t, taskStore, task.Task{Description: "from slack", Source: strPtr("slack")})
	require.NoError(t, eng.Bootstrap(ctx))
	require.Equal(t, 2, eng.Counts().Todo)

	flaky.fail = true
	late := seedTask(t, taskStore, task.Task{Description: "late arrival"})
	require.NoError(t, eng.Refresh(ctx))

	// The display refreshed; the counts degraded to the last good read.
	assert.Contains(t, displayIDs(eng), late.ID)
	assert.Equal(t, 2, eng.Counts().Todo)

	// Discovery degrades to the loaded page.
	assert.Equal(t, 1, eng.TagCount("source:slack"))
}

func TestEngine_StatusPartitions(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(t, testEngineConfig())

	open := seedTask(t, store, task.Task{Description: "open"})
	done := seedTask(t, store, task.Task{Description: "finished", Completed: true})
	gone := seedTask(t, store, task.Task{Description: "removed"})
	require.NoError(t, store.Delete(ctx, gone.ID))

	require.NoError(t, eng.Bootstrap(ctx))

	t.Run("done view", func(t *testing.T) {
		require.NoError(t, eng.ToggleTag(ctx, filter.TagTodo))
		require.NoError(t, eng.ToggleTag(ctx, filter.TagDone))

		ids := displayIDs(eng)
		assert.Contains(t, ids, done.ID)
		assert.NotContains(t, ids, open.ID)
	})

	t.Run("removed by me view", func(t *testing.T) {
		require.NoError(t, eng.ToggleTag(ctx, filter.TagDone))
		require.NoError(t, eng.ToggleTag(ctx, filter.TagRemovedByMe))

		ids := displayIDs(eng)
		assert.Contains(t, ids, gone.ID)
		assert.NotContains(t, ids, open.ID)
		assert.NotContains(t, ids, done.ID)
	})
}

func TestEngine_CategoryFilterAlgebra(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(t, testEngineConfig())

	work := seedTask(t, store, task.Task{Description: "work item", Tags: []string{"work"}})
	personal := seedTask(t, store, task.Task{Description: "personal item", Tags: []string{"personal"}})
	urgentWork := seedTask(t, store, task.Task{
		Description: "urgent work",
		Tags:        []string{"work"},
		Priority:    priorityPtr(task.PriorityHigh),
	})

	require.NoError(t, eng.Bootstrap(ctx))

	// OR within the category group.
	require.NoError(t, eng.ToggleTag(ctx, filter.TagWork))
	require.NoError(t, eng.ToggleTag(ctx, filter.TagPersonal))
	ids := displayIDs(eng)
	assert.Contains(t, ids, work.ID)
	assert.Contains(t, ids, personal.ID)
	assert.Contains(t, ids, urgentWork.ID)

	// AND across groups: adding a priority narrows to urgent work only.
	require.NoError(t, eng.ToggleTag(ctx, filter.TagPriorityHigh))
	ids = displayIDs(eng)
	assert.Equal(t, []string{urgentWork.ID}, ids)
}

func TestEngine_Search(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(t, testEngineConfig())

	match := seedTask(t, store, task.Task{Description: "write quarterly report"})
	seedTask(t, store, task.Task{Description: "walk the dog"})

	require.NoError(t, eng.Bootstrap(ctx))
	require.NoError(t, eng.SetSearch(ctx, "quarterly"))

	assert.Equal(t, []string{match.ID}, displayIDs(eng))
	assert.Equal(t, "quarterly", eng.SearchQuery())

	require.NoError(t, eng.SetSearch(ctx, ""))
	assert.Len(t, displayIDs(eng), 2)
}

func TestEngine_DisplayCapAndLoadMore(t *testing.T) {
	ctx := context.Background()
	cfg := testEngineConfig()
	cfg.DisplayPageSize = 3
	eng, store := newTestEngine(t, cfg)

	for i := 0; i < 5; i++ {
		seedTask(t, store, task.Task{Description: "item"})
	}

	require.NoError(t, eng.Bootstrap(ctx))
	assert.Len(t, eng.DisplayTasks(), 3)
	assert.True(t, eng.HasMore())

	require.NoError(t, eng.LoadMore(ctx))
	assert.Len(t, eng.DisplayTasks(), 5)
	assert.False(t, eng.HasMore())
}

func TestEngine_DynamicTagsFromCounts(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(t, testEngineConfig())

	seedTask(t, store, task.Task{Description: "a", Source: strPtr("slack")})
	seedTask(t, store, task.Task{Description: "b", Source: strPtr("slack")})
	seedTask(t, store, task.Task{Description: "c", Tags: []string{"gardening"}})
	seedTask(t, store, task.Task{Description: "d", Source: strPtr("manual")})

	require.NoError(t, eng.Bootstrap(ctx))

	tags := eng.DynamicTags()
	ids := make([]string, 0, len(tags))
	for _, d := range tags {
		ids = append(ids, d.ID)
	}
	assert.Contains(t, ids, "source:slack")
	assert.Contains(t, ids, "category:gardening")
	assert.NotContains(t, ids, "source:manual", "known sources stay predefined")
	assert.Equal(t, 2, eng.TagCount("source:slack"))

	// Selecting a dynamic tag narrows the display.
	var slack filter.DynamicTag
	for _, d := range tags {
		if d.ID == "source:slack" {
			slack = d
		}
	}
	require.NoError(t, eng.ToggleDynamicTag(ctx, slack))
	assert.Len(t, eng.DisplayTasks(), 2)
}

func TestEngine_Counts(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(t, testEngineConfig())

	seedTask(t, store, task.Task{Description: "open"})
	seedTask(t, store, task.Task{Description: "done", Completed: true})
	gone := seedTask(t, store, task.Task{Description: "gone"})
	require.NoError(t, store.Delete(ctx, gone.ID))

	require.NoError(t, eng.Bootstrap(ctx))

	counts := eng.Counts()
	assert.Equal(t, 1, counts.Todo)
	assert.Equal(t, 1, counts.Done)
	assert.Equal(t, 1, counts.DeletedByUser)
}

func TestEngine_CreateTask(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(t, testEngineConfig())
	require.NoError(t, eng.Bootstrap(ctx))

	t.Run("due date inherited from section", func(t *testing.T) {
		created, err := eng.CreateTask(ctx, engine.CreateParams{
			Description: "finish slides",
			Category:    task.CategoryToday,
		})
		require.NoError(t, err)
		require.NotNil(t, created.DueAt)
		assert.Equal(t, task.CategoryToday, task.Categorize(created, time.Now()))
		assert.Equal(t, 23, created.DueAt.Hour())

		// Persisted and displayed immediately.
		_, err = store.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Contains(t, displayIDs(eng), created.ID)
	})

	t.Run("no deadline section", func(t *testing.T) {
		created, err := eng.CreateTask(ctx, engine.CreateParams{
			Description: "someday",
			Category:    task.CategoryNoDeadline,
		})
		require.NoError(t, err)
		assert.Nil(t, created.DueAt)
	})

	t.Run("tags inherited from category filters", func(t *testing.T) {
		require.NoError(t, eng.ToggleTag(ctx, filter.TagWork))
		created, err := eng.CreateTask(ctx, engine.CreateParams{
			Description: "tagged",
			Category:    task.CategoryToday,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"work"}, created.Tags)
		require.NoError(t, eng.ToggleTag(ctx, filter.TagWork))
	})

	t.Run("empty description rejected", func(t *testing.T) {
		_, err := eng.CreateTask(ctx, engine.CreateParams{Category: task.CategoryToday})
		require.Error(t, err)
	})
}

func TestEngine_CompleteTaskLeavesTodoView(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(t, testEngineConfig())

	tk := seedTask(t, store, task.Task{Description: "finish me"})
	require.NoError(t, eng.Bootstrap(ctx))
	require.Contains(t, displayIDs(eng), tk.ID)

	require.NoError(t, eng.CompleteTask(ctx, tk.ID, true))

	// Removed surgically, without a recompute.
	assert.NotContains(t, displayIDs(eng), tk.ID)

	got, err := store.Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
}

func TestEngine_MultiSelect(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(t, testEngineConfig())

	a := seedTask(t, store, task.Task{Description: "a"})
	b := seedTask(t, store, task.Task{Description: "b"})
	seedTask(t, store, task.Task{Description: "c"})

	require.NoError(t, eng.Bootstrap(ctx))

	eng.ToggleMark(a.ID)
	eng.ToggleMark(b.ID)
	assert.True(t, eng.IsMarked(a.ID))
	assert.Len(t, eng.Marked(), 2)

	require.NoError(t, eng.CompleteMarked(ctx))
	assert.Empty(t, eng.Marked())

	got, err := store.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Len(t, eng.DisplayTasks(), 1)
}

func TestEngine_SavedViews(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(t, testEngineConfig())

	work := seedTask(t, store, task.Task{Description: "work", Tags: []string{"work"}})
	seedTask(t, store, task.Task{Description: "other"})

	require.NoError(t, eng.Bootstrap(ctx))

	require.NoError(t, eng.ToggleTag(ctx, filter.TagWork))
	view, err := eng.SaveView(ctx, "work focus")
	require.NoError(t, err)

	require.NoError(t, eng.ResetFilters(ctx))
	assert.Len(t, eng.DisplayTasks(), 2)

	require.NoError(t, eng.ApplyView(ctx, view.ID))
	assert.Equal(t, []string{work.ID}, displayIDs(eng))
	assert.True(t, eng.Selection().Has(filter.TagWork))

	views, err := eng.SavedViews(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)

	require.NoError(t, eng.DeleteView(ctx, view.ID))
	views, err = eng.SavedViews(ctx)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestEngine_NotifyStoreChangedDebounces(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(t, testEngineConfig())
	require.NoError(t, eng.Bootstrap(ctx))
	assert.Empty(t, eng.DisplayTasks())

	seedTask(t, store, task.Task{Description: "external"})

	// Several rapid notifications coalesce into one refresh.
	eng.NotifyStoreChanged()
	eng.NotifyStoreChanged()
	eng.NotifyStoreChanged()

	require.Eventually(t, func() bool {
		return len(eng.DisplayTasks()) == 1
	}, time.Second, 5*time.Millisecond)
}

func strPtr(s string) *string                    { return &s }
func priorityPtr(p task.Priority) *task.Priority { return &p }
