package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
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

func newTestModel(t *testing.T) (*Model, *stores.TaskStore) {
	t.Helper()

	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	bus := eventbus.New()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go bus.Start(ctx)

	cfg := config.DefaultConfig()
	taskStore := stores.NewTaskStore(database)
	eng := engine.New(taskStore, stores.NewKVStore(database), nil, bus, cfg.Engine)
	t.Cleanup(func() { _ = eng.Close() })

	return NewModel(&cfg, eng, bus), taskStore
}

func bootstrapModel(t *testing.T, m *Model) {
	t.Helper()
	require.NoError(t, m.engine.Bootstrap(context.Background()))
}

func seedModelTask(t *testing.T, store *stores.TaskStore, description string) task.Task {
	t.Helper()
	created, err := store.Create(context.Background(), task.Task{Description: description})
	require.NoError(t, err)
	return created
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

func TestModel_NavigationSelectsTasks(t *testing.T) {
	m, store := newTestModel(t)
	seedModelTask(t, store, "first")
	seedModelTask(t, store, "second")
	bootstrapModel(t, m)

	press(m, "j")
	assert.Equal(t, NavItemSelected, m.nav.State())
	assert.Equal(t, m.displayOrder()[0], m.nav.SelectedID())

	press(m, "j")
	assert.Equal(t, m.displayOrder()[1], m.nav.SelectedID())

	press(m, "esc")
	assert.Equal(t, NavIdle, m.nav.State())
}

func TestModel_DoubleEnterOpensEditor(t *testing.T) {
	m, store := newTestModel(t)
	tk := seedModelTask(t, store, "edit me")
	bootstrapModel(t, m)

	press(m, "j", "enter")
	assert.True(t, m.nav.EnterArmed())

	press(m, "enter")
	assert.Equal(t, NavEditing, m.nav.State())
	assert.Equal(t, tk.ID, m.nav.EditingID())
	assert.Equal(t, "edit me", m.entryInput.Value())

	// Submit a new description.
	m.entryInput.SetValue("edited")
	press(m, "enter")
	assert.Equal(t, NavItemSelected, m.nav.State())

	got, err := store.Get(context.Background(), tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Description)
}

func TestModel_EnterTimeoutOpensInlineCreate(t *testing.T) {
	m, store := newTestModel(t)
	tk := seedModelTask(t, store, "anchor")
	bootstrapModel(t, m)

	press(m, "j", "enter")
	m.Update(enterTimeoutMsg{seq: m.enterSeq})

	assert.Equal(t, NavInlineCreating, m.nav.State())
	assert.Equal(t, tk.ID, m.nav.AfterID())
}

func TestModel_StaleEnterTimeoutIgnored(t *testing.T) {
	m, store := newTestModel(t)
	seedModelTask(t, store, "anchor")
	bootstrapModel(t, m)

	press(m, "j", "enter")
	stale := m.enterSeq
	press(m, "enter") // resolves the window into editing

	m.Update(enterTimeoutMsg{seq: stale})
	assert.Equal(t, NavEditing, m.nav.State())
}

func TestModel_InlineCreateSubmits(t *testing.T) {
	m, _ := newTestModel(t)
	bootstrapModel(t, m)

	press(m, "enter")
	require.Equal(t, NavInlineCreating, m.nav.State())

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("pay rent")})
	press(m, "enter")

	require.Equal(t, NavItemSelected, m.nav.State())
	tasks := m.engine.DisplayTasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "pay rent", tasks[0].Description)
	assert.Equal(t, tasks[0].ID, m.nav.SelectedID())
}

func TestModel_EmptyInlineCreateCancels(t *testing.T) {
	m, _ := newTestModel(t)
	bootstrapModel(t, m)

	press(m, "enter")
	press(m, "enter")

	assert.Equal(t, NavIdle, m.nav.State())
	assert.Empty(t, m.engine.DisplayTasks())
}

func TestModel_DeleteAdvancesSelection(t *testing.T) {
	m, store := newTestModel(t)
	seedModelTask(t, store, "a")
	seedModelTask(t, store, "b")
	bootstrapModel(t, m)

	press(m, "j")
	victim := m.nav.SelectedID()
	survivor := m.displayOrder()[1]

	press(m, "d")
	assert.Equal(t, 1, m.engine.UndoDepth())
	assert.NotContains(t, m.displayOrder(), victim)
	assert.Equal(t, survivor, m.nav.SelectedID())
}

func TestModel_UndoEventDrivesToast(t *testing.T) {
	m, _ := newTestModel(t)
	bootstrapModel(t, m)

	m.Update(undoChangedMsg{Depth: 1})
	assert.True(t, m.toasts.HasUndoToast())

	m.Update(undoChangedMsg{Depth: 0})
	assert.False(t, m.toasts.HasUndoToast())
}

func TestModel_SearchDebounceCommits(t *testing.T) {
	m, store := newTestModel(t)
	seedModelTask(t, store, "alpha")
	seedModelTask(t, store, "beta")
	bootstrapModel(t, m)

	press(m, "/")
	require.Equal(t, stateSearching, m.state)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("alp")})
	m.Update(searchDebounceMsg{seq: m.searchSeq})

	assert.Equal(t, "alp", m.engine.SearchQuery())
	require.Len(t, m.engine.DisplayTasks(), 1)
	assert.Equal(t, "alpha", m.engine.DisplayTasks()[0].Description)

	// Escape clears the query.
	press(m, "esc")
	assert.Equal(t, stateNormal, m.state)
	assert.Empty(t, m.engine.SearchQuery())
}

func TestModel_FilterModeTogglesChips(t *testing.T) {
	m, store := newTestModel(t)
	seedModelTask(t, store, "a")
	bootstrapModel(t, m)
	m.rebuildChips()

	press(m, "f")
	require.Equal(t, stateFiltering, m.state)
	require.NotEmpty(t, m.chips)

	before := m.chipActive(m.chips[0])
	press(m, "enter")
	assert.NotEqual(t, before, m.chipActive(m.chips[0]))

	press(m, "esc")
	assert.Equal(t, stateNormal, m.state)
}

func TestModel_MarkAndBulkComplete(t *testing.T) {
	m, store := newTestModel(t)
	seedModelTask(t, store, "a")
	seedModelTask(t, store, "b")
	bootstrapModel(t, m)

	press(m, "j", "m")
	assert.Len(t, m.engine.Marked(), 1)

	press(m, "m")
	assert.Len(t, m.engine.Marked(), 2)

	press(m, "x")
	assert.Empty(t, m.engine.Marked())
	// Both left the default todo view.
	assert.Empty(t, m.engine.DisplayTasks())
}

func TestModel_DigitAppliesSavedView(t *testing.T) {
	m, store := newTestModel(t)
	seedModelTask(t, store, "a")
	bootstrapModel(t, m)

	ctx := context.Background()
	require.NoError(t, m.engine.ToggleTag(ctx, filter.TagWork))
	_, err := m.engine.SaveView(ctx, "work stuff")
	require.NoError(t, err)
	require.NoError(t, m.engine.ResetFilters(ctx))
	require.False(t, m.engine.Selection().Has(filter.TagWork))

	press(m, "1")
	assert.True(t, m.engine.Selection().Has(filter.TagWork))
	assert.True(t, m.toasts.HasToasts())

	// Out-of-range digits are ignored.
	press(m, "9")
	assert.True(t, m.engine.Selection().Has(filter.TagWork))
}

func TestModel_QuitKey(t *testing.T) {
	m, _ := newTestModel(t)
	bootstrapModel(t, m)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
}
