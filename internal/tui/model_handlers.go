package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/taskdeck/taskdeck/internal/core/task"
	"github.com/taskdeck/taskdeck/internal/engine"
)

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.state {
	case stateSearching:
		cmd = m.handleSearchKey(msg)
	case stateFiltering:
		cmd = m.handleFilterKey(msg)
	case stateSavingView:
		cmd = m.handleSaveViewKey(msg)
	default:
		if m.nav.Typing() {
			cmd = m.handleEntryKey(msg)
		} else {
			cmd = m.handleNormalKey(msg)
		}
	}
	if m.quitting {
		return m, tea.Quit
	}
	return m, tea.Batch(cmd, m.ensureToastTick())
}

// handleNormalKey processes list-mode keys: navigation, mutation,
// ordering, and mode switches.
func (m *Model) handleNormalKey(msg tea.KeyMsg) tea.Cmd {
	ctx := context.Background()

	switch {
	case matchesKey(msg, m.keys.Quit):
		m.quitting = true
		return nil

	case matchesKey(msg, m.keys.Down):
		m.nav.MoveDown(m.displayOrder())
		return nil

	case matchesKey(msg, m.keys.Up):
		m.nav.MoveUp(m.displayOrder())
		return nil

	case matchesKey(msg, m.keys.Enter):
		switch m.nav.PressEnter() {
		case EnterArmed:
			return m.scheduleEnterTimeout()
		case EnterEdit:
			m.openEntryInput(m.currentDescription(m.nav.EditingID()))
			return textinput.Blink
		case EnterInlineCreate:
			m.openEntryInput("")
			return textinput.Blink
		}
		return nil

	case matchesKey(msg, m.keys.Escape):
		if len(m.engine.Marked()) > 0 {
			m.engine.ClearMarks()
			return nil
		}
		m.nav.Escape()
		return nil

	case matchesKey(msg, m.keys.Complete):
		return m.toggleComplete(ctx)

	case matchesKey(msg, m.keys.Delete):
		return m.deleteSelection(ctx)

	case matchesKey(msg, m.keys.Undo):
		if err := m.engine.Undo(ctx); err != nil {
			if err != engine.ErrNothingToUndo {
				m.warn("undo failed", err)
			}
			return nil
		}
		return nil

	case matchesKey(msg, m.keys.Mark):
		if id := m.nav.SelectedID(); id != "" {
			m.engine.ToggleMark(id)
			m.nav.MoveDown(m.displayOrder())
		}
		return nil

	case matchesKey(msg, m.keys.MoveUp):
		if id := m.nav.SelectedID(); id != "" {
			m.engine.MoveTask(id, -1)
		}
		return nil

	case matchesKey(msg, m.keys.MoveDown):
		if id := m.nav.SelectedID(); id != "" {
			m.engine.MoveTask(id, 1)
		}
		return nil

	case matchesKey(msg, m.keys.Indent):
		if id := m.nav.SelectedID(); id != "" {
			m.engine.ChangeIndent(id, 1)
		}
		return nil

	case matchesKey(msg, m.keys.Outdent):
		if id := m.nav.SelectedID(); id != "" {
			m.engine.ChangeIndent(id, -1)
		}
		return nil

	case matchesKey(msg, m.keys.Search):
		m.state = stateSearching
		m.searchInput.SetValue(m.engine.SearchQuery())
		m.searchInput.Focus()
		return textinput.Blink

	case matchesKey(msg, m.keys.Filter):
		m.state = stateFiltering
		m.rebuildChips()
		return nil

	case matchesKey(msg, m.keys.ResetFilter):
		m.nav.Reset()
		if err := m.engine.ResetFilters(ctx); err != nil {
			m.warn("reset filters failed", err)
		}
		return nil

	case matchesKey(msg, m.keys.LoadMore):
		if err := m.engine.LoadMore(ctx); err != nil {
			m.warn("load more failed", err)
		}
		return nil

	case matchesKey(msg, m.keys.SaveView):
		m.state = stateSavingView
		m.viewInput.SetValue("")
		m.viewInput.Focus()
		return textinput.Blink
	}

	// Digit keys apply saved views by position.
	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		return m.applySavedView(ctx, int(s[0]-'1'))
	}
	return nil
}

// applySavedView restores the filter selection captured in the idx-th
// saved view, if one exists.
func (m *Model) applySavedView(ctx context.Context, idx int) tea.Cmd {
	views, err := m.engine.SavedViews(ctx)
	if err != nil {
		m.warn("load views failed", err)
		return nil
	}
	if idx >= len(views) {
		return nil
	}
	m.nav.Reset()
	if err := m.engine.ApplyView(ctx, views[idx].ID); err != nil {
		m.warn("apply view failed", err)
		return nil
	}
	m.toasts.Pushf(ToastInfo, "view %q applied", views[idx].Name)
	return nil
}

// handleEntryKey routes keys to the open inline-create or edit input.
func (m *Model) handleEntryKey(msg tea.KeyMsg) tea.Cmd {
	ctx := context.Background()

	switch msg.String() {
	case "esc":
		m.nav.Escape()
		m.entryInput.Blur()
		return nil

	case "enter":
		value := strings.TrimSpace(m.entryInput.Value())
		if value == "" {
			m.nav.Escape()
			m.entryInput.Blur()
			return nil
		}

		if editID := m.nav.EditingID(); editID != "" {
			if err := m.engine.UpdateTask(ctx, editID, task.Patch{Description: &value}); err != nil {
				m.warn("update failed", err)
			}
			m.nav.FinishEntry("")
			m.entryInput.Blur()
			return nil
		}

		afterID := m.nav.AfterID()
		created, err := m.engine.CreateTask(ctx, engine.CreateParams{
			Description: value,
			Category:    m.categoryForAnchor(afterID),
			AfterID:     afterID,
		})
		if err != nil {
			m.warn("create failed", err)
			m.nav.Escape()
		} else {
			m.nav.FinishEntry(created.ID)
		}
		m.entryInput.Blur()
		return nil
	}

	var cmd tea.Cmd
	m.entryInput, cmd = m.entryInput.Update(msg)
	return cmd
}

// handleSearchKey routes keys to the search input with debounced
// search-as-you-type.
func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.state = stateNormal
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.applySearch("")
		return nil

	case "enter":
		m.state = stateNormal
		m.searchInput.Blur()
		m.applySearch(m.searchInput.Value())
		return nil
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if m.searchInput.Value() != before {
		return tea.Batch(cmd, m.scheduleSearchDebounce())
	}
	return cmd
}

// handleFilterKey moves the chip cursor and toggles tags.
func (m *Model) handleFilterKey(msg tea.KeyMsg) tea.Cmd {
	ctx := context.Background()

	switch msg.String() {
	case "esc", "f", "q":
		m.state = stateNormal
		return nil

	case "left", "h", "shift+tab":
		if m.chipCursor > 0 {
			m.chipCursor--
		}
		return nil

	case "right", "l", "tab":
		if m.chipCursor < len(m.chips)-1 {
			m.chipCursor++
		}
		return nil

	case "enter", " ":
		if m.chipCursor >= len(m.chips) {
			return nil
		}
		m.nav.Reset()
		c := m.chips[m.chipCursor]
		var err error
		if c.isDynamic() {
			err = m.engine.ToggleDynamicTag(ctx, c.dynamic)
		} else {
			err = m.engine.ToggleTag(ctx, c.tag)
		}
		if err != nil {
			m.warn("toggle filter failed", err)
		}
		return nil

	case "F":
		m.nav.Reset()
		if err := m.engine.ResetFilters(ctx); err != nil {
			m.warn("reset filters failed", err)
		}
		return nil
	}
	return nil
}

// handleSaveViewKey reads the view name and persists the snapshot.
func (m *Model) handleSaveViewKey(msg tea.KeyMsg) tea.Cmd {
	ctx := context.Background()

	switch msg.String() {
	case "esc":
		m.state = stateNormal
		m.viewInput.Blur()
		return nil

	case "enter":
		name := strings.TrimSpace(m.viewInput.Value())
		m.state = stateNormal
		m.viewInput.Blur()
		if name == "" {
			return nil
		}
		if _, err := m.engine.SaveView(ctx, name); err != nil {
			m.warn("save view failed", err)
			return nil
		}
		m.toasts.Pushf(ToastSuccess, "view %q saved", name)
		return nil
	}

	var cmd tea.Cmd
	m.viewInput, cmd = m.viewInput.Update(msg)
	return cmd
}

// toggleComplete flips the marked set when present, else the selection.
func (m *Model) toggleComplete(ctx context.Context) tea.Cmd {
	if len(m.engine.Marked()) > 0 {
		if err := m.engine.CompleteMarked(ctx); err != nil {
			m.warn("complete failed", err)
		}
		return nil
	}

	id := m.nav.SelectedID()
	if id == "" {
		return nil
	}
	tk, ok := m.displayedTask(id)
	if !ok {
		return nil
	}
	order := m.displayOrder()
	if err := m.engine.CompleteTask(ctx, id, !tk.Completed); err != nil {
		m.warn("complete failed", err)
		return nil
	}
	// A completed task usually leaves the current view.
	m.nav.AdvanceAfterRemoval(order, id)
	m.nav.ReconcileOrder(m.displayOrder())
	return nil
}

// deleteSelection deletes the marked set when present, else the
// selection, advancing the cursor off the removed row.
func (m *Model) deleteSelection(ctx context.Context) tea.Cmd {
	if len(m.engine.Marked()) > 0 {
		if err := m.engine.DeleteMarked(ctx); err != nil {
			m.warn("delete failed", err)
		}
		m.nav.ReconcileOrder(m.displayOrder())
		return nil
	}

	id := m.nav.SelectedID()
	if id == "" {
		return nil
	}
	order := m.displayOrder()
	if err := m.engine.DeleteTask(ctx, id); err != nil {
		m.warn("delete failed", err)
		return nil
	}
	m.nav.AdvanceAfterRemoval(order, id)
	return nil
}

// openEntryInput focuses the entry input for inline create or edit.
func (m *Model) openEntryInput(initial string) {
	m.entryInput.SetValue(initial)
	m.entryInput.CursorEnd()
	m.entryInput.Focus()
}

// currentDescription returns the displayed description for an id.
func (m *Model) currentDescription(id string) string {
	if tk, ok := m.displayedTask(id); ok {
		return tk.Description
	}
	return ""
}

func (m *Model) displayedTask(id string) (task.Task, bool) {
	for _, tk := range m.engine.DisplayTasks() {
		if tk.ID == id {
			return tk, true
		}
	}
	return task.Task{}, false
}

// categoryForAnchor resolves which due-date bucket an inline create
// lands in: the anchor task's section, or Today at the head.
func (m *Model) categoryForAnchor(afterID string) task.Category {
	if afterID == "" {
		return task.CategoryToday
	}
	for _, s := range m.engine.Sections() {
		for _, tk := range s.Tasks {
			if tk.ID == afterID {
				return s.Category
			}
		}
	}
	return task.CategoryToday
}
