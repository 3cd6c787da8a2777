package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck/internal/core/eventbus"
	"github.com/taskdeck/taskdeck/internal/core/task"
)

// CreateParams describes an inline task creation.
type CreateParams struct {
	Description string
	// Category picks the section the task is created under and drives
	// due-date inheritance.
	Category task.Category
	// AfterID positions the new task below an existing one in its
	// section. Empty inserts at the section head.
	AfterID string
}

// CreateTask creates a task under a category section. The due date is
// inherited from the section and the tags from any selected category
// filters, so the new task stays visible under the active filter. The
// task appears in the display immediately; the backend mirror confirms in
// the background and swaps in the canonical id.
func (e *Engine) CreateTask(ctx context.Context, p CreateParams) (task.Task, error) {
	if p.Description == "" {
		return task.Task{}, fmt.Errorf("create task: empty description")
	}

	now := e.now()
	t := task.Task{
		Description: p.Description,
		DueAt:       dueDateFor(p.Category, now),
		CreatedAt:   now,
		UpdatedAt:   now,
		Tags:        e.Selection().CategoryValues(),
	}
	if e.backend.Enabled() {
		t.ID = task.LocalIDPrefix + uuid.NewString()
	}

	created, err := e.store.Create(ctx, t)
	if err != nil {
		return task.Task{}, fmt.Errorf("create task: %w", err)
	}

	e.mu.Lock()
	e.insertIntoSectionLocked(created, p.Category, p.AfterID)
	e.rebuildDisplayLocked()
	e.mu.Unlock()

	e.bus.PublishTaskCreated(eventbus.TaskCreatedPayload{Task: created})

	if e.backend.Enabled() {
		go e.confirmCreate(created)
	}

	return created, nil
}

// confirmCreate mirrors a creation to the backend and replaces the local
// placeholder id with the canonical one.
func (e *Engine) confirmCreate(local task.Task) {
	ctx := context.Background()

	confirmed, err := e.backend.CreateTask(ctx, local)
	if err != nil {
		e.log.Warn().Err(err).Str("task_id", local.ID).Msg("backend create failed, keeping local id")
		return
	}
	if confirmed.ID == local.ID {
		return
	}

	if err := e.store.ReplaceID(ctx, local.ID, confirmed.ID); err != nil {
		e.log.Warn().Err(err).Str("task_id", local.ID).Msg("replace local id failed")
		return
	}
	e.NotifyStoreChanged()
}

// dueDateFor maps a category to the inherited due date: end of today, end
// of tomorrow, a week out, or none.
func dueDateFor(c task.Category, now time.Time) *time.Time {
	endOfDay := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 0, 0, t.Location())
	}

	var due time.Time
	switch c {
	case task.CategoryToday:
		due = endOfDay(now)
	case task.CategoryTomorrow:
		due = endOfDay(now.AddDate(0, 0, 1))
	case task.CategoryLater:
		due = endOfDay(now.AddDate(0, 0, 7))
	default:
		return nil
	}
	return &due
}

// CompleteTask sets the completion state. The display is updated
// surgically: if the active status partition no longer admits the task it
// is removed, otherwise edited in place.
func (e *Engine) CompleteTask(ctx context.Context, id string, completed bool) error {
	e.mu.Lock()
	if tk, ok := e.findDisplayedLocked(id); ok {
		tk.Completed = completed
		if e.selection.MatchesStatus(tk) {
			e.updateInDisplayLocked(tk)
		} else {
			e.removeFromDisplayLocked(id)
		}
	}
	e.mu.Unlock()

	if err := e.store.Update(ctx, id, task.Patch{Completed: &completed}); err != nil {
		e.recoverWrite(ctx, err)
		return fmt.Errorf("complete task: %w", err)
	}
	return nil
}

// UpdateTask applies a partial edit and patches the displayed copy.
func (e *Engine) UpdateTask(ctx context.Context, id string, p task.Patch) error {
	if err := e.store.Update(ctx, id, p); err != nil {
		e.recoverWrite(ctx, err)
		return fmt.Errorf("update task: %w", err)
	}

	updated, err := e.store.Get(ctx, id)
	if err != nil {
		return e.Refresh(ctx)
	}

	e.mu.Lock()
	e.updateInDisplayLocked(updated)
	e.mu.Unlock()
	return nil
}

// recoverWrite refreshes from the store after a failed write when strict
// writes are enabled, discarding the optimistic display state.
func (e *Engine) recoverWrite(ctx context.Context, cause error) {
	if !e.cfg.StrictWrites {
		return
	}
	e.log.Warn().Err(cause).Msg("write failed, refreshing from store")
	if err := e.Refresh(ctx); err != nil {
		e.log.Error().Err(err).Msg("recovery refresh failed")
	}
}

// ToggleMark flips a task in or out of the multi-select set.
func (e *Engine) ToggleMark(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.marked[id]; ok {
		delete(e.marked, id)
	} else {
		e.marked[id] = struct{}{}
	}
}

// IsMarked reports whether a task is in the multi-select set.
func (e *Engine) IsMarked(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.marked[id]
	return ok
}

// Marked returns the ids in the multi-select set, in display order.
func (e *Engine) Marked() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []string
	for _, tk := range e.display {
		if _, ok := e.marked[tk.ID]; ok {
			out = append(out, tk.ID)
		}
	}
	return out
}

// ClearMarks empties the multi-select set.
func (e *Engine) ClearMarks() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.marked = make(map[string]struct{})
}

// CompleteMarked completes every marked task and clears the set.
func (e *Engine) CompleteMarked(ctx context.Context) error {
	ids := e.Marked()
	for _, id := range ids {
		if err := e.CompleteTask(ctx, id, true); err != nil {
			return err
		}
	}
	e.ClearMarks()
	return nil
}

// DeleteMarked deletes every marked task and clears the set. Each delete
// is individually undoable.
func (e *Engine) DeleteMarked(ctx context.Context) error {
	ids := e.Marked()
	for _, id := range ids {
		if err := e.DeleteTask(ctx, id); err != nil {
			return err
		}
	}
	e.ClearMarks()
	return nil
}

// findDisplayedLocked returns a copy of the displayed task with the id.
func (e *Engine) findDisplayedLocked(id string) (task.Task, bool) {
	for _, tk := range e.display {
		if tk.ID == id {
			return tk, true
		}
	}
	return task.Task{}, false
}

// removeFromDisplayLocked surgically drops a task from the sections and
// the flat display list.
func (e *Engine) removeFromDisplayLocked(id string) {
	for si := range e.sections {
		tasks := e.sections[si].Tasks
		for i, tk := range tasks {
			if tk.ID == id {
				e.sections[si].Tasks = append(tasks[:i:i], tasks[i+1:]...)
				e.rebuildDisplayLocked()
				return
			}
		}
	}
}

// updateInDisplayLocked replaces the displayed copy of a task in place.
func (e *Engine) updateInDisplayLocked(updated task.Task) {
	for si := range e.sections {
		for i, tk := range e.sections[si].Tasks {
			if tk.ID == updated.ID {
				e.sections[si].Tasks[i] = updated
				e.rebuildDisplayLocked()
				return
			}
		}
	}
}

// insertIntoSectionLocked places a task into a category section, after
// the given id or at the section head.
func (e *Engine) insertIntoSectionLocked(t task.Task, c task.Category, afterID string) {
	for si := range e.sections {
		if e.sections[si].Category != c {
			continue
		}
		tasks := e.sections[si].Tasks
		pos := 0
		if afterID != "" {
			for i, tk := range tasks {
				if tk.ID == afterID {
					pos = i + 1
					break
				}
			}
		}
		tasks = append(tasks, task.Task{})
		copy(tasks[pos+1:], tasks[pos:])
		tasks[pos] = t
		e.sections[si].Tasks = tasks
		return
	}
	// No sections yet (engine not refreshed): seed them.
	e.sections = sectionize([]task.Task{t}, e.now(), nil)
}
