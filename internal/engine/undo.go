package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taskdeck/taskdeck/internal/core/eventbus"
	"github.com/taskdeck/taskdeck/internal/core/task"
)

// ErrNothingToUndo is returned when the undo stack is empty.
var ErrNothingToUndo = errors.New("nothing to undo")

// DeleteTask soft-deletes a task and pushes its full prior state onto the
// undo stack. The stack holds the most recent deletes up to the configured
// depth, oldest evicted first, and clears after the undo window passes
// with no further delete or undo.
func (e *Engine) DeleteTask(ctx context.Context, id string) error {
	snapshot, err := e.snapshotForUndo(ctx, id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.undoStack = append(e.undoStack, snapshot)
	if len(e.undoStack) > e.cfg.UndoDepth {
		e.undoStack = e.undoStack[len(e.undoStack)-e.cfg.UndoDepth:]
	}
	e.resetUndoTimerLocked()
	e.removeFromDisplayLocked(id)
	delete(e.marked, id)
	depth := len(e.undoStack)
	e.mu.Unlock()

	e.bus.PublishUndoChanged(eventbus.UndoChangedPayload{Depth: depth})
	e.bus.PublishTaskDeleted(eventbus.TaskDeletedPayload{TaskID: id})

	if err := e.store.Delete(ctx, id); err != nil {
		e.recoverWrite(ctx, err)
		return fmt.Errorf("delete task: %w", err)
	}

	if e.backend.Enabled() && !snapshot.IsLocal() {
		go func() {
			if err := e.backend.DeleteTask(context.Background(), id); err != nil {
				e.log.Warn().Err(err).Str("task_id", id).Msg("backend delete mirror failed")
			}
		}()
	}
	return nil
}

// Undo reinstates the most recently deleted task. The restored task
// reappears at the head of the display so the user can see it landed.
func (e *Engine) Undo(ctx context.Context) error {
	e.mu.Lock()
	if len(e.undoStack) == 0 {
		e.mu.Unlock()
		return ErrNothingToUndo
	}
	restored := e.undoStack[len(e.undoStack)-1]
	e.undoStack = e.undoStack[:len(e.undoStack)-1]
	e.resetUndoTimerLocked()
	depth := len(e.undoStack)

	restored.Deleted = false
	restored.DeletedBy = nil
	restored.DeletedReason = nil
	e.insertAtDisplayHeadLocked(restored)
	e.mu.Unlock()

	e.bus.PublishUndoChanged(eventbus.UndoChangedPayload{Depth: depth})

	if err := e.store.Restore(ctx, restored); err != nil {
		e.recoverWrite(ctx, err)
		return fmt.Errorf("undo delete: %w", err)
	}

	if e.backend.Enabled() && !restored.IsLocal() {
		go func() {
			if err := e.backend.RestoreTask(context.Background(), restored); err != nil {
				e.log.Warn().Err(err).Str("task_id", restored.ID).Msg("backend restore mirror failed")
			}
		}()
	}
	return nil
}

// UndoDepth returns the number of deletes currently undoable.
func (e *Engine) UndoDepth() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.undoStack)
}

// snapshotForUndo captures the task's full state before deletion, from
// the display cache when possible.
func (e *Engine) snapshotForUndo(ctx context.Context, id string) (task.Task, error) {
	e.mu.Lock()
	tk, ok := e.findDisplayedLocked(id)
	e.mu.Unlock()
	if ok {
		return tk, nil
	}

	tk, err := e.store.Get(ctx, id)
	if err != nil {
		return task.Task{}, fmt.Errorf("delete task: %w", err)
	}
	return tk, nil
}

// resetUndoTimerLocked restarts the undo expiry window. Both deletes and
// undos extend the window.
func (e *Engine) resetUndoTimerLocked() {
	stopTimer(e.undoTimer)
	if len(e.undoStack) == 0 {
		return
	}
	e.undoTimer = time.AfterFunc(e.cfg.UndoTTL(), e.expireUndo)
}

// expireUndo clears the stack after the window passes.
func (e *Engine) expireUndo() {
	e.mu.Lock()
	if len(e.undoStack) == 0 {
		e.mu.Unlock()
		return
	}
	e.undoStack = nil
	e.mu.Unlock()
	e.bus.PublishUndoChanged(eventbus.UndoChangedPayload{Depth: 0})
}

// insertAtDisplayHeadLocked puts a restored task at the top of its
// category section, which is also the top of the visible list for the
// first non-empty section.
func (e *Engine) insertAtDisplayHeadLocked(t task.Task) {
	c := task.Categorize(t, e.now())
	for si := range e.sections {
		if e.sections[si].Category != c {
			continue
		}
		e.sections[si].Tasks = append([]task.Task{t}, e.sections[si].Tasks...)
		e.rebuildDisplayLocked()
		return
	}

	// No section for this category yet; splice one in at its display
	// position.
	fresh := Section{Category: c, Tasks: []task.Task{t}}
	at := len(e.sections)
	for si := range e.sections {
		if c.Index() < e.sections[si].Category.Index() {
			at = si
			break
		}
	}
	e.sections = append(e.sections[:at], append([]Section{fresh}, e.sections[at:]...)...)
	e.rebuildDisplayLocked()
}
