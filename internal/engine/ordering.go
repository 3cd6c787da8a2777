package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/taskdeck/taskdeck/internal/core/eventbus"
	"github.com/taskdeck/taskdeck/internal/core/task"
)

// orderingMigratedFlag marks the one-time backfill of sort orders.
const orderingMigratedFlag = "ordering_migrated"

// MoveTask shifts a task by delta positions within its category section.
// Moves never cross sections. The write is debounced: rapid moves
// coalesce into one store batch after a quiet period.
func (e *Engine) MoveTask(id string, delta int) {
	if delta == 0 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for si := range e.sections {
		tasks := e.sections[si].Tasks
		for i := range tasks {
			if tasks[i].ID != id {
				continue
			}
			to := i + delta
			if to < 0 {
				to = 0
			}
			if to >= len(tasks) {
				to = len(tasks) - 1
			}
			if to == i {
				return
			}

			moved := tasks[i]
			rest := append(tasks[:i:i], tasks[i+1:]...)
			tasks = append(rest[:to:to], append([]task.Task{moved}, rest[to:]...)...)
			e.sections[si].Tasks = tasks

			// Pin the section order until the flush lands, so a
			// recompute inside the debounce window cannot revert the
			// move to the store's stale sort orders.
			ids := make([]string, len(tasks))
			for j, tk := range tasks {
				ids[j] = tk.ID
			}
			e.orderOverride[e.sections[si].Category] = ids

			e.rebuildDisplayLocked()
			e.markOrderingDirtyLocked()
			return
		}
	}
}

// ChangeIndent adjusts a task's nesting level by delta, clamped to the
// allowed range. Like moves, the write is debounced.
func (e *Engine) ChangeIndent(id string, delta int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tk, ok := e.findDisplayedLocked(id)
	if !ok {
		return
	}

	level := task.ClampIndent(tk.Indent() + delta)
	if level == tk.Indent() {
		return
	}

	e.indentOverride[id] = level
	tk.IndentLevel = &level
	e.updateInDisplayLocked(tk)
	e.markOrderingDirtyLocked()
}

// markOrderingDirtyLocked restarts the flush timer. Every edit within the
// quiet period pushes the flush out again.
func (e *Engine) markOrderingDirtyLocked() {
	e.orderingDirty = true
	stopTimer(e.orderingTimer)
	e.orderingTimer = time.AfterFunc(e.cfg.OrderingDebounce(), func() {
		if err := e.FlushOrdering(context.Background()); err != nil {
			e.log.Warn().Err(err).Msg("ordering flush failed")
		}
	})
}

// FlushOrdering writes the current section order and indent levels to the
// store and mirrors the batch to the backend. Tasks with local placeholder
// ids keep their display position but are skipped in the write.
func (e *Engine) FlushOrdering(ctx context.Context) error {
	e.mu.Lock()
	if !e.orderingDirty {
		e.mu.Unlock()
		return nil
	}
	e.orderingDirty = false
	stopTimer(e.orderingTimer)

	var updates []task.SortUpdate
	for _, s := range e.sections {
		for pos, tk := range s.Tasks {
			if tk.IsLocal() {
				continue
			}
			updates = append(updates, task.SortUpdate{
				ID:          tk.ID,
				SortOrder:   task.SortOrderFor(s.Category, pos),
				IndentLevel: tk.Indent(),
			})
		}
	}
	e.mu.Unlock()

	if len(updates) == 0 {
		return nil
	}

	if err := e.store.UpdateSortOrders(ctx, updates); err != nil {
		return fmt.Errorf("flush ordering: %w", err)
	}

	// The store now carries the same order; the overrides are redundant.
	e.mu.Lock()
	e.indentOverride = make(map[string]int)
	e.orderOverride = make(map[task.Category][]string)
	e.mu.Unlock()

	if e.backend.Enabled() {
		go func() {
			if err := e.backend.BatchUpdateSortOrders(context.Background(), updates); err != nil {
				e.log.Warn().Err(err).Int("updates", len(updates)).Msg("backend ordering mirror failed")
			}
		}()
	}

	e.bus.PublishOrderingSynced(eventbus.OrderingSyncedPayload{Updates: len(updates)})
	return nil
}

// migrateOrderingOnce backfills sort orders for databases created before
// manual ordering existed. Runs once, guarded by a KV flag.
func (e *Engine) migrateOrderingOnce(ctx context.Context) error {
	done, err := e.flags.Has(ctx, orderingMigratedFlag)
	if err != nil {
		return fmt.Errorf("check migration flag: %w", err)
	}
	if done {
		return nil
	}

	tasks, err := e.store.List(ctx, task.ListFilter{})
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	// Positions follow the canonical due-then-created order, not whatever
	// order the store listing happened to return.
	task.Sort(tasks)

	var updates []task.SortUpdate
	now := e.now()
	positions := make(map[task.Category]int)
	for _, tk := range tasks {
		if tk.SortOrder != nil || tk.IsLocal() {
			continue
		}
		c := task.Categorize(tk, now)
		updates = append(updates, task.SortUpdate{
			ID:          tk.ID,
			SortOrder:   task.SortOrderFor(c, positions[c]),
			IndentLevel: tk.Indent(),
		})
		positions[c]++
	}

	if len(updates) > 0 {
		if err := e.store.UpdateSortOrders(ctx, updates); err != nil {
			return fmt.Errorf("backfill sort orders: %w", err)
		}
		e.log.Info().Int("updates", len(updates)).Msg("backfilled sort orders")
	}

	if err := e.flags.Set(ctx, orderingMigratedFlag, true); err != nil {
		return fmt.Errorf("set migration flag: %w", err)
	}
	return nil
}
