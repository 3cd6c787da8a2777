package engine

import (
	"context"
	"fmt"

	"github.com/taskdeck/taskdeck/internal/core/filter"
	"github.com/taskdeck/taskdeck/internal/data/stores"
)

// viewsKey is the single KV key holding all saved views.
const viewsKey = "all"

// SavedViews returns the persisted filter views.
func (e *Engine) SavedViews(ctx context.Context) ([]filter.SavedView, error) {
	views, err := e.views.Get(ctx, viewsKey)
	if stores.IsNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load saved views: %w", err)
	}
	return views, nil
}

// SaveView snapshots the current selection under a name.
func (e *Engine) SaveView(ctx context.Context, name string) (filter.SavedView, error) {
	if name == "" {
		return filter.SavedView{}, fmt.Errorf("save view: empty name")
	}

	view := filter.NewSavedView(name, e.Selection())

	views, err := e.SavedViews(ctx)
	if err != nil {
		return filter.SavedView{}, err
	}
	views = append(views, view)

	if err := e.views.Set(ctx, viewsKey, views); err != nil {
		return filter.SavedView{}, fmt.Errorf("save view: %w", err)
	}
	return view, nil
}

// ApplyView restores a saved view's selection. Dynamic tags that no
// longer exist silently drop out.
func (e *Engine) ApplyView(ctx context.Context, id string) error {
	views, err := e.SavedViews(ctx)
	if err != nil {
		return err
	}

	for _, v := range views {
		if v.ID != id {
			continue
		}
		e.mu.Lock()
		e.selection = v.Restore(e.dynamicTags)
		e.searchQuery = ""
		e.displayLimit = e.cfg.DisplayPageSize
		e.mu.Unlock()
		return e.Refresh(ctx)
	}
	return fmt.Errorf("apply view: no view with id %s", id)
}

// DeleteView removes a saved view.
func (e *Engine) DeleteView(ctx context.Context, id string) error {
	views, err := e.SavedViews(ctx)
	if err != nil {
		return err
	}

	kept := views[:0]
	for _, v := range views {
		if v.ID != id {
			kept = append(kept, v)
		}
	}
	if len(kept) == len(views) {
		return fmt.Errorf("delete view: no view with id %s", id)
	}

	if err := e.views.Set(ctx, viewsKey, kept); err != nil {
		return fmt.Errorf("delete view: %w", err)
	}
	return nil
}
