// Package engine holds the task view state: the active filter selection,
// the cached display list, category sections, aggregate counts, and the
// undo stack. All public methods are safe for concurrent use; background
// recomputes are version-guarded so a stale result never overwrites a
// newer one.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/taskdeck/taskdeck/internal/backend"
	"github.com/taskdeck/taskdeck/internal/core/config"
	"github.com/taskdeck/taskdeck/internal/core/eventbus"
	"github.com/taskdeck/taskdeck/internal/core/filter"
	"github.com/taskdeck/taskdeck/internal/core/kv"
	"github.com/taskdeck/taskdeck/internal/core/logging"
	"github.com/taskdeck/taskdeck/internal/core/task"
)

// Section is one due-date bucket of the display list, in display order.
type Section struct {
	Category task.Category
	Tasks    []task.Task
}

// Engine owns the task view state.
type Engine struct {
	store   task.Store
	backend *backend.Client
	bus     *eventbus.EventBus
	views   *kv.TypedKV[[]filter.SavedView]
	flags   *kv.TypedKV[bool]
	cfg     config.EngineConfig
	log     zerolog.Logger
	now     func() time.Time

	mu             sync.Mutex
	closed         bool
	version        int
	selection      filter.Selection
	searchQuery    string
	displayLimit   int
	hasMore        bool
	display        []task.Task
	sections       []Section
	counts         task.Counts
	dynamicTags    []filter.DynamicTag
	tagCounts      map[string]int
	marked         map[string]struct{}
	indentOverride map[string]int
	orderOverride  map[task.Category][]string

	undoStack []task.Task
	undoTimer *time.Timer

	orderingDirty bool
	orderingTimer *time.Timer
	refreshTimer  *time.Timer
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine. The backend client may be nil, which disables
// remote mirroring.
func New(store task.Store, kvStore kv.KV, bc *backend.Client, bus *eventbus.EventBus, cfg config.EngineConfig, opts ...Option) *Engine {
	e := &Engine{
		store:          store,
		backend:        bc,
		bus:            bus,
		views:          kv.Scoped[[]filter.SavedView](kvStore, "views"),
		flags:          kv.Scoped[bool](kvStore, "flags"),
		cfg:            cfg,
		log:            logging.Component("engine"),
		now:            time.Now,
		selection:      filter.DefaultSelection(),
		displayLimit:   cfg.DisplayPageSize,
		marked:         make(map[string]struct{}),
		indentOverride: make(map[string]int),
		orderOverride:  make(map[task.Category][]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Bootstrap runs the one-time ordering migration and the initial recompute.
func (e *Engine) Bootstrap(ctx context.Context) error {
	if err := e.migrateOrderingOnce(ctx); err != nil {
		return fmt.Errorf("ordering migration: %w", err)
	}
	return e.Refresh(ctx)
}

// Close stops timers and flushes any pending ordering writes.
func (e *Engine) Close() error {
	e.mu.Lock()
	e.closed = true
	stopTimer(e.undoTimer)
	stopTimer(e.refreshTimer)
	stopTimer(e.orderingTimer)
	dirty := e.orderingDirty
	e.mu.Unlock()

	if dirty {
		return e.FlushOrdering(context.Background())
	}
	return nil
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}

// snapshot is the result of one recompute pass.
type snapshot struct {
	display   []task.Task
	sections  []Section
	counts    task.Counts
	dynamic   []filter.DynamicTag
	tagCounts map[string]int
	hasMore   bool
}

// Refresh rebuilds the display caches from the store. Results carry the
// version current at the start of the pass; if a newer pass began in the
// meantime, the stale result is discarded.
func (e *Engine) Refresh(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.version++
	v := e.version
	sel := e.selection.Clone()
	query := e.searchQuery
	limit := e.displayLimit
	indents := make(map[string]int, len(e.indentOverride))
	for id, lvl := range e.indentOverride {
		indents[id] = lvl
	}
	order := make(map[task.Category][]string, len(e.orderOverride))
	for c, ids := range e.orderOverride {
		order[c] = append([]string(nil), ids...)
	}
	e.mu.Unlock()

	snap, err := e.compute(ctx, sel, query, limit, indents, order)
	if err != nil {
		return err
	}

	e.mu.Lock()
	if v != e.version || e.closed {
		e.mu.Unlock()
		return nil
	}
	e.display = snap.display
	e.sections = snap.sections
	e.counts = snap.counts
	e.dynamicTags = snap.dynamic
	e.tagCounts = snap.tagCounts
	e.hasMore = snap.hasMore
	total := len(snap.display)
	e.mu.Unlock()

	e.bus.PublishEngineRecomputed(eventbus.EngineRecomputedPayload{Version: v, Total: total})
	return nil
}

// NotifyStoreChanged coalesces external store-change signals into one
// recompute after a quiet period.
func (e *Engine) NotifyStoreChanged() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	stopTimer(e.refreshTimer)
	e.refreshTimer = time.AfterFunc(e.cfg.RefreshDebounce(), func() {
		if err := e.Refresh(context.Background()); err != nil {
			e.log.Warn().Err(err).Msg("debounced refresh failed")
		}
	})
}

func (e *Engine) compute(ctx context.Context, sel filter.Selection, query string, limit int, indents map[string]int, order map[task.Category][]string) (snapshot, error) {
	now := e.now()
	fctx := filter.NewContext(now)

	candidates, err := e.fetch(ctx, sel, query, fctx)
	if err != nil {
		return snapshot{}, err
	}

	wantsDeleted := selectionWantsDeleted(sel)
	filtered := make([]task.Task, 0, len(candidates))
	for _, tk := range candidates {
		if tk.Deleted && !wantsDeleted {
			continue
		}
		// Incomplete tasks that fell off the 7-day horizon leave every
		// bucket. This is not a filter: it applies regardless of the
		// selection. Completed and deleted views are exempt.
		if !tk.Completed && !tk.Deleted && tk.EffectiveDate().Before(fctx.SevenDaysAgo) {
			continue
		}
		if !sel.MatchesStatus(tk) || !sel.MatchesNonStatus(tk, fctx) {
			continue
		}
		filtered = append(filtered, tk)
	}
	filtered = task.DedupeByID(filtered)

	hasMore := len(filtered) > limit
	if hasMore {
		filtered = filtered[:limit]
	}

	for i := range filtered {
		if lvl, ok := indents[filtered[i].ID]; ok {
			lvl := task.ClampIndent(lvl)
			filtered[i].IndentLevel = &lvl
		}
	}

	// Counts decorate the filter bar; a failed aggregate query degrades
	// to the stale counts and page-local discovery instead of taking the
	// fresh display down with it.
	var dynamic []filter.DynamicTag
	var tagCounts map[string]int
	counts, err := e.store.FilterCounts(ctx)
	if err != nil {
		e.log.Warn().Err(err).Msg("filter counts unavailable, keeping stale aggregates")
		e.mu.Lock()
		counts = e.counts
		e.mu.Unlock()
		dynamic, tagCounts = filter.Discover(filtered)
	} else {
		dynamic, tagCounts = filter.FromCounts(counts.Sources, counts.Categories)
	}

	sections := sectionize(filtered, now, order)
	display := make([]task.Task, 0, len(filtered))
	for _, s := range sections {
		display = append(display, s.Tasks...)
	}

	return snapshot{
		display:   display,
		sections:  sections,
		counts:    counts,
		dynamic:   dynamic,
		tagCounts: tagCounts,
		hasMore:   hasMore,
	}, nil
}

// fetch picks the cheapest source for the current view: text search when a
// query is active, a pushed-down store filter when non-status tags are
// selected, and a plain listing otherwise. The in-memory algebra still runs
// over whatever comes back.
func (e *Engine) fetch(ctx context.Context, sel filter.Selection, query string, fctx filter.Context) ([]task.Task, error) {
	switch {
	case query != "":
		return e.store.Search(ctx, query, singleStatusCompleted(sel), selectionWantsDeleted(sel))
	case sel.HasNonStatus():
		return e.store.GetFiltered(ctx, buildStoreFilter(sel, fctx))
	default:
		return e.store.List(ctx, task.ListFilter{IncludeDeleted: selectionWantsDeleted(sel)})
	}
}

// buildStoreFilter translates a selection into a store query. A single
// selected status tag is pushed down; mixed status selections fall back to
// the in-memory partition.
func buildStoreFilter(sel filter.Selection, fctx filter.Context) task.Filter {
	f := task.Filter{
		Categories: sel.CategoryValues(),
		Sources:    sel.SourceValues(),
		Priorities: sel.PriorityValues(),
		Origins:    sel.OriginValues(),
	}
	if sel.HasDate() {
		boundary := fctx.SevenDaysAgo
		f.DateAfter = &boundary
	}

	status := sel.StatusTags()
	switch {
	case len(status) == 1:
		switch status[0] {
		case filter.TagTodo:
			v := false
			f.Completed = &v
		case filter.TagDone:
			v := true
			f.Completed = &v
		case filter.TagRemovedByAI:
			by := task.DeletedBySystem
			f.DeletedBy = &by
		case filter.TagRemovedByMe:
			by := task.DeletedByUser
			f.DeletedBy = &by
		}
	case len(status) > 1:
		f.IncludeDeleted = selectionWantsDeleted(sel)
	}

	return f
}

func selectionWantsDeleted(sel filter.Selection) bool {
	return sel.Has(filter.TagRemovedByAI) || sel.Has(filter.TagRemovedByMe)
}

// singleStatusCompleted returns the completed flag to push into a search
// query when exactly one completion-status tag is selected.
func singleStatusCompleted(sel filter.Selection) *bool {
	status := sel.StatusTags()
	if len(status) != 1 {
		return nil
	}
	switch status[0] {
	case filter.TagTodo:
		v := false
		return &v
	case filter.TagDone:
		v := true
		return &v
	}
	return nil
}

// sectionize buckets tasks into due-date sections. Within a section the
// store order stands unless an unflushed manual move pinned a different
// one.
func sectionize(tasks []task.Task, now time.Time, order map[task.Category][]string) []Section {
	buckets := make(map[task.Category][]task.Task, len(task.Categories))
	for _, tk := range tasks {
		c := task.Categorize(tk, now)
		buckets[c] = append(buckets[c], tk)
	}

	sections := make([]Section, 0, len(task.Categories))
	for _, c := range task.Categories {
		sections = append(sections, Section{Category: c, Tasks: applyOrderOverride(buckets[c], order[c])})
	}
	return sections
}

// applyOrderOverride reorders a bucket to match a pinned id order. Ids
// missing from the pin keep their relative position at the tail.
func applyOrderOverride(bucket []task.Task, order []string) []task.Task {
	if len(order) == 0 || len(bucket) < 2 {
		return bucket
	}
	byID := make(map[string]int, len(bucket))
	for i, tk := range bucket {
		byID[tk.ID] = i
	}
	out := make([]task.Task, 0, len(bucket))
	pinned := make(map[string]struct{}, len(order))
	for _, id := range order {
		if i, ok := byID[id]; ok {
			out = append(out, bucket[i])
			pinned[id] = struct{}{}
		}
	}
	for _, tk := range bucket {
		if _, ok := pinned[tk.ID]; !ok {
			out = append(out, tk)
		}
	}
	return out
}

// rebuildDisplayLocked re-flattens sections into the display slice after a
// surgical edit. Callers hold the mutex.
func (e *Engine) rebuildDisplayLocked() {
	var display []task.Task
	for _, s := range e.sections {
		display = append(display, s.Tasks...)
	}
	e.display = display
}

// DisplayTasks returns a copy of the current display list.
func (e *Engine) DisplayTasks() []task.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]task.Task, len(e.display))
	copy(out, e.display)
	return out
}

// Sections returns a copy of the current category sections.
func (e *Engine) Sections() []Section {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Section, len(e.sections))
	for i, s := range e.sections {
		tasks := make([]task.Task, len(s.Tasks))
		copy(tasks, s.Tasks)
		out[i] = Section{Category: s.Category, Tasks: tasks}
	}
	return out
}

// Counts returns the store-wide aggregates behind the filter bar.
func (e *Engine) Counts() task.Counts {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counts
}

// DynamicTags returns the discovered dynamic tags, most frequent first.
func (e *Engine) DynamicTags() []filter.DynamicTag {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]filter.DynamicTag, len(e.dynamicTags))
	copy(out, e.dynamicTags)
	return out
}

// TagCount returns the count for a dynamic tag id.
func (e *Engine) TagCount(id string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tagCounts[id]
}

// Selection returns a copy of the active filter selection.
func (e *Engine) Selection() filter.Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selection.Clone()
}

// SearchQuery returns the active search text.
func (e *Engine) SearchQuery() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.searchQuery
}

// HasMore reports whether tasks beyond the display cap matched the filter.
func (e *Engine) HasMore() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hasMore
}

// ToggleTag flips a predefined filter tag and recomputes.
func (e *Engine) ToggleTag(ctx context.Context, t filter.Tag) error {
	e.mu.Lock()
	e.selection.Toggle(t)
	e.displayLimit = e.cfg.DisplayPageSize
	e.mu.Unlock()
	return e.Refresh(ctx)
}

// ToggleDynamicTag flips a dynamic filter tag and recomputes.
func (e *Engine) ToggleDynamicTag(ctx context.Context, d filter.DynamicTag) error {
	e.mu.Lock()
	e.selection.ToggleDynamic(d)
	e.displayLimit = e.cfg.DisplayPageSize
	e.mu.Unlock()
	return e.Refresh(ctx)
}

// ResetFilters restores the first-launch selection and clears search.
func (e *Engine) ResetFilters(ctx context.Context) error {
	e.mu.Lock()
	e.selection = filter.DefaultSelection()
	e.searchQuery = ""
	e.displayLimit = e.cfg.DisplayPageSize
	e.mu.Unlock()
	return e.Refresh(ctx)
}

// SetSearch replaces the search query and recomputes. The caller is
// responsible for debouncing keystrokes.
func (e *Engine) SetSearch(ctx context.Context, query string) error {
	e.mu.Lock()
	if e.searchQuery == query {
		e.mu.Unlock()
		return nil
	}
	e.searchQuery = query
	e.displayLimit = e.cfg.DisplayPageSize
	e.mu.Unlock()
	return e.Refresh(ctx)
}

// LoadMore raises the display cap by one page and recomputes.
func (e *Engine) LoadMore(ctx context.Context) error {
	e.mu.Lock()
	if !e.hasMore {
		e.mu.Unlock()
		return nil
	}
	e.displayLimit += e.cfg.DisplayPageSize
	e.mu.Unlock()
	return e.Refresh(ctx)
}
