package task

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a task does not exist.
var ErrNotFound = errors.New("task not found")

// Filter narrows a store query. Slice fields OR within themselves;
// distinct fields AND together, matching the selection algebra.
type Filter struct {
	// Completed filters by completion when set. Ignored for deleted rows.
	Completed *bool
	// DeletedBy selects deleted tasks removed by the given actor.
	// When nil, deleted tasks are excluded unless IncludeDeleted is set.
	DeletedBy      *DeletedBy
	IncludeDeleted bool
	// DateAfter keeps tasks whose due date is on or after the boundary,
	// or whose creation date is when no due date is set.
	DateAfter  *time.Time
	Categories []string
	Sources    []string
	Priorities []string
	Origins    []string
	Limit      int
}

// ListFilter narrows a plain listing.
type ListFilter struct {
	Completed      *bool
	IncludeDeleted bool
	Limit          int
}

// Counts holds store-wide aggregate totals for the filter bar. The
// grouped maps count incomplete tasks only; value keys are raw
// source/tag/priority/origin strings.
type Counts struct {
	Todo          int
	Done          int
	DeletedByUser int
	DeletedByAI   int
	Categories    map[string]int
	Sources       map[string]int
	Priorities    map[string]int
	Origins       map[string]int
}

// SortUpdate is one row of a sort-order batch write.
type SortUpdate struct {
	ID          string `json:"id"`
	SortOrder   int    `json:"sort_order"`
	IndentLevel int    `json:"indent_level"`
}

// Patch is a partial task update. Nil fields are untouched; Clear flags
// null out the corresponding optional column.
type Patch struct {
	Description     *string
	Completed       *bool
	DueAt           *time.Time
	ClearDueAt      bool
	Priority        *Priority
	ClearPriority   bool
	Tags            *[]string
	RecurrenceRule  *string
	ClearRecurrence bool
}

// Store is the persistence boundary for tasks. Implementations own the
// source-of-truth records; the engine holds snapshots, never references
// into store internals.
type Store interface {
	Create(ctx context.Context, t Task) (Task, error)
	Get(ctx context.Context, id string) (Task, error)
	List(ctx context.Context, f ListFilter) ([]Task, error)
	GetFiltered(ctx context.Context, f Filter) ([]Task, error)
	Search(ctx context.Context, query string, completed *bool, includeDeleted bool) ([]Task, error)
	FilterCounts(ctx context.Context) (Counts, error)
	Update(ctx context.Context, id string, p Patch) error
	UpdateSortOrders(ctx context.Context, updates []SortUpdate) error
	Delete(ctx context.Context, id string) error
	Restore(ctx context.Context, t Task) error
	// ReplaceID rewrites a local placeholder id with the canonical id
	// assigned by the backend.
	ReplaceID(ctx context.Context, oldID, newID string) error
}
