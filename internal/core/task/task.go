// Package task defines the task domain model for the engine.
package task

import "time"

// DeletedBy classifies who removed a task.
type DeletedBy string

const (
	// DeletedByUser marks tasks the user removed explicitly.
	DeletedByUser DeletedBy = "user"
	// DeletedBySystem marks tasks the assistant removed on the user's behalf.
	DeletedBySystem DeletedBy = "system"
)

// Priority is the urgency level assigned to a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Origin classifies how a task came to exist.
type Origin string

const (
	OriginDirectRequest  Origin = "direct_request"
	OriginSelfGenerated  Origin = "self_generated"
	OriginCalendarDriven Origin = "calendar_driven"
	OriginReactive       Origin = "reactive"
	OriginExternalSystem Origin = "external_system"
	OriginOther          Origin = "other"
)

// LocalIDPrefix marks tasks created locally that have not yet been
// confirmed by the backend. Sort-order writes for these ids are skipped.
const LocalIDPrefix = "local_"

// MaxIndent is the deepest nesting level a task may have.
const MaxIndent = 3

// Task represents a single actionable item.
//
// Optional attributes are pointers: several rules depend on telling
// "no due date" apart from "due date in the past".
type Task struct {
	ID             string     `json:"id"`
	Description    string     `json:"description"`
	Completed      bool       `json:"completed"`
	Deleted        bool       `json:"deleted"`
	DeletedBy      *DeletedBy `json:"deleted_by,omitempty"`
	DeletedReason  *string    `json:"deleted_reason,omitempty"`
	DueAt          *time.Time `json:"due_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Priority       *Priority  `json:"priority,omitempty"`
	Source         *string    `json:"source,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	Origin         *Origin    `json:"origin,omitempty"`
	SortOrder      *int       `json:"sort_order,omitempty"`
	IndentLevel    *int       `json:"indent_level,omitempty"`
	RecurrenceRule *string    `json:"recurrence_rule,omitempty"`
}

// EffectiveDate returns the due date, or the creation date when no due
// date is set. Used by date filters and the stale-inbox rule.
func (t Task) EffectiveDate() time.Time {
	if t.DueAt != nil {
		return *t.DueAt
	}
	return t.CreatedAt
}

// IsLocal reports whether the task id is a local placeholder not yet
// confirmed by the backend.
func (t Task) IsLocal() bool {
	return len(t.ID) >= len(LocalIDPrefix) && t.ID[:len(LocalIDPrefix)] == LocalIDPrefix
}

// Indent returns the clamped nesting level.
func (t Task) Indent() int {
	if t.IndentLevel == nil {
		return 0
	}
	return ClampIndent(*t.IndentLevel)
}

// ClampIndent bounds a nesting level to [0, MaxIndent].
func ClampIndent(level int) int {
	if level < 0 {
		return 0
	}
	if level > MaxIndent {
		return MaxIndent
	}
	return level
}
