// Package filter defines the tag algebra used to narrow the task view:
// a closed set of predefined tags plus tags discovered from task data at
// runtime. Every tag is a pure predicate over a task.
package filter

import (
	"time"

	"github.com/taskdeck/taskdeck/internal/core/task"
)

// Group partitions tags for selection algebra: OR within a group, AND
// across groups.
type Group string

const (
	GroupStatus   Group = "status"
	GroupDate     Group = "date"
	GroupCategory Group = "category"
	GroupSource   Group = "source"
	GroupPriority Group = "priority"
	GroupOrigin   Group = "origin"
)

// Tag is a predefined filter tag known at build time.
type Tag string

const (
	// Status
	TagTodo        Tag = "todo"
	TagDone        Tag = "done"
	TagRemovedByAI Tag = "removedByAI"
	TagRemovedByMe Tag = "removedByMe"

	// Category (matches the assistant's task classification labels)
	TagPersonal      Tag = "personal"
	TagWork          Tag = "work"
	TagFeature       Tag = "feature"
	TagBug           Tag = "bug"
	TagCode          Tag = "code"
	TagResearch      Tag = "research"
	TagCommunication Tag = "communication"
	TagFinance       Tag = "finance"
	TagHealth        Tag = "health"
	TagOther         Tag = "other"

	// Source
	TagSourceScreen    Tag = "sourceScreen"
	TagSourceVoice     Tag = "sourceVoice"
	TagSourceDesktop   Tag = "sourceDesktop"
	TagSourceManual    Tag = "sourceManual"
	TagSourceAnalytics Tag = "sourceAnalytics"

	// Priority
	TagPriorityHigh   Tag = "priorityHigh"
	TagPriorityMedium Tag = "priorityMedium"
	TagPriorityLow    Tag = "priorityLow"

	// Date range
	TagLast7Days Tag = "last7Days"

	// Origin
	TagOriginDirectRequest  Tag = "originDirectRequest"
	TagOriginSelfGenerated  Tag = "originSelfGenerated"
	TagOriginCalendarDriven Tag = "originCalendarDriven"
	TagOriginReactive       Tag = "originReactive"
	TagOriginExternalSystem Tag = "originExternalSystem"
	TagOriginOther          Tag = "originOther"
)

// AllTags lists every predefined tag in display order.
var AllTags = []Tag{
	TagTodo, TagDone, TagRemovedByAI, TagRemovedByMe,
	TagPersonal, TagWork, TagFeature, TagBug, TagCode, TagResearch,
	TagCommunication, TagFinance, TagHealth, TagOther,
	TagSourceScreen, TagSourceVoice, TagSourceDesktop, TagSourceManual, TagSourceAnalytics,
	TagPriorityHigh, TagPriorityMedium, TagPriorityLow,
	TagLast7Days,
	TagOriginDirectRequest, TagOriginSelfGenerated, TagOriginCalendarDriven,
	TagOriginReactive, TagOriginExternalSystem, TagOriginOther,
}

// Groups lists all filter groups in display order.
var Groups = []Group{GroupStatus, GroupDate, GroupCategory, GroupSource, GroupPriority, GroupOrigin}

// ParseTag returns the predefined tag for a raw value.
func ParseTag(s string) (Tag, bool) {
	for _, t := range AllTags {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// TagsFor returns the predefined tags belonging to a group, in display order.
func TagsFor(g Group) []Tag {
	var out []Tag
	for _, t := range AllTags {
		if t.Group() == g {
			out = append(out, t)
		}
	}
	return out
}

// Group returns the tag's filter group.
func (t Tag) Group() Group {
	switch t {
	case TagTodo, TagDone, TagRemovedByAI, TagRemovedByMe:
		return GroupStatus
	case TagLast7Days:
		return GroupDate
	case TagSourceScreen, TagSourceVoice, TagSourceDesktop, TagSourceManual, TagSourceAnalytics:
		return GroupSource
	case TagPriorityHigh, TagPriorityMedium, TagPriorityLow:
		return GroupPriority
	case TagOriginDirectRequest, TagOriginSelfGenerated, TagOriginCalendarDriven,
		TagOriginReactive, TagOriginExternalSystem, TagOriginOther:
		return GroupOrigin
	default:
		return GroupCategory
	}
}

// DisplayName returns the human-readable label for the tag.
func (t Tag) DisplayName() string {
	switch t {
	case TagTodo:
		return "To Do"
	case TagDone:
		return "Done"
	case TagRemovedByAI:
		return "Removed by AI"
	case TagRemovedByMe:
		return "Removed by me"
	case TagLast7Days:
		return "Last 7 days"
	case TagSourceScreen:
		return "Screen"
	case TagSourceVoice:
		return "Voice"
	case TagSourceDesktop:
		return "Desktop"
	case TagSourceManual:
		return "Manual"
	case TagSourceAnalytics:
		return "Analytics"
	case TagPriorityHigh:
		return "High"
	case TagPriorityMedium:
		return "Medium"
	case TagPriorityLow:
		return "Low"
	case TagOriginDirectRequest:
		return "Direct Request"
	case TagOriginSelfGenerated:
		return "Self-Generated"
	case TagOriginCalendarDriven:
		return "Calendar-Driven"
	case TagOriginReactive:
		return "Reactive"
	case TagOriginExternalSystem:
		return "External System"
	case TagOriginOther:
		return "Other Origin"
	default:
		return titleCase(string(t))
	}
}

// Icon returns a glyph for the tag, rendered in the filter bar.
func (t Tag) Icon() string {
	switch t {
	case TagTodo:
		return "○"
	case TagDone:
		return "●"
	case TagRemovedByAI:
		return "⊘"
	case TagRemovedByMe:
		return "✗"
	case TagLast7Days:
		return "↺"
	case TagSourceScreen:
		return "▣"
	case TagSourceVoice:
		return "♪"
	case TagSourceDesktop:
		return "⌨"
	case TagSourceManual:
		return "✎"
	case TagSourceAnalytics:
		return "▤"
	case TagPriorityHigh:
		return "⚑"
	case TagPriorityMedium, TagPriorityLow:
		return "⚐"
	default:
		return "⊙"
	}
}

// SourceValue returns the raw source string the tag matches, if it is a
// source tag.
func (t Tag) SourceValue() (string, bool) {
	switch t {
	case TagSourceScreen:
		return "screenshot", true
	case TagSourceVoice:
		return "transcription:voice", true
	case TagSourceDesktop:
		return "transcription:desktop", true
	case TagSourceManual:
		return "manual", true
	case TagSourceAnalytics:
		return "analytics", true
	default:
		return "", false
	}
}

// CategoryValue returns the raw tag label the tag matches, if it is a
// category tag.
func (t Tag) CategoryValue() (string, bool) {
	if t.Group() != GroupCategory {
		return "", false
	}
	return string(t), true
}

// PriorityValue returns the priority the tag matches, if any.
func (t Tag) PriorityValue() (task.Priority, bool) {
	switch t {
	case TagPriorityHigh:
		return task.PriorityHigh, true
	case TagPriorityMedium:
		return task.PriorityMedium, true
	case TagPriorityLow:
		return task.PriorityLow, true
	default:
		return "", false
	}
}

// OriginValue returns the origin the tag matches, if any.
func (t Tag) OriginValue() (task.Origin, bool) {
	switch t {
	case TagOriginDirectRequest:
		return task.OriginDirectRequest, true
	case TagOriginSelfGenerated:
		return task.OriginSelfGenerated, true
	case TagOriginCalendarDriven:
		return task.OriginCalendarDriven, true
	case TagOriginReactive:
		return task.OriginReactive, true
	case TagOriginExternalSystem:
		return task.OriginExternalSystem, true
	case TagOriginOther:
		return task.OriginOther, true
	default:
		return "", false
	}
}

// KnownSources returns the raw source values covered by predefined tags.
func KnownSources() map[string]struct{} {
	out := make(map[string]struct{})
	for _, t := range AllTags {
		if v, ok := t.SourceValue(); ok {
			out[v] = struct{}{}
		}
	}
	return out
}

// KnownCategories returns the raw tag labels covered by predefined tags.
func KnownCategories() map[string]struct{} {
	out := make(map[string]struct{})
	for _, t := range AllTags {
		if v, ok := t.CategoryValue(); ok {
			out[v] = struct{}{}
		}
	}
	return out
}

// Context carries values precomputed once per batch filter pass so every
// task in one recompute is evaluated against the identical instant.
type Context struct {
	Now          time.Time
	SevenDaysAgo time.Time
}

// NewContext builds a filter context anchored at now.
func NewContext(now time.Time) Context {
	return Context{
		Now:          now,
		SevenDaysAgo: now.AddDate(0, 0, -7),
	}
}

// Matches reports whether the task satisfies the tag's predicate.
func (t Tag) Matches(tk task.Task, ctx Context) bool {
	switch t {
	case TagTodo:
		return !tk.Completed
	case TagDone:
		return tk.Completed
	case TagRemovedByAI:
		return tk.Deleted && (tk.DeletedBy == nil || *tk.DeletedBy != task.DeletedByUser)
	case TagRemovedByMe:
		return tk.Deleted && tk.DeletedBy != nil && *tk.DeletedBy == task.DeletedByUser
	case TagLast7Days:
		return !tk.EffectiveDate().Before(ctx.SevenDaysAgo)
	}

	if v, ok := t.SourceValue(); ok {
		return tk.Source != nil && *tk.Source == v
	}
	if v, ok := t.CategoryValue(); ok {
		return containsString(tk.Tags, v)
	}
	if p, ok := t.PriorityValue(); ok {
		return tk.Priority != nil && *tk.Priority == p
	}
	if o, ok := t.OriginValue(); ok {
		return tk.Origin != nil && *tk.Origin == o
	}

	return false
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
