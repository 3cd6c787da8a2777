package filter

import "github.com/taskdeck/taskdeck/internal/core/task"

// Selection is the set of active filter tags, predefined and dynamic.
// Matching ANDs across groups and ORs within a group.
type Selection struct {
	Tags    map[Tag]struct{}
	Dynamic map[string]DynamicTag
}

// NewSelection builds a selection from predefined tags.
func NewSelection(tags ...Tag) Selection {
	s := Selection{
		Tags:    make(map[Tag]struct{}, len(tags)),
		Dynamic: make(map[string]DynamicTag),
	}
	for _, t := range tags {
		s.Tags[t] = struct{}{}
	}
	return s
}

// DefaultSelection is the selection active on first launch.
func DefaultSelection() Selection {
	return NewSelection(TagTodo, TagLast7Days)
}

// Clone returns an independent copy.
func (s Selection) Clone() Selection {
	out := Selection{
		Tags:    make(map[Tag]struct{}, len(s.Tags)),
		Dynamic: make(map[string]DynamicTag, len(s.Dynamic)),
	}
	for t := range s.Tags {
		out.Tags[t] = struct{}{}
	}
	for id, d := range s.Dynamic {
		out.Dynamic[id] = d
	}
	return out
}

// IsEmpty reports whether no tags are selected.
func (s Selection) IsEmpty() bool {
	return len(s.Tags) == 0 && len(s.Dynamic) == 0
}

// IsDefault reports whether the selection equals the first-launch default.
func (s Selection) IsDefault() bool {
	if len(s.Dynamic) != 0 || len(s.Tags) != 2 {
		return false
	}
	return s.Has(TagTodo) && s.Has(TagLast7Days)
}

// Has reports whether a predefined tag is selected.
func (s Selection) Has(t Tag) bool {
	_, ok := s.Tags[t]
	return ok
}

// HasDynamic reports whether a dynamic tag id is selected.
func (s Selection) HasDynamic(id string) bool {
	_, ok := s.Dynamic[id]
	return ok
}

// Toggle flips a predefined tag in or out of the selection.
func (s *Selection) Toggle(t Tag) {
	if s.Tags == nil {
		s.Tags = make(map[Tag]struct{})
	}
	if s.Has(t) {
		delete(s.Tags, t)
	} else {
		s.Tags[t] = struct{}{}
	}
}

// ToggleDynamic flips a dynamic tag in or out of the selection.
func (s *Selection) ToggleDynamic(d DynamicTag) {
	if s.Dynamic == nil {
		s.Dynamic = make(map[string]DynamicTag)
	}
	if s.HasDynamic(d.ID) {
		delete(s.Dynamic, d.ID)
	} else {
		s.Dynamic[d.ID] = d
	}
}

// StatusTags returns the selected status-group tags.
func (s Selection) StatusTags() []Tag {
	var out []Tag
	for _, t := range TagsFor(GroupStatus) {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// HasStatus reports whether any status tag is selected.
func (s Selection) HasStatus() bool {
	return len(s.StatusTags()) > 0
}

// HasNonStatus reports whether any tag outside the status group is
// selected, including dynamic tags. These filters are pushed down to the
// store query.
func (s Selection) HasNonStatus() bool {
	if len(s.Dynamic) > 0 {
		return true
	}
	for t := range s.Tags {
		if t.Group() != GroupStatus {
			return true
		}
	}
	return false
}

// HasDate reports whether any date-group tag is selected.
func (s Selection) HasDate() bool {
	for t := range s.Tags {
		if t.Group() == GroupDate {
			return true
		}
	}
	return false
}

// CategoryValues returns the raw tag labels of selected category tags,
// predefined and dynamic.
func (s Selection) CategoryValues() []string {
	var out []string
	for t := range s.Tags {
		if v, ok := t.CategoryValue(); ok {
			out = append(out, v)
		}
	}
	for _, d := range s.Dynamic {
		if d.Group == GroupCategory {
			out = append(out, d.RawValue)
		}
	}
	return out
}

// SourceValues returns the raw source values of selected source tags,
// predefined and dynamic.
func (s Selection) SourceValues() []string {
	var out []string
	for t := range s.Tags {
		if v, ok := t.SourceValue(); ok {
			out = append(out, v)
		}
	}
	for _, d := range s.Dynamic {
		if d.Group == GroupSource {
			out = append(out, d.RawValue)
		}
	}
	return out
}

// PriorityValues returns the raw priority strings of selected priority tags.
func (s Selection) PriorityValues() []string {
	var out []string
	for t := range s.Tags {
		if p, ok := t.PriorityValue(); ok {
			out = append(out, string(p))
		}
	}
	return out
}

// OriginValues returns the raw origin strings of selected origin tags.
func (s Selection) OriginValues() []string {
	var out []string
	for t := range s.Tags {
		if o, ok := t.OriginValue(); ok {
			out = append(out, string(o))
		}
	}
	return out
}

// MatchesNonStatus applies the non-status portion of the algebra: for
// every non-status group with at least one selected tag, the task must
// match at least one tag in that group.
func (s Selection) MatchesNonStatus(tk task.Task, ctx Context) bool {
	type groupMatch struct {
		present bool
		matched bool
	}
	groups := make(map[Group]*groupMatch)

	mark := func(g Group, matched bool) {
		gm := groups[g]
		if gm == nil {
			gm = &groupMatch{}
			groups[g] = gm
		}
		gm.present = true
		if matched {
			gm.matched = true
		}
	}

	for t := range s.Tags {
		if t.Group() == GroupStatus {
			continue
		}
		mark(t.Group(), t.Matches(tk, ctx))
	}
	for _, d := range s.Dynamic {
		mark(d.Group, d.Matches(tk))
	}

	for _, gm := range groups {
		if gm.present && !gm.matched {
			return false
		}
	}
	return true
}

// MatchesStatus applies the status partition: a task passes when it
// satisfies any selected status tag. With no status tags selected every
// task passes.
func (s Selection) MatchesStatus(tk task.Task) bool {
	status := s.StatusTags()
	if len(status) == 0 {
		return true
	}

	for _, t := range status {
		switch t {
		case TagRemovedByAI:
			if tk.Deleted && (tk.DeletedBy == nil || *tk.DeletedBy != task.DeletedByUser) {
				return true
			}
		case TagRemovedByMe:
			if tk.Deleted && tk.DeletedBy != nil && *tk.DeletedBy == task.DeletedByUser {
				return true
			}
		case TagDone:
			if tk.Completed {
				return true
			}
		case TagTodo:
			if !tk.Completed && !tk.Deleted {
				return true
			}
		}
	}
	return false
}

// Matches applies the full algebra: status partition AND the per-group
// non-status rules.
func (s Selection) Matches(tk task.Task, ctx Context) bool {
	return s.MatchesStatus(tk) && s.MatchesNonStatus(tk, ctx)
}
