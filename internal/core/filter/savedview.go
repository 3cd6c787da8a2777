package filter

import "github.com/google/uuid"

// SavedView is a named, persisted snapshot of a tag selection. Dynamic
// tags are stored by id only; restoring matches ids against the
// currently discovered set, and ids that no longer exist silently drop
// out of the restored selection.
type SavedView struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	TagValues     []string `json:"tag_values"`
	DynamicTagIDs []string `json:"dynamic_tag_ids"`
}

// NewSavedView snapshots the given selection under a name.
func NewSavedView(name string, sel Selection) SavedView {
	v := SavedView{
		ID:   uuid.NewString(),
		Name: name,
	}
	for _, t := range AllTags {
		if sel.Has(t) {
			v.TagValues = append(v.TagValues, string(t))
		}
	}
	for id := range sel.Dynamic {
		v.DynamicTagIDs = append(v.DynamicTagIDs, id)
	}
	return v
}

// Restore rebuilds a selection from the saved view. Unknown predefined
// tag values and dynamic ids absent from available are skipped.
func (v SavedView) Restore(available []DynamicTag) Selection {
	sel := NewSelection()
	for _, raw := range v.TagValues {
		if t, ok := ParseTag(raw); ok {
			sel.Tags[t] = struct{}{}
		}
	}

	byID := make(map[string]DynamicTag, len(available))
	for _, d := range available {
		byID[d.ID] = d
	}
	for _, id := range v.DynamicTagIDs {
		if d, ok := byID[id]; ok {
			sel.Dynamic[d.ID] = d
		}
	}
	return sel
}
