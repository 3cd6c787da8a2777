package filter

import (
	"strings"

	"github.com/taskdeck/taskdeck/internal/core/task"
)

// DynamicTag is a filter tag discovered from task data at runtime: a
// source or tag label not in the predefined vocabulary. Dynamic tags are
// ephemeral; they are recomputed each discovery pass and persisted only
// by id inside a saved view.
type DynamicTag struct {
	ID          string `json:"id"`
	Group       Group  `json:"group"`
	RawValue    string `json:"raw_value"`
	DisplayName string `json:"display_name"`
	Icon        string `json:"icon"`
}

// SourceTag builds a dynamic tag for an unknown source value.
func SourceTag(value string) DynamicTag {
	return DynamicTag{
		ID:          "source:" + value,
		Group:       GroupSource,
		RawValue:    value,
		DisplayName: titleCase(value),
		Icon:        "→",
	}
}

// CategoryTag builds a dynamic tag for an unknown tag label.
func CategoryTag(value string) DynamicTag {
	return DynamicTag{
		ID:          "category:" + value,
		Group:       GroupCategory,
		RawValue:    value,
		DisplayName: titleCase(value),
		Icon:        "⊙",
	}
}

// Matches reports whether the task carries this tag's raw value.
func (d DynamicTag) Matches(tk task.Task) bool {
	switch d.Group {
	case GroupSource:
		return tk.Source != nil && *tk.Source == d.RawValue
	case GroupCategory:
		return containsString(tk.Tags, d.RawValue)
	default:
		return false
	}
}

// titleCase formats a raw value into a display name, splitting on the
// separators raw values use: "email:inbound" becomes "Email Inbound".
func titleCase(value string) string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ':' || r == '-' || r == '_' || r == ' '
	})
	for i, f := range fields {
		fields[i] = strings.ToUpper(f[:1]) + strings.ToLower(f[1:])
	}
	return strings.Join(fields, " ")
}
