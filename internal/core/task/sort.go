package task

import "sort"

// Sort orders tasks by due date ascending with missing due dates last,
// breaking ties by creation time descending (newest first). This mirrors
// the backend's canonical ordering and must not drift from it.
func Sort(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]

		switch {
		case a.DueAt != nil && b.DueAt != nil:
			if !a.DueAt.Equal(*b.DueAt) {
				return a.DueAt.Before(*b.DueAt)
			}
		case a.DueAt != nil:
			return true
		case b.DueAt != nil:
			return false
		}

		return a.CreatedAt.After(b.CreatedAt)
	})
}

// DedupeByID removes later duplicates of the same id, preserving order.
func DedupeByID(tasks []Task) []Task {
	seen := make(map[string]struct{}, len(tasks))
	out := tasks[:0]
	for _, t := range tasks {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}
