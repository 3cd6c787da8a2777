package task

import "time"

// Category is the due-date bucket a task is displayed under.
// It is derived from DueAt relative to the current moment and never persisted.
type Category int

const (
	CategoryToday Category = iota
	CategoryTomorrow
	CategoryLater
	CategoryNoDeadline
)

// Categories lists all buckets in display order.
var Categories = []Category{CategoryToday, CategoryTomorrow, CategoryLater, CategoryNoDeadline}

// String returns the display name of the category.
func (c Category) String() string {
	switch c {
	case CategoryToday:
		return "Today"
	case CategoryTomorrow:
		return "Tomorrow"
	case CategoryLater:
		return "Later"
	default:
		return "No Deadline"
	}
}

// Index returns the category's position in display order, used as the
// sort-order band offset.
func (c Category) Index() int {
	return int(c)
}

const (
	// CategoryBand is the sort-order offset between adjacent categories.
	CategoryBand = 100_000
	// PositionStep is the sort-order gap between adjacent tasks in a band.
	PositionStep = 1000
)

// SortOrderFor encodes a category and an in-category position into a
// persistent sort order. Bands keep categories disjoint; the step leaves
// room for insertions between neighbors.
func SortOrderFor(c Category, position int) int {
	return c.Index()*CategoryBand + (position+1)*PositionStep
}

// Categorize buckets a task by due date. Overdue tasks fold into Today.
func Categorize(t Task, now time.Time) Category {
	if t.DueAt == nil {
		return CategoryNoDeadline
	}

	due := *t.DueAt
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfTomorrow := startOfToday.AddDate(0, 0, 1)
	startOfDayAfter := startOfToday.AddDate(0, 0, 2)

	switch {
	case due.Before(startOfTomorrow):
		return CategoryToday
	case due.Before(startOfDayAfter):
		return CategoryTomorrow
	default:
		return CategoryLater
	}
}
