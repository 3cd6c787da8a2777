package task_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/taskdeck/taskdeck/internal/core/task"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestSort(t *testing.T) {
	t.Run("due dates ascending with nulls last", func(t *testing.T) {
		base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

		tasks := []task.Task{
			{ID: "b", CreatedAt: base.AddDate(0, 0, 4)},                                   // no due, newest
			{ID: "a", DueAt: timePtr(base.AddDate(0, 0, 1)), CreatedAt: base},             // due Jan 2
			{ID: "c", CreatedAt: base.AddDate(0, 0, 2)},                                   // no due, older
			{ID: "d", DueAt: timePtr(base.AddDate(0, 0, 3)), CreatedAt: base.AddDate(0, 0, 1)}, // due Jan 4
		}

		task.Sort(tasks)

		ids := make([]string, 0, len(tasks))
		for _, tk := range tasks {
			ids = append(ids, tk.ID)
		}
		assert.Equal(t, []string{"a", "d", "b", "c"}, ids)
	})

	t.Run("equal due dates break by creation descending", func(t *testing.T) {
		due := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
		tasks := []task.Task{
			{ID: "old", DueAt: timePtr(due), CreatedAt: due.AddDate(0, 0, -5)},
			{ID: "new", DueAt: timePtr(due), CreatedAt: due.AddDate(0, 0, -1)},
		}

		task.Sort(tasks)

		assert.Equal(t, "new", tasks[0].ID)
		assert.Equal(t, "old", tasks[1].ID)
	})
}

func TestDedupeByID(t *testing.T) {
	tasks := []task.Task{{ID: "a"}, {ID: "b"}, {ID: "a"}, {ID: "c"}, {ID: "b"}}

	out := task.DedupeByID(tasks)

	ids := make([]string, 0, len(out))
	for _, tk := range out {
		ids = append(ids, tk.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestCategorize(t *testing.T) {
	now := time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		due  *time.Time
		want task.Category
	}{
		{"no due date", nil, task.CategoryNoDeadline},
		{"due later today", timePtr(time.Date(2024, 6, 15, 23, 0, 0, 0, time.UTC)), task.CategoryToday},
		{"overdue folds into today", timePtr(now.AddDate(0, 0, -3)), task.CategoryToday},
		{"due tomorrow", timePtr(time.Date(2024, 6, 16, 8, 0, 0, 0, time.UTC)), task.CategoryTomorrow},
		{"due in a week", timePtr(now.AddDate(0, 0, 7)), task.CategoryLater},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := task.Categorize(task.Task{DueAt: tt.due, CreatedAt: now}, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSortOrderFor(t *testing.T) {
	assert.Equal(t, 1000, task.SortOrderFor(task.CategoryToday, 0))
	assert.Equal(t, 3000, task.SortOrderFor(task.CategoryToday, 2))
	assert.Equal(t, 101_000, task.SortOrderFor(task.CategoryTomorrow, 0))
	assert.Equal(t, 302_000, task.SortOrderFor(task.CategoryNoDeadline, 1))
}

func TestClampIndent(t *testing.T) {
	assert.Equal(t, 0, task.ClampIndent(-2))
	assert.Equal(t, 2, task.ClampIndent(2))
	assert.Equal(t, task.MaxIndent, task.ClampIndent(9))
}

func TestEffectiveDate(t *testing.T) {
	created := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	due := created.AddDate(0, 0, 10)

	assert.Equal(t, due, task.Task{DueAt: &due, CreatedAt: created}.EffectiveDate())
	assert.Equal(t, created, task.Task{CreatedAt: created}.EffectiveDate())
}

func TestIsLocal(t *testing.T) {
	assert.True(t, task.Task{ID: "local_123"}.IsLocal())
	assert.False(t, task.Task{ID: "a1b2c3"}.IsLocal())
}
