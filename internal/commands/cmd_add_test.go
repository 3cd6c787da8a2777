package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/core/task"
)

func TestParseDue(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		value   string
		want    *time.Time
		wantErr bool
	}{
		{name: "empty", value: "", want: nil},
		{name: "today", value: "today", want: timeAt(2026, 3, 10)},
		{name: "tomorrow", value: "Tomorrow", want: timeAt(2026, 3, 11)},
		{name: "later", value: "later", want: timeAt(2026, 3, 17)},
		{name: "explicit date", value: "2026-04-01", want: timeAt(2026, 4, 1)},
		{name: "garbage", value: "next tuesday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDue(tt.value, now)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func timeAt(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 23, 59, 0, 0, time.UTC)
	return &d
}

func TestParsePriority(t *testing.T) {
	p, err := parsePriority("High")
	require.NoError(t, err)
	assert.Equal(t, task.PriorityHigh, *p)

	p, err = parsePriority("")
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = parsePriority("urgent")
	assert.Error(t, err)
}
