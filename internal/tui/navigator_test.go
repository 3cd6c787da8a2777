package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNavigator(window time.Duration) (*Navigator, *time.Time) {
	n := NewNavigator(window)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return now }
	return n, &now
}

func TestNavigator_Movement(t *testing.T) {
	order := []string{"a", "b", "c"}

	t.Run("down from idle selects first", func(t *testing.T) {
		n, _ := newTestNavigator(400 * time.Millisecond)
		require.True(t, n.MoveDown(order))
		assert.Equal(t, NavItemSelected, n.State())
		assert.Equal(t, "a", n.SelectedID())
	})

	t.Run("up from idle selects last", func(t *testing.T) {
		n, _ := newTestNavigator(400 * time.Millisecond)
		require.True(t, n.MoveUp(order))
		assert.Equal(t, "c", n.SelectedID())
	})

	t.Run("clamped at edges", func(t *testing.T) {
		n, _ := newTestNavigator(400 * time.Millisecond)
		n.MoveDown(order)
		assert.False(t, n.MoveUp(order))
		assert.Equal(t, "a", n.SelectedID())

		n.MoveDown(order)
		n.MoveDown(order)
		assert.False(t, n.MoveDown(order))
		assert.Equal(t, "c", n.SelectedID())
	})

	t.Run("empty order is a no-op", func(t *testing.T) {
		n, _ := newTestNavigator(400 * time.Millisecond)
		assert.False(t, n.MoveDown(nil))
		assert.Equal(t, NavIdle, n.State())
	})

	t.Run("stale cursor restarts at head", func(t *testing.T) {
		n, _ := newTestNavigator(400 * time.Millisecond)
		n.Select("gone")
		require.True(t, n.MoveDown(order))
		assert.Equal(t, "a", n.SelectedID())
	})
}

func TestNavigator_DoubleEnter(t *testing.T) {
	order := []string{"a", "b"}

	t.Run("second press inside window edits", func(t *testing.T) {
		n, now := newTestNavigator(400 * time.Millisecond)
		n.MoveDown(order)

		assert.Equal(t, EnterArmed, n.PressEnter())
		assert.True(t, n.EnterArmed())

		*now = now.Add(200 * time.Millisecond)
		assert.Equal(t, EnterEdit, n.PressEnter())
		assert.Equal(t, NavEditing, n.State())
		assert.Equal(t, "a", n.EditingID())
		assert.False(t, n.EnterArmed())
	})

	t.Run("press after window re-arms", func(t *testing.T) {
		n, now := newTestNavigator(400 * time.Millisecond)
		n.MoveDown(order)
		n.PressEnter()

		*now = now.Add(600 * time.Millisecond)
		assert.Equal(t, EnterArmed, n.PressEnter())
		assert.Equal(t, NavItemSelected, n.State())
	})

	t.Run("timeout opens inline create below selection", func(t *testing.T) {
		n, _ := newTestNavigator(400 * time.Millisecond)
		n.MoveDown(order)
		n.PressEnter()

		require.True(t, n.ExpireEnter())
		assert.Equal(t, NavInlineCreating, n.State())
		assert.Equal(t, "a", n.AfterID())
	})

	t.Run("expiry after resolution is a no-op", func(t *testing.T) {
		n, _ := newTestNavigator(400 * time.Millisecond)
		n.MoveDown(order)
		n.PressEnter()
		n.PressEnter()
		assert.False(t, n.ExpireEnter())
		assert.Equal(t, NavEditing, n.State())
	})

	t.Run("movement disarms the window", func(t *testing.T) {
		n, _ := newTestNavigator(400 * time.Millisecond)
		n.MoveDown(order)
		n.PressEnter()
		n.MoveDown(order)
		assert.False(t, n.EnterArmed())
		assert.False(t, n.ExpireEnter())
	})

	t.Run("enter from idle creates at head", func(t *testing.T) {
		n, _ := newTestNavigator(400 * time.Millisecond)
		assert.Equal(t, EnterInlineCreate, n.PressEnter())
		assert.Equal(t, NavInlineCreating, n.State())
		assert.Empty(t, n.AfterID())
	})
}

func TestNavigator_Escape(t *testing.T) {
	order := []string{"a", "b"}

	t.Run("inline create returns to anchor", func(t *testing.T) {
		n, _ := newTestNavigator(400 * time.Millisecond)
		n.MoveDown(order)
		n.PressEnter()
		require.True(t, n.ExpireEnter())

		require.True(t, n.Escape())
		assert.Equal(t, NavItemSelected, n.State())
		assert.Equal(t, "a", n.SelectedID())
	})

	t.Run("editing returns to selection", func(t *testing.T) {
		n, _ := newTestNavigator(400 * time.Millisecond)
		n.MoveDown(order)
		n.PressEnter()
		n.PressEnter()

		require.True(t, n.Escape())
		assert.Equal(t, NavItemSelected, n.State())
		assert.Equal(t, "a", n.SelectedID())
	})

	t.Run("selection clears to idle", func(t *testing.T) {
		n, _ := newTestNavigator(400 * time.Millisecond)
		n.MoveDown(order)
		require.True(t, n.Escape())
		assert.Equal(t, NavIdle, n.State())
		assert.False(t, n.Escape())
	})
}

func TestNavigator_GuardsWhileTyping(t *testing.T) {
	order := []string{"a", "b"}

	n, _ := newTestNavigator(400 * time.Millisecond)
	n.MoveDown(order)
	n.PressEnter()
	n.PressEnter()
	require.Equal(t, NavEditing, n.State())

	assert.False(t, n.MoveDown(order))
	assert.False(t, n.Select("b"))
	assert.Equal(t, EnterIgnored, n.PressEnter())
	assert.Equal(t, "a", n.EditingID())
}

func TestNavigator_FinishEntry(t *testing.T) {
	t.Run("create selects the new task", func(t *testing.T) {
		n, _ := newTestNavigator(400 * time.Millisecond)
		n.PressEnter()
		n.FinishEntry("fresh")
		assert.Equal(t, NavItemSelected, n.State())
		assert.Equal(t, "fresh", n.SelectedID())
	})

	t.Run("edit returns to the edited task", func(t *testing.T) {
		n, _ := newTestNavigator(400 * time.Millisecond)
		n.MoveDown([]string{"a"})
		n.PressEnter()
		n.PressEnter()
		n.FinishEntry("")
		assert.Equal(t, NavItemSelected, n.State())
		assert.Equal(t, "a", n.SelectedID())
	})
}

func TestNavigator_AdvanceAfterRemoval(t *testing.T) {
	order := []string{"a", "b", "c"}

	t.Run("middle advances to successor", func(t *testing.T) {
		n, _ := newTestNavigator(400 * time.Millisecond)
		n.Select("b")
		n.AdvanceAfterRemoval(order, "b")
		assert.Equal(t, "c", n.SelectedID())
	})

	t.Run("last falls back to predecessor", func(t *testing.T) {
		n, _ := newTestNavigator(400 * time.Millisecond)
		n.Select("c")
		n.AdvanceAfterRemoval(order, "c")
		assert.Equal(t, "b", n.SelectedID())
	})

	t.Run("only item clears selection", func(t *testing.T) {
		n, _ := newTestNavigator(400 * time.Millisecond)
		n.Select("a")
		n.AdvanceAfterRemoval([]string{"a"}, "a")
		assert.Equal(t, NavIdle, n.State())
	})

	t.Run("unrelated removal leaves cursor alone", func(t *testing.T) {
		n, _ := newTestNavigator(400 * time.Millisecond)
		n.Select("a")
		n.AdvanceAfterRemoval(order, "b")
		assert.Equal(t, "a", n.SelectedID())
	})
}

func TestNavigator_ReconcileOrder(t *testing.T) {
	n, _ := newTestNavigator(400 * time.Millisecond)
	n.Select("b")

	n.ReconcileOrder([]string{"a", "b"})
	assert.Equal(t, "b", n.SelectedID())

	n.ReconcileOrder([]string{"a"})
	assert.Equal(t, NavIdle, n.State())
}
