package tui

import (
	"fmt"
	"time"
)

const (
	defaultToastTTL   = 4 * time.Second
	defaultMaxToasts  = 3
	toastTickInterval = 100 * time.Millisecond
	toastWidth        = 44
)

// ToastLevel selects the toast style.
type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastSuccess
	ToastError
	ToastUndo
)

type toast struct {
	level     ToastLevel
	message   string
	remaining time.Duration
}

// ToastController manages the transient notification stack: push,
// eviction, TTL countdown, and the single undo toast slot.
//
// The undo toast is special: it mirrors the engine's undo stack, so its
// lifetime is driven by undo-depth events rather than its own TTL, and
// pushing it again replaces the existing one instead of stacking.
type ToastController struct {
	toasts  []toast
	ticking bool
	undoTTL time.Duration
}

// NewToastController builds a controller whose undo toast lives as long
// as the engine's undo window.
func NewToastController(undoTTL time.Duration) *ToastController {
	if undoTTL <= 0 {
		undoTTL = defaultToastTTL
	}
	return &ToastController{undoTTL: undoTTL}
}

// Push adds a toast. The oldest is evicted past defaultMaxToasts; the
// undo toast never counts against the cap.
func (c *ToastController) Push(level ToastLevel, message string) {
	c.toasts = append(c.toasts, toast{
		level:     level,
		message:   message,
		remaining: defaultToastTTL,
	})
	c.evict()
}

// Pushf is Push with formatting.
func (c *ToastController) Pushf(level ToastLevel, format string, args ...any) {
	c.Push(level, fmt.Sprintf(format, args...))
}

// ShowUndo replaces the undo toast with one reflecting the current
// undo depth. The TTL restarts, matching the engine's undo window.
func (c *ToastController) ShowUndo(depth int) {
	if depth <= 0 {
		c.DismissUndo()
		return
	}
	msg := "deleted, press u to undo"
	if depth > 1 {
		msg = fmt.Sprintf("%d deleted, press u to undo", depth)
	}
	c.DismissUndo()
	c.toasts = append(c.toasts, toast{
		level:     ToastUndo,
		message:   msg,
		remaining: c.undoTTL,
	})
}

// DismissUndo removes the undo toast, if present.
func (c *ToastController) DismissUndo() {
	alive := c.toasts[:0]
	for _, t := range c.toasts {
		if t.level != ToastUndo {
			alive = append(alive, t)
		}
	}
	c.toasts = alive
}

// Tick decrements remaining TTLs by d and drops expired toasts.
func (c *ToastController) Tick(d time.Duration) {
	alive := c.toasts[:0]
	for _, t := range c.toasts {
		t.remaining -= d
		if t.remaining > 0 {
			alive = append(alive, t)
		}
	}
	c.toasts = alive
}

// Dismiss removes the newest toast.
func (c *ToastController) Dismiss() {
	if len(c.toasts) > 0 {
		c.toasts = c.toasts[:len(c.toasts)-1]
	}
}

// DismissAll clears the stack.
func (c *ToastController) DismissAll() {
	c.toasts = c.toasts[:0]
}

// HasToasts reports whether anything is showing.
func (c *ToastController) HasToasts() bool {
	return len(c.toasts) > 0
}

// HasUndoToast reports whether the undo toast is showing.
func (c *ToastController) HasUndoToast() bool {
	for _, t := range c.toasts {
		if t.level == ToastUndo {
			return true
		}
	}
	return false
}

// Toasts returns the active toast slice, oldest first.
func (c *ToastController) Toasts() []toast {
	return c.toasts
}

// Ticking reports whether the tick timer is running.
func (c *ToastController) Ticking() bool { return c.ticking }

// SetTicking records the tick timer state.
func (c *ToastController) SetTicking(v bool) { c.ticking = v }

func (c *ToastController) evict() {
	ordinary := 0
	for _, t := range c.toasts {
		if t.level != ToastUndo {
			ordinary++
		}
	}
	for ordinary > defaultMaxToasts {
		for i, t := range c.toasts {
			if t.level != ToastUndo {
				c.toasts = append(c.toasts[:i], c.toasts[i+1:]...)
				ordinary--
				break
			}
		}
	}
}
