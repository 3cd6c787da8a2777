package tui

import (
	"time"
)

// NavState is the keyboard navigation state. Exactly one state is active
// at a time; transitions happen only through Navigator methods so guard
// conditions live in one place.
type NavState int

const (
	// NavIdle means no task is selected and no entry control is open.
	NavIdle NavState = iota
	// NavItemSelected means the keyboard cursor rests on a task.
	NavItemSelected
	// NavInlineCreating means an inline new-task input is open.
	NavInlineCreating
	// NavEditing means the selected task's description is being edited.
	NavEditing
)

func (s NavState) String() string {
	switch s {
	case NavIdle:
		return "idle"
	case NavItemSelected:
		return "item-selected"
	case NavInlineCreating:
		return "inline-creating"
	case NavEditing:
		return "editing"
	default:
		return "unknown"
	}
}

// EnterResult tells the caller what a Return key press did, so the model
// knows whether to schedule an expiry timer or open an input.
type EnterResult int

const (
	// EnterIgnored means the press had no effect in the current state.
	EnterIgnored EnterResult = iota
	// EnterArmed means a double-press window opened; the caller should
	// schedule ExpireEnter after the window.
	EnterArmed
	// EnterEdit means a second press landed inside the window and the
	// machine moved to NavEditing.
	EnterEdit
	// EnterInlineCreate means the machine moved to NavInlineCreating.
	EnterInlineCreate
)

// Navigator is the keyboard navigation state machine over the flattened
// display order. It holds no task data itself; callers pass the current
// ordered id list into movement methods so the machine never goes stale.
//
// While an entry control is open (NavInlineCreating, NavEditing) all
// movement and marking transitions are refused, so ordinary typing is
// never hijacked.
type Navigator struct {
	state      NavState
	selectedID string
	afterID    string
	editingID  string

	enterArmedAt time.Time
	enterArmed   bool

	window time.Duration
	now    func() time.Time
}

// NewNavigator builds a navigator with the given double-press window.
func NewNavigator(window time.Duration) *Navigator {
	return &Navigator{
		window: window,
		now:    time.Now,
	}
}

// State returns the current navigation state.
func (n *Navigator) State() NavState { return n.state }

// SelectedID returns the id under the cursor, or "" outside
// NavItemSelected.
func (n *Navigator) SelectedID() string {
	if n.state == NavItemSelected {
		return n.selectedID
	}
	return ""
}

// AfterID returns the anchor id for an open inline-create input, "" when
// creating at the head.
func (n *Navigator) AfterID() string {
	if n.state == NavInlineCreating {
		return n.afterID
	}
	return ""
}

// EditingID returns the id being edited, or "" outside NavEditing.
func (n *Navigator) EditingID() string {
	if n.state == NavEditing {
		return n.editingID
	}
	return ""
}

// Typing reports whether an entry control owns the keyboard.
func (n *Navigator) Typing() bool {
	return n.state == NavInlineCreating || n.state == NavEditing
}

// EnterArmed reports whether a double-press window is open.
func (n *Navigator) EnterArmed() bool { return n.enterArmed }

// MoveDown advances the cursor through order. From NavIdle it selects the
// first item. Refused while typing.
func (n *Navigator) MoveDown(order []string) bool {
	return n.move(order, 1)
}

// MoveUp retreats the cursor through order. From NavIdle it selects the
// last item. Refused while typing.
func (n *Navigator) MoveUp(order []string) bool {
	return n.move(order, -1)
}

func (n *Navigator) move(order []string, delta int) bool {
	if n.Typing() || len(order) == 0 {
		return false
	}
	n.disarmEnter()

	if n.state == NavIdle {
		n.state = NavItemSelected
		if delta > 0 {
			n.selectedID = order[0]
		} else {
			n.selectedID = order[len(order)-1]
		}
		return true
	}

	at := indexOf(order, n.selectedID)
	if at < 0 {
		// Cursor fell off the list; restart from the nearest edge.
		n.selectedID = order[0]
		return true
	}
	next := at + delta
	if next < 0 || next >= len(order) {
		return false
	}
	n.selectedID = order[next]
	return true
}

// Select places the cursor on a specific id, e.g. after a mouse click or
// a restored task. Refused while typing.
func (n *Navigator) Select(id string) bool {
	if n.Typing() || id == "" {
		return false
	}
	n.disarmEnter()
	n.state = NavItemSelected
	n.selectedID = id
	return true
}

// PressEnter handles the Return key. A first press on a selected item
// arms the double-press window; a second press inside the window opens
// edit mode. From NavIdle it opens inline-create at the head.
func (n *Navigator) PressEnter() EnterResult {
	switch n.state {
	case NavIdle:
		n.state = NavInlineCreating
		n.afterID = ""
		return EnterInlineCreate
	case NavItemSelected:
		if n.enterArmed && n.now().Sub(n.enterArmedAt) <= n.window {
			n.disarmEnter()
			n.editingID = n.selectedID
			n.state = NavEditing
			return EnterEdit
		}
		n.enterArmed = true
		n.enterArmedAt = n.now()
		return EnterArmed
	default:
		return EnterIgnored
	}
}

// ExpireEnter resolves a timed-out double-press window: the single press
// becomes "create below the selection". Returns false when the window
// was already resolved (second press, movement, escape).
func (n *Navigator) ExpireEnter() bool {
	if !n.enterArmed || n.state != NavItemSelected {
		return false
	}
	n.disarmEnter()
	n.afterID = n.selectedID
	n.state = NavInlineCreating
	return true
}

// Escape backs out one level: entry controls close back to the selection
// they came from, and a plain selection clears to idle.
func (n *Navigator) Escape() bool {
	switch n.state {
	case NavInlineCreating:
		if n.afterID != "" {
			n.selectedID = n.afterID
			n.state = NavItemSelected
		} else {
			n.state = NavIdle
		}
		n.afterID = ""
		return true
	case NavEditing:
		n.selectedID = n.editingID
		n.editingID = ""
		n.state = NavItemSelected
		return true
	case NavItemSelected:
		n.disarmEnter()
		n.state = NavIdle
		n.selectedID = ""
		return true
	default:
		return false
	}
}

// FinishEntry closes an open entry control after a successful submit.
// Inline-create keeps the cursor on the newly created task when its id
// is supplied; edit returns to the edited task.
func (n *Navigator) FinishEntry(createdID string) {
	switch n.state {
	case NavInlineCreating:
		n.afterID = ""
		if createdID != "" {
			n.selectedID = createdID
			n.state = NavItemSelected
		} else {
			n.state = NavIdle
		}
	case NavEditing:
		n.selectedID = n.editingID
		n.editingID = ""
		n.state = NavItemSelected
	}
}

// AdvanceAfterRemoval moves the cursor off a removed id: to its successor
// in the pre-removal order, or its predecessor when it was last, or idle
// when it was alone.
func (n *Navigator) AdvanceAfterRemoval(order []string, removedID string) {
	if n.state != NavItemSelected || n.selectedID != removedID {
		return
	}
	n.disarmEnter()
	at := indexOf(order, removedID)
	switch {
	case at < 0 || len(order) <= 1:
		n.state = NavIdle
		n.selectedID = ""
	case at == len(order)-1:
		n.selectedID = order[at-1]
	default:
		n.selectedID = order[at+1]
	}
}

// Reset drops all transient state. Called when filters, search, or the
// completed toggle change: the ordinal positions the cursor referenced
// are about to change.
func (n *Navigator) Reset() {
	n.disarmEnter()
	n.state = NavIdle
	n.selectedID = ""
	n.afterID = ""
	n.editingID = ""
}

// ReconcileOrder clears a selection whose id is no longer displayed.
func (n *Navigator) ReconcileOrder(order []string) {
	if n.state != NavItemSelected {
		return
	}
	if indexOf(order, n.selectedID) < 0 {
		n.disarmEnter()
		n.state = NavIdle
		n.selectedID = ""
	}
}

func (n *Navigator) disarmEnter() {
	n.enterArmed = false
	n.enterArmedAt = time.Time{}
}

func indexOf(order []string, id string) int {
	for i, v := range order {
		if v == id {
			return i
		}
	}
	return -1
}
