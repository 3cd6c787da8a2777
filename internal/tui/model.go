package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/taskdeck/taskdeck/internal/core/config"
	"github.com/taskdeck/taskdeck/internal/core/eventbus"
	"github.com/taskdeck/taskdeck/internal/core/filter"
	"github.com/taskdeck/taskdeck/internal/core/logging"
	"github.com/taskdeck/taskdeck/internal/core/styles"
	"github.com/taskdeck/taskdeck/internal/engine"
)

// UIState is the top-level mode of the TUI. Entry controls opened by the
// navigator (inline create, edit) ride inside stateNormal.
type UIState int

const (
	stateNormal UIState = iota
	stateSearching
	stateFiltering
	stateSavingView
)

// Event messages bridged from the engine's bus onto the Bubble Tea loop.
type (
	engineRecomputedMsg eventbus.EngineRecomputedPayload
	undoChangedMsg      eventbus.UndoChangedPayload
	taskCreatedMsg      eventbus.TaskCreatedPayload
	orderingSyncedMsg   eventbus.OrderingSyncedPayload
)

// enterTimeoutMsg resolves a pending double-press window. The sequence
// number discards timers that a second press already consumed.
type enterTimeoutMsg struct{ seq int }

// searchDebounceMsg commits the search input after a quiet period.
type searchDebounceMsg struct{ seq int }

// chip is one toggleable entry in the filter bar.
type chip struct {
	tag     filter.Tag        // zero when dynamic
	dynamic filter.DynamicTag // zero when predefined
}

func (c chip) isDynamic() bool { return c.dynamic.ID != "" }

// Model is the main Bubble Tea model: a thin presentation shell over the
// engine, which owns all task state.
type Model struct {
	cfg    *config.Config
	engine *engine.Engine
	keys   KeyMap
	log    zerolog.Logger

	state UIState
	nav   *Navigator

	searchInput textinput.Model
	entryInput  textinput.Model
	viewInput   textinput.Model

	toasts    *ToastController
	toastView *ToastView

	// Filter bar cursor over predefined + dynamic chips.
	chips      []chip
	chipCursor int

	events    chan tea.Msg
	enterSeq  int
	searchSeq int

	width    int
	height   int
	quitting bool
}

// NewModel wires the TUI to a bootstrapped engine. Engine events are
// forwarded onto the Bubble Tea loop through an internal channel.
func NewModel(cfg *config.Config, eng *engine.Engine, bus *eventbus.EventBus) *Model {
	search := textinput.New()
	search.Placeholder = "search tasks"
	search.Prompt = "/ "
	search.CharLimit = 200

	entry := textinput.New()
	entry.Placeholder = "task description"
	entry.Prompt = "> "
	entry.CharLimit = 500

	view := textinput.New()
	view.Placeholder = "view name"
	view.Prompt = "save view: "
	view.CharLimit = 64

	if p, ok := styles.GetPalette(cfg.TUI.Theme); ok {
		styles.SetTheme(p)
	}

	m := &Model{
		cfg:         cfg,
		engine:      eng,
		keys:        DefaultKeyMap(),
		log:         logging.Component("tui"),
		nav:         NewNavigator(cfg.TUI.DoubleEnterWindow()),
		searchInput: search,
		entryInput:  entry,
		viewInput:   view,
		toasts:      NewToastController(cfg.Engine.UndoTTL()),
		events:      make(chan tea.Msg, 64),
	}
	m.toastView = NewToastView(m.toasts)
	m.rebuildChips()

	bus.SubscribeEngineRecomputed(func(p eventbus.EngineRecomputedPayload) {
		m.forward(engineRecomputedMsg(p))
	})
	bus.SubscribeUndoChanged(func(p eventbus.UndoChangedPayload) {
		m.forward(undoChangedMsg(p))
	})
	bus.SubscribeTaskCreated(func(p eventbus.TaskCreatedPayload) {
		m.forward(taskCreatedMsg(p))
	})
	bus.SubscribeOrderingSynced(func(p eventbus.OrderingSyncedPayload) {
		m.forward(orderingSyncedMsg(p))
	})
	return m
}

func (m *Model) forward(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
		// Dropping is fine; every event is a refresh hint, not data.
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.waitForEvent()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case engineRecomputedMsg:
		m.nav.ReconcileOrder(m.displayOrder())
		m.rebuildChips()
		return m, m.waitForEvent()

	case undoChangedMsg:
		m.toasts.ShowUndo(msg.Depth)
		return m, tea.Batch(m.ensureToastTick(), m.waitForEvent())

	case taskCreatedMsg:
		return m, m.waitForEvent()

	case orderingSyncedMsg:
		return m, m.waitForEvent()

	case enterTimeoutMsg:
		if msg.seq == m.enterSeq && m.nav.ExpireEnter() {
			m.openEntryInput("")
			return m, textinput.Blink
		}
		return m, nil

	case searchDebounceMsg:
		if msg.seq == m.searchSeq {
			m.applySearch(m.searchInput.Value())
		}
		return m, m.ensureToastTick()

	case toastTickMsg:
		m.toasts.Tick(toastTickInterval)
		if m.toasts.HasToasts() {
			return m, scheduleToastTick()
		}
		m.toasts.SetTicking(false)
		return m, nil
	}
	return m, nil
}

// ensureToastTick starts the countdown loop if it is not running.
func (m *Model) ensureToastTick() tea.Cmd {
	if m.toasts.Ticking() || !m.toasts.HasToasts() {
		return nil
	}
	m.toasts.SetTicking(true)
	return scheduleToastTick()
}

// scheduleEnterTimeout arms the double-press expiry for the current seq.
func (m *Model) scheduleEnterTimeout() tea.Cmd {
	m.enterSeq++
	seq := m.enterSeq
	window := m.cfg.TUI.DoubleEnterWindow()
	return tea.Tick(window, func(time.Time) tea.Msg {
		return enterTimeoutMsg{seq: seq}
	})
}

// scheduleSearchDebounce arms the search commit for the current seq.
func (m *Model) scheduleSearchDebounce() tea.Cmd {
	m.searchSeq++
	seq := m.searchSeq
	return tea.Tick(m.cfg.TUI.SearchDebounce(), func(time.Time) tea.Msg {
		return searchDebounceMsg{seq: seq}
	})
}

func (m *Model) displayOrder() []string {
	tasks := m.engine.DisplayTasks()
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}

// rebuildChips refreshes the filter bar entries from the predefined
// vocabulary plus the currently discovered dynamic tags.
func (m *Model) rebuildChips() {
	dynamic := m.engine.DynamicTags()
	chips := make([]chip, 0, len(filter.AllTags)+len(dynamic))
	for _, t := range filter.AllTags {
		chips = append(chips, chip{tag: t})
	}
	for _, d := range dynamic {
		chips = append(chips, chip{dynamic: d})
	}
	m.chips = chips
	if m.chipCursor >= len(chips) {
		m.chipCursor = max(len(chips)-1, 0)
	}
}

// applySearch pushes the query into the engine and resets navigation,
// since the list the cursor referenced is about to change.
func (m *Model) applySearch(query string) {
	m.nav.Reset()
	if err := m.engine.SetSearch(context.Background(), query); err != nil {
		m.warn("search failed", err)
	}
}

func (m *Model) warn(msg string, err error) {
	m.log.Warn().Err(err).Msg(msg)
	m.toasts.Push(ToastError, msg)
}

func matchesKey(msg tea.KeyMsg, b key.Binding) bool {
	return key.Matches(msg, b)
}
