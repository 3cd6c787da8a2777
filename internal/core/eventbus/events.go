package eventbus

import "github.com/taskdeck/taskdeck/internal/core/task"

// Event names, sorted A-Z.
const (
	EventEngineRecomputed Event = "engine.recomputed"
	EventOrderingSynced   Event = "ordering.synced"
	EventTaskCreated      Event = "task.created"
	EventTaskDeleted      Event = "task.deleted"
	EventUndoChanged      Event = "engine.undo-changed"
)

// EngineRecomputedPayload is emitted after the display caches are rebuilt.
type EngineRecomputedPayload struct {
	Version int
	Total   int
}

// UndoChangedPayload is emitted when the undo stack grows, shrinks, or clears.
type UndoChangedPayload struct {
	Depth int
}

// TaskCreatedPayload is emitted when a new task is created.
type TaskCreatedPayload struct {
	Task task.Task
}

// TaskDeletedPayload is emitted when a task is deleted.
type TaskDeletedPayload struct {
	TaskID string
}

// OrderingSyncedPayload is emitted after a sort-order sync completes.
type OrderingSyncedPayload struct {
	Updates int
}

// PublishEngineRecomputed enqueues an engine.recomputed event.
func (bus *EventBus) PublishEngineRecomputed(p EngineRecomputedPayload) {
	bus.send(EventEngineRecomputed, p)
}

// SubscribeEngineRecomputed registers a handler for engine.recomputed events.
func (bus *EventBus) SubscribeEngineRecomputed(fn func(EngineRecomputedPayload)) {
	bus.subscribe(EventEngineRecomputed, func(v any) {
		if p, ok := v.(EngineRecomputedPayload); ok {
			fn(p)
		}
	})
}

// PublishUndoChanged enqueues an engine.undo-changed event.
func (bus *EventBus) PublishUndoChanged(p UndoChangedPayload) {
	bus.send(EventUndoChanged, p)
}

// SubscribeUndoChanged registers a handler for engine.undo-changed events.
func (bus *EventBus) SubscribeUndoChanged(fn func(UndoChangedPayload)) {
	bus.subscribe(EventUndoChanged, func(v any) {
		if p, ok := v.(UndoChangedPayload); ok {
			fn(p)
		}
	})
}

// PublishTaskCreated enqueues a task.created event.
func (bus *EventBus) PublishTaskCreated(p TaskCreatedPayload) {
	bus.send(EventTaskCreated, p)
}

// SubscribeTaskCreated registers a handler for task.created events.
func (bus *EventBus) SubscribeTaskCreated(fn func(TaskCreatedPayload)) {
	bus.subscribe(EventTaskCreated, func(v any) {
		if p, ok := v.(TaskCreatedPayload); ok {
			fn(p)
		}
	})
}

// PublishTaskDeleted enqueues a task.deleted event.
func (bus *EventBus) PublishTaskDeleted(p TaskDeletedPayload) {
	bus.send(EventTaskDeleted, p)
}

// SubscribeTaskDeleted registers a handler for task.deleted events.
func (bus *EventBus) SubscribeTaskDeleted(fn func(TaskDeletedPayload)) {
	bus.subscribe(EventTaskDeleted, func(v any) {
		if p, ok := v.(TaskDeletedPayload); ok {
			fn(p)
		}
	})
}

// PublishOrderingSynced enqueues an ordering.synced event.
func (bus *EventBus) PublishOrderingSynced(p OrderingSyncedPayload) {
	bus.send(EventOrderingSynced, p)
}

// SubscribeOrderingSynced registers a handler for ordering.synced events.
func (bus *EventBus) SubscribeOrderingSynced(fn func(OrderingSyncedPayload)) {
	bus.subscribe(EventOrderingSynced, func(v any) {
		if p, ok := v.(OrderingSyncedPayload); ok {
			fn(p)
		}
	})
}
