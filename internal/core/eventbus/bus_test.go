package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/internal/core/eventbus"
)

func startBus(t *testing.T) *eventbus.EventBus {
	t.Helper()
	bus := eventbus.New()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go bus.Start(ctx)
	return bus
}

func TestEventBus_PublishSubscribe(t *testing.T) {
	bus := startBus(t)

	got := make(chan eventbus.UndoChangedPayload, 1)
	bus.SubscribeUndoChanged(func(p eventbus.UndoChangedPayload) {
		got <- p
	})

	bus.PublishUndoChanged(eventbus.UndoChangedPayload{Depth: 3})

	select {
	case p := <-got:
		assert.Equal(t, 3, p.Depth)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestEventBus_TypedRouting(t *testing.T) {
	bus := startBus(t)

	recomputed := make(chan eventbus.EngineRecomputedPayload, 1)
	bus.SubscribeEngineRecomputed(func(p eventbus.EngineRecomputedPayload) {
		recomputed <- p
	})

	// A different event type must not reach the recomputed subscriber.
	bus.PublishTaskDeleted(eventbus.TaskDeletedPayload{TaskID: "t1"})
	bus.PublishEngineRecomputed(eventbus.EngineRecomputedPayload{Version: 7, Total: 42})

	select {
	case p := <-recomputed:
		assert.Equal(t, 7, p.Version)
		assert.Equal(t, 42, p.Total)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	assert.Empty(t, recomputed)
}

func TestEventBus_PanicRecovery(t *testing.T) {
	bus := startBus(t)

	panicked := make(chan any, 1)
	bus.OnPanic(func(_ eventbus.Event, _ any, recovered any) {
		panicked <- recovered
	})

	delivered := make(chan struct{}, 1)
	bus.SubscribeTaskDeleted(func(eventbus.TaskDeletedPayload) {
		panic("boom")
	})
	bus.SubscribeTaskDeleted(func(eventbus.TaskDeletedPayload) {
		delivered <- struct{}{}
	})

	bus.PublishTaskDeleted(eventbus.TaskDeletedPayload{TaskID: "t1"})

	select {
	case r := <-panicked:
		require.Equal(t, "boom", r)
	case <-time.After(time.Second):
		t.Fatal("panic hook never fired")
	}

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("second subscriber not reached after panic")
	}
}
