package engine

import (
	"context"
	"testing"
	"time"

	"learnkit/core"
)

var busKey = core.LessonKey{CourseID: "c1", LessonID: "l1"}

func TestEventBusSync(t *testing.T) {
	bus := NewEventBus(DispatchSync)
	count := 0
	bus.Subscribe(core.EventStageCompleted, func(ctx context.Context, e core.Event) { count++ })
	bus.Publish(context.Background(), core.NewStageCompleted("u", busKey, core.StageRead, 20, 20))
	if count != 1 {
		t.Fatalf("want 1 got %d", count)
	}
}

func TestEventBusAsync(t *testing.T) {
	bus := NewEventBus(DispatchAsync)
	defer bus.Close()
	ch := make(chan struct{})
	bus.Subscribe(core.EventStageCompleted, func(ctx context.Context, e core.Event) { close(ch) })
	bus.Publish(context.Background(), core.NewStageCompleted("u", busKey, core.StageRead, 20, 20))
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := NewEventBus(DispatchSync)
	count := 0
	off := bus.Subscribe(core.EventLevelUp, func(ctx context.Context, e core.Event) { count++ })
	bus.Publish(context.Background(), core.NewLevelUp("u", 2))
	off()
	bus.Publish(context.Background(), core.NewLevelUp("u", 3))
	if count != 1 {
		t.Fatalf("want 1 got %d", count)
	}
}
