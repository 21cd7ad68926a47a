package learnkit

import (
	"context"
	"testing"
	"time"

	"learnkit/core"
	"learnkit/engine"
	"learnkit/realtime"
)

func TestNewDefaults(t *testing.T) {
	svc := New(WithDispatchMode(engine.DispatchSync))
	defer svc.Close()

	key := core.LessonKey{CourseID: "go_basics", LessonID: "hello"}
	res, err := svc.CompleteStage(context.Background(), "alice", key, core.StageRead, 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.EarnedXP != 20 {
		t.Errorf("EarnedXP = %d, want 20 from sample catalog", res.EarnedXP)
	}
}

func TestRealtimeBridge(t *testing.T) {
	hub := realtime.NewHub()
	svc := New(WithDispatchMode(engine.DispatchSync), WithRealtime(hub))
	defer svc.Close()

	_, ch := hub.Subscribe(8)

	key := core.LessonKey{CourseID: "go_basics", LessonID: "hello"}
	if _, err := svc.CompleteStage(context.Background(), "alice", key, core.StageRead, 0); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-ch:
		if ev.Type != core.EventStageCompleted {
			t.Errorf("first event = %s, want %s", ev.Type, core.EventStageCompleted)
		}
	case <-time.After(time.Second):
		t.Fatal("no event bridged to hub")
	}
}
