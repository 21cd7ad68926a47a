package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestLessonKeyTextRoundTrip(t *testing.T) {
	key, err := NewLessonKey("c1", "l1")
	if err != nil {
		t.Fatal(err)
	}
	if key.String() != "c1-l1" {
		t.Fatalf("got %q", key.String())
	}
	var decoded LessonKey
	if err := decoded.UnmarshalText([]byte("c1-l1")); err != nil {
		t.Fatal(err)
	}
	if decoded != key {
		t.Fatalf("got %+v", decoded)
	}
}

func TestNewLessonKeyRejectsDashes(t *testing.T) {
	if _, err := NewLessonKey("c-1", "l1"); err == nil {
		t.Fatal("expected validation error for dash in course id")
	}
	if _, err := NewLessonKey("c1", ""); err == nil {
		t.Fatal("expected validation error for empty lesson id")
	}
}

func TestLessonKeyAsJSONMapKey(t *testing.T) {
	m := map[LessonKey]StageState{{CourseID: "c1", LessonID: "l2"}: {Read: true}}
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	var out map[LessonKey]StageState
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if !out[LessonKey{CourseID: "c1", LessonID: "l2"}].Read {
		t.Fatalf("round trip lost state: %s", b)
	}
}

func TestStageState(t *testing.T) {
	var s StageState
	if s.AllDone() {
		t.Fatal("fresh state should not be complete")
	}
	s.MarkDone(StageRead)
	s.MarkDone(StagePractice)
	if !s.Done(StageRead) || !s.Done(StagePractice) || s.Done(StageNotes) {
		t.Fatalf("unexpected flags: %+v", s)
	}
	s.MarkDone(StageNotes)
	if !s.AllDone() {
		t.Fatal("expected all stages done")
	}
}

func TestParseStage(t *testing.T) {
	if st, err := ParseStage(" Read "); err != nil || st != StageRead {
		t.Fatalf("got %v %v", st, err)
	}
	if _, err := ParseStage("bogus"); err == nil {
		t.Fatal("expected error for unknown stage")
	}
}

func TestCloneIsDeep(t *testing.T) {
	p := NewUserProgress("alice")
	key := LessonKey{CourseID: "c1", LessonID: "l1"}
	p.StageProgress[key] = StageState{Read: true}
	now := time.Now().UTC()
	p.LastActivity = &now

	cp := p.Clone()
	cp.StageProgress[key] = StageState{Read: true, Practice: true}
	cp.CompletedLessons[key] = struct{}{}
	*cp.LastActivity = now.Add(time.Hour)

	if p.StageProgress[key].Practice {
		t.Fatal("clone shares stage map")
	}
	if _, ok := p.CompletedLessons[key]; ok {
		t.Fatal("clone shares completed set")
	}
	if !p.LastActivity.Equal(now) {
		t.Fatal("clone shares last activity pointer")
	}
}

func TestNormalizeUserID(t *testing.T) {
	id, err := NormalizeUserID(" Alice ")
	if err != nil || id != "alice" {
		t.Fatalf("got %v %v", id, err)
	}
	if _, err := NormalizeUserID("   "); err == nil {
		t.Fatal("expected empty error")
	}
}
