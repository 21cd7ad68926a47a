package catalog

import (
	"errors"
	"testing"

	"learnkit/core"
)

func TestCatalogLookup(t *testing.T) {
	c := Sample()

	lesson, err := c.Lesson(core.LessonKey{CourseID: "go_basics", LessonID: "hello"})
	if err != nil {
		t.Fatal(err)
	}
	if lesson.Rewards.For(core.StagePractice) != 50 {
		t.Fatalf("got %+v", lesson.Rewards)
	}
	if lesson.Rewards.Total() != 100 {
		t.Fatalf("total = %d", lesson.Rewards.Total())
	}

	if _, err := c.Lesson(core.LessonKey{CourseID: "go_basics", LessonID: "nope"}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
	if _, err := c.Course("missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestNewRejectsBadIDs(t *testing.T) {
	if _, err := New(Course{ID: "go-basics"}); err == nil {
		t.Fatal("dash in course id should be rejected")
	}
	if _, err := New(
		Course{ID: "a"},
		Course{ID: "a"},
	); err == nil {
		t.Fatal("duplicate course id should be rejected")
	}
	if _, err := New(Course{ID: "a", Lessons: []Lesson{{ID: "l1"}, {ID: "l1"}}}); err == nil {
		t.Fatal("duplicate lesson id should be rejected")
	}
}

func TestParseYAML(t *testing.T) {
	src := []byte(`
courses:
  - id: c1
    title: Course One
    lessons:
      - id: l1
        title: Lesson One
        rewards:
          read: 10
          practice: 25
          notes: 15
        questions:
          - id: q1
            prompt: "2+2?"
            options: ["3", "4"]
            correct_answer: 1
            explanation: "basic arithmetic"
            difficulty: easy
            xp: 5
`)
	c, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	lesson, err := c.Lesson(core.LessonKey{CourseID: "c1", LessonID: "l1"})
	if err != nil {
		t.Fatal(err)
	}
	if lesson.Rewards.Practice != 25 {
		t.Fatalf("rewards = %+v", lesson.Rewards)
	}
	if len(lesson.Questions) != 1 || lesson.Questions[0].CorrectAnswer != 1 {
		t.Fatalf("questions = %+v", lesson.Questions)
	}
	if len(c.Courses()) != 1 {
		t.Fatalf("courses = %d", len(c.Courses()))
	}
}
