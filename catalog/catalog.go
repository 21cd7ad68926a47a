// Package catalog holds the read-only course and lesson reference data the
// progression engine grades and awards against.
package catalog

import (
	"fmt"

	"learnkit/core"
)

// StageRewards is the XP granted per completed stage of a lesson.
type StageRewards struct {
	Read     int `json:"read" yaml:"read"`
	Practice int `json:"practice" yaml:"practice"`
	Notes    int `json:"notes" yaml:"notes"`
}

// For returns the reward for a single stage.
func (r StageRewards) For(stage core.Stage) int {
	switch stage {
	case core.StageRead:
		return r.Read
	case core.StagePractice:
		return r.Practice
	case core.StageNotes:
		return r.Notes
	}
	return 0
}

// Total is the XP for completing the lesson as a whole.
func (r StageRewards) Total() int { return r.Read + r.Practice + r.Notes }

// Lesson is one unit of a course: three ordered stages plus the practice
// question bank.
type Lesson struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Rewards   StageRewards    `json:"rewards"`
	Questions []core.Question `json:"questions,omitempty"`
}

// Course is an ordered bundle of lessons.
type Course struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Lessons []Lesson `json:"lessons"`
}

// Catalog is an immutable in-memory course lookup.
type Catalog struct {
	courses map[string]Course
	order   []string
}

// New builds a catalog from course definitions, validating every identifier
// and rejecting duplicates.
func New(courses ...Course) (*Catalog, error) {
	c := &Catalog{courses: make(map[string]Course, len(courses))}
	for _, course := range courses {
		if err := core.ValidateID(course.ID); err != nil {
			return nil, fmt.Errorf("course %q: %w", course.ID, err)
		}
		if _, dup := c.courses[course.ID]; dup {
			return nil, fmt.Errorf("duplicate course id %q", course.ID)
		}
		seen := make(map[string]struct{}, len(course.Lessons))
		for _, lesson := range course.Lessons {
			if err := core.ValidateID(lesson.ID); err != nil {
				return nil, fmt.Errorf("course %q lesson %q: %w", course.ID, lesson.ID, err)
			}
			if _, dup := seen[lesson.ID]; dup {
				return nil, fmt.Errorf("course %q: duplicate lesson id %q", course.ID, lesson.ID)
			}
			seen[lesson.ID] = struct{}{}
		}
		c.courses[course.ID] = course
		c.order = append(c.order, course.ID)
	}
	return c, nil
}

// Courses lists all courses in definition order.
func (c *Catalog) Courses() []Course {
	out := make([]Course, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.courses[id])
	}
	return out
}

// Course returns one course by id.
func (c *Catalog) Course(id string) (Course, error) {
	course, ok := c.courses[id]
	if !ok {
		return Course{}, &core.NotFoundError{Resource: "course", Key: id}
	}
	return course, nil
}

// Lessons returns the ordered lessons of a course.
func (c *Catalog) Lessons(courseID string) ([]Lesson, error) {
	course, err := c.Course(courseID)
	if err != nil {
		return nil, err
	}
	return course.Lessons, nil
}

// Lesson resolves a lesson key to its definition.
func (c *Catalog) Lesson(key core.LessonKey) (Lesson, error) {
	course, err := c.Course(key.CourseID)
	if err != nil {
		return Lesson{}, err
	}
	for _, lesson := range course.Lessons {
		if lesson.ID == key.LessonID {
			return lesson, nil
		}
	}
	return Lesson{}, &core.NotFoundError{Resource: "lesson", Key: key.String()}
}
