package core

import (
	"errors"
	"strings"
	"time"
)

// UserID uniquely identifies a learner.
type UserID string

// Stage is one of the three ordered sub-units of a lesson.
type Stage string

const (
	StageRead     Stage = "read"
	StagePractice Stage = "practice"
	StageNotes    Stage = "notes"
)

// StageOrder lists the stages in the order they are completed.
var StageOrder = []Stage{StageRead, StagePractice, StageNotes}

// ParseStage converts a wire-level stage name into a Stage.
func ParseStage(s string) (Stage, error) {
	switch Stage(strings.ToLower(strings.TrimSpace(s))) {
	case StageRead:
		return StageRead, nil
	case StagePractice:
		return StagePractice, nil
	case StageNotes:
		return StageNotes, nil
	}
	return "", &ValidationError{Field: "stage", Reason: "must be one of read, practice, notes"}
}

// LessonKey identifies a lesson within a course. It is a comparable value
// usable directly as a map key; the courseID-lessonID string form exists only
// for JSON and storage encodings.
type LessonKey struct {
	CourseID string
	LessonID string
}

func NewLessonKey(courseID, lessonID string) (LessonKey, error) {
	if err := ValidateID(courseID); err != nil {
		return LessonKey{}, &ValidationError{Field: "course_id", Reason: err.Error()}
	}
	if err := ValidateID(lessonID); err != nil {
		return LessonKey{}, &ValidationError{Field: "lesson_id", Reason: err.Error()}
	}
	return LessonKey{CourseID: courseID, LessonID: lessonID}, nil
}

func (k LessonKey) String() string { return k.CourseID + "-" + k.LessonID }

// MarshalText lets LessonKey serve as a JSON object key.
func (k LessonKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the courseID-lessonID form. The separator is
// unambiguous because ValidateID rejects dashes in either part.
func (k *LessonKey) UnmarshalText(b []byte) error {
	course, lesson, ok := strings.Cut(string(b), "-")
	if !ok || course == "" || lesson == "" {
		return errors.New("malformed lesson key: " + string(b))
	}
	k.CourseID, k.LessonID = course, lesson
	return nil
}

// StageState holds per-stage completion flags for one lesson.
// Flags are monotonic: once true, never reset.
type StageState struct {
	Read     bool `json:"read"`
	Practice bool `json:"practice"`
	Notes    bool `json:"notes"`
}

// Done reports whether the given stage has been completed.
func (s StageState) Done(stage Stage) bool {
	switch stage {
	case StageRead:
		return s.Read
	case StagePractice:
		return s.Practice
	case StageNotes:
		return s.Notes
	}
	return false
}

// MarkDone sets the flag for the given stage. Unknown stages are ignored.
func (s *StageState) MarkDone(stage Stage) {
	switch stage {
	case StageRead:
		s.Read = true
	case StagePractice:
		s.Practice = true
	case StageNotes:
		s.Notes = true
	}
}

// AllDone reports whether every stage of the lesson is complete.
func (s StageState) AllDone() bool { return s.Read && s.Practice && s.Notes }

// AchievementID names a milestone badge.
type AchievementID string

// Achievement is a write-once unlock record.
type Achievement struct {
	ID         AchievementID `json:"id"`
	Title      string        `json:"title,omitempty"`
	UnlockedAt time.Time     `json:"unlocked_at"`
}

// UserProgress is a snapshot of a learner's progression state.
// Implementations should hand out deep copies; use Clone.
type UserProgress struct {
	UserID           UserID                          `json:"user_id"`
	XP               int                             `json:"xp"`
	Level            int                             `json:"level"`
	Streak           int                             `json:"streak"`
	LongestStreak    int                             `json:"longest_streak"`
	LastActivity     *time.Time                      `json:"last_activity,omitempty"`
	CompletedLessons map[LessonKey]struct{}          `json:"completed_lessons"`
	StageProgress    map[LessonKey]StageState        `json:"stage_progress"`
	Achievements     map[AchievementID]Achievement   `json:"achievements"`
	Updated          time.Time                       `json:"updated"`
}

// NewUserProgress returns an empty progress record for a fresh account.
func NewUserProgress(user UserID) UserProgress {
	return UserProgress{
		UserID:           user,
		Level:            Level(0),
		CompletedLessons: map[LessonKey]struct{}{},
		StageProgress:    map[LessonKey]StageState{},
		Achievements:     map[AchievementID]Achievement{},
		Updated:          time.Now().UTC(),
	}
}

// Clone returns a deep copy of the progress record.
func (p UserProgress) Clone() UserProgress {
	cp := p
	cp.CompletedLessons = make(map[LessonKey]struct{}, len(p.CompletedLessons))
	for k := range p.CompletedLessons {
		cp.CompletedLessons[k] = struct{}{}
	}
	cp.StageProgress = make(map[LessonKey]StageState, len(p.StageProgress))
	for k, v := range p.StageProgress {
		cp.StageProgress[k] = v
	}
	cp.Achievements = make(map[AchievementID]Achievement, len(p.Achievements))
	for k, v := range p.Achievements {
		cp.Achievements[k] = v
	}
	if p.LastActivity != nil {
		t := *p.LastActivity
		cp.LastActivity = &t
	}
	return cp
}

// Stats extracts the aggregate numbers achievement predicates are judged against.
func (p UserProgress) Stats() Stats {
	return Stats{
		CompletedLessons: len(p.CompletedLessons),
		Level:            p.Level,
		Streak:           p.Streak,
		XP:               p.XP,
	}
}

// NormalizeUserID trims and lowercases user identifiers.
func NormalizeUserID(id UserID) (UserID, error) {
	s := strings.TrimSpace(string(id))
	if s == "" {
		return "", &ValidationError{Field: "user_id", Reason: "empty user id"}
	}
	return UserID(strings.ToLower(s)), nil
}

// ValidateID checks course/lesson identifiers: non-empty, alnum or underscore.
// Dashes are rejected so the LessonKey text form stays collision-free.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("empty id")
	}
	for _, r := range id {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' {
			continue
		}
		return errors.New("id may only contain letters, digits and underscores")
	}
	return nil
}
