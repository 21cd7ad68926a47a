package core

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates progression domain events.
type EventType string

const (
	EventStageCompleted      EventType = "stage_completed"
	EventLessonCompleted     EventType = "lesson_completed"
	EventLevelUp             EventType = "level_up"
	EventAchievementUnlocked EventType = "achievement_unlocked"
	EventStreakExtended      EventType = "streak_extended"
)

// Event represents an immutable domain event.
type Event struct {
	ID          string        `json:"id"`
	Type        EventType     `json:"type"`
	Time        time.Time     `json:"time"`
	UserID      UserID        `json:"user_id"`
	Lesson      string        `json:"lesson,omitempty"`
	Stage       Stage         `json:"stage,omitempty"`
	XP          int           `json:"xp,omitempty"`
	TotalXP     int           `json:"total_xp,omitempty"`
	Level       int           `json:"level,omitempty"`
	Streak      int           `json:"streak,omitempty"`
	Achievement AchievementID `json:"achievement,omitempty"`
}

func newEvent(typ EventType, user UserID) Event {
	return Event{ID: uuid.NewString(), Type: typ, Time: time.Now().UTC(), UserID: user}
}

func NewStageCompleted(user UserID, key LessonKey, stage Stage, xp, totalXP int) Event {
	ev := newEvent(EventStageCompleted, user)
	ev.Lesson = key.String()
	ev.Stage = stage
	ev.XP = xp
	ev.TotalXP = totalXP
	return ev
}

func NewLessonCompleted(user UserID, key LessonKey, xp, totalXP int) Event {
	ev := newEvent(EventLessonCompleted, user)
	ev.Lesson = key.String()
	ev.XP = xp
	ev.TotalXP = totalXP
	return ev
}

func NewLevelUp(user UserID, level int) Event {
	ev := newEvent(EventLevelUp, user)
	ev.Level = level
	return ev
}

func NewAchievementUnlocked(user UserID, id AchievementID) Event {
	ev := newEvent(EventAchievementUnlocked, user)
	ev.Achievement = id
	return ev
}

func NewStreakExtended(user UserID, streak int) Event {
	ev := newEvent(EventStreakExtended, user)
	ev.Streak = streak
	return ev
}
