package engine

import (
	"context"
	"errors"
	"math"
	"time"

	"learnkit/core"
)

// ProgressResult is the consolidated outcome of one progression operation.
type ProgressResult struct {
	User              core.UserProgress  `json:"user"`
	EarnedXP          int                `json:"earned_xp"`
	LeveledUp         bool               `json:"leveled_up"`
	NewLevel          *int               `json:"new_level"`
	NewAchievements   []core.Achievement `json:"new_achievements"`
	AllStagesComplete bool               `json:"all_stages_complete"`
}

// StageAccess reports which stages of a lesson a caller may enter.
type StageAccess struct {
	Read     bool `json:"read"`
	Practice bool `json:"practice"`
	Notes    bool `json:"notes"`
}

// LessonAccess is the gating data for one lesson. The engine exposes it;
// callers enforce it. Out-of-order completion calls are safe no-ops either
// way thanks to the idempotency guard.
type LessonAccess struct {
	Lesson    core.LessonKey  `json:"lesson"`
	Title     string          `json:"title"`
	Unlocked  bool            `json:"unlocked"`
	Completed bool            `json:"completed"`
	State     core.StageState `json:"state"`
	Stages    StageAccess     `json:"stages"`
}

// ProgressService wires the progress store, course catalog and event bus
// into the progression engine. It is stateless between calls; all user
// state lives in the store.
type ProgressService struct {
	store        ProgressStore
	catalog      CourseCatalog
	bus          *EventBus
	achievements []core.AchievementDef
	now          func() time.Time
}

// ServiceOption tweaks optional service behavior.
type ServiceOption func(*ProgressService)

// WithClock overrides the time source. Tests pin the calendar day with it.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *ProgressService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithAchievementCatalog replaces the built-in achievement definitions.
func WithAchievementCatalog(defs []core.AchievementDef) ServiceOption {
	return func(s *ProgressService) { s.achievements = defs }
}

func NewProgressService(store ProgressStore, cat CourseCatalog, bus *EventBus, opts ...ServiceOption) *ProgressService {
	if store == nil || cat == nil || bus == nil {
		panic("NewProgressService requires non-nil store, catalog, and bus")
	}
	s := &ProgressService{
		store:        store,
		catalog:      cat,
		bus:          bus,
		achievements: core.DefaultAchievements,
		now:          time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Subscribe convenience method.
func (s *ProgressService) Subscribe(typ core.EventType, handler func(context.Context, core.Event)) func() {
	return s.bus.Subscribe(typ, handler)
}

func (s *ProgressService) Publish(ctx context.Context, ev core.Event) {
	s.bus.Publish(ctx, ev)
}

func (s *ProgressService) Close() { s.bus.Close() }

// CompleteStage records one stage of a lesson as done and applies the
// follow-on effects: XP, level, streak, lesson completion, achievements.
// Completing an already-done stage is a zero-effect no-op, so repeated or
// out-of-order calls never double-award XP. A zero xp argument falls back
// to the catalog reward for the stage.
func (s *ProgressService) CompleteStage(ctx context.Context, user core.UserID, key core.LessonKey, stage core.Stage, xp int) (ProgressResult, error) {
	user, err := core.NormalizeUserID(user)
	if err != nil {
		return ProgressResult{}, err
	}
	stage, err = core.ParseStage(string(stage))
	if err != nil {
		return ProgressResult{}, err
	}
	if xp < 0 {
		return ProgressResult{}, &core.ValidationError{Field: "xp", Reason: "must not be negative"}
	}
	lesson, err := s.catalog.Lesson(key)
	if err != nil {
		return ProgressResult{}, err
	}
	if xp == 0 {
		xp = lesson.Rewards.For(stage)
	}

	var res ProgressResult
	var events []core.Event
	updated, err := s.store.Update(ctx, user, func(p *core.UserProgress) error {
		// Update may retry this closure under optimistic concurrency;
		// rebuild result and events from scratch on every attempt.
		res = ProgressResult{NewAchievements: []core.Achievement{}}
		events = events[:0]

		state := p.StageProgress[key]
		if state.Done(stage) {
			res.AllStagesComplete = state.AllDone()
			return nil
		}
		state.MarkDone(stage)
		p.StageProgress[key] = state

		now := s.now()
		res.EarnedXP = xp
		if applyXP(p, xp) {
			res.LeveledUp = true
			lvl := p.Level
			res.NewLevel = &lvl
		}
		sr := applyStreak(p, now)

		events = append(events, core.NewStageCompleted(user, key, stage, xp, p.XP))
		if res.LeveledUp {
			events = append(events, core.NewLevelUp(user, p.Level))
		}
		if sr.Changed {
			events = append(events, core.NewStreakExtended(user, p.Streak))
		}

		if state.AllDone() {
			res.AllStagesComplete = true
			if _, done := p.CompletedLessons[key]; !done {
				p.CompletedLessons[key] = struct{}{}
				events = append(events, core.NewLessonCompleted(user, key, 0, p.XP))
			}
		}

		res.NewAchievements = unlockAchievements(p, s.achievements, now)
		for _, a := range res.NewAchievements {
			events = append(events, core.NewAchievementUnlocked(user, a.ID))
		}
		p.Updated = now
		return nil
	})
	if err != nil {
		return ProgressResult{}, err
	}
	res.User = updated
	// events go out only after the write is durable
	for _, ev := range events {
		s.bus.Publish(ctx, ev)
	}
	return res, nil
}

// CompleteLesson records a whole lesson as done in one call, bypassing
// per-stage granularity. The base XP is scaled by the quiz score: x1.2 at
// 90+, x1.1 at 80+, otherwise unchanged. Idempotent on lesson membership.
func (s *ProgressService) CompleteLesson(ctx context.Context, user core.UserID, key core.LessonKey, baseXP, quizScore int) (ProgressResult, error) {
	user, err := core.NormalizeUserID(user)
	if err != nil {
		return ProgressResult{}, err
	}
	if baseXP < 0 {
		return ProgressResult{}, &core.ValidationError{Field: "xp", Reason: "must not be negative"}
	}
	if quizScore < 0 || quizScore > 100 {
		return ProgressResult{}, &core.ValidationError{Field: "quiz_score", Reason: "must be between 0 and 100"}
	}
	lesson, err := s.catalog.Lesson(key)
	if err != nil {
		return ProgressResult{}, err
	}
	if baseXP == 0 {
		baseXP = lesson.Rewards.Total()
	}
	earned := bonusXP(baseXP, quizScore)

	var res ProgressResult
	var events []core.Event
	updated, err := s.store.Update(ctx, user, func(p *core.UserProgress) error {
		res = ProgressResult{NewAchievements: []core.Achievement{}}
		events = events[:0]

		if _, done := p.CompletedLessons[key]; done {
			res.AllStagesComplete = true
			return nil
		}
		// the lesson is the unit here: all three flags flip together so
		// completedLessons stays equivalent to all-flags-true
		p.StageProgress[key] = core.StageState{Read: true, Practice: true, Notes: true}
		p.CompletedLessons[key] = struct{}{}

		now := s.now()
		res.EarnedXP = earned
		res.AllStagesComplete = true
		if applyXP(p, earned) {
			res.LeveledUp = true
			lvl := p.Level
			res.NewLevel = &lvl
		}
		sr := applyStreak(p, now)

		events = append(events, core.NewLessonCompleted(user, key, earned, p.XP))
		if res.LeveledUp {
			events = append(events, core.NewLevelUp(user, p.Level))
		}
		if sr.Changed {
			events = append(events, core.NewStreakExtended(user, p.Streak))
		}

		res.NewAchievements = unlockAchievements(p, s.achievements, now)
		for _, a := range res.NewAchievements {
			events = append(events, core.NewAchievementUnlocked(user, a.ID))
		}
		p.Updated = now
		return nil
	})
	if err != nil {
		return ProgressResult{}, err
	}
	res.User = updated
	for _, ev := range events {
		s.bus.Publish(ctx, ev)
	}
	return res, nil
}

// SubmitQuiz grades a submission against the lesson's question bank. It
// never mutates progress; stage completion is a separate call.
func (s *ProgressService) SubmitQuiz(ctx context.Context, key core.LessonKey, answers []int) (core.QuizResult, error) {
	lesson, err := s.catalog.Lesson(key)
	if err != nil {
		return core.QuizResult{}, err
	}
	if len(answers) > len(lesson.Questions) {
		return core.QuizResult{}, &core.ValidationError{Field: "answers", Reason: "more answers than questions"}
	}
	return core.ScoreQuiz(lesson.Questions, answers), nil
}

// Progress returns a user's progress snapshot. A streak stale by two or
// more calendar days reads as zero; the stored value is left untouched and
// the next activity starts over at 1 through the normal evaluate path.
func (s *ProgressService) Progress(ctx context.Context, user core.UserID) (core.UserProgress, error) {
	user, err := core.NormalizeUserID(user)
	if err != nil {
		return core.UserProgress{}, err
	}
	p, err := s.store.Get(ctx, user)
	if err != nil {
		return core.UserProgress{}, err
	}
	if core.StreakBroken(s.now(), p.LastActivity) {
		p.Streak = 0
	}
	return p, nil
}

// CourseAccess lists the gating data for every lesson of a course in order:
// a lesson unlocks once its predecessor is fully complete, practice once
// read is done, notes once practice is done.
func (s *ProgressService) CourseAccess(ctx context.Context, user core.UserID, courseID string) ([]LessonAccess, error) {
	user, err := core.NormalizeUserID(user)
	if err != nil {
		return nil, err
	}
	lessons, err := s.catalog.Lessons(courseID)
	if err != nil {
		return nil, err
	}
	p, err := s.store.Get(ctx, user)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			return nil, err
		}
		// fresh accounts see lesson one unlocked
		p = core.NewUserProgress(user)
	}

	out := make([]LessonAccess, 0, len(lessons))
	prevComplete := true
	for _, lesson := range lessons {
		key := core.LessonKey{CourseID: courseID, LessonID: lesson.ID}
		state := p.StageProgress[key]
		out = append(out, LessonAccess{
			Lesson:    key,
			Title:     lesson.Title,
			Unlocked:  prevComplete,
			Completed: state.AllDone(),
			State:     state,
			Stages: StageAccess{
				Read:     prevComplete,
				Practice: prevComplete && state.Read,
				Notes:    prevComplete && state.Practice,
			},
		})
		prevComplete = state.AllDone()
	}
	return out, nil
}

// applyXP adds earned XP and recomputes the level from scratch.
func applyXP(p *core.UserProgress, xp int) (leveledUp bool) {
	prev := p.Level
	p.XP += xp
	p.Level = core.Level(p.XP)
	return p.Level > prev
}

func applyStreak(p *core.UserProgress, now time.Time) core.StreakResult {
	sr := core.EvaluateStreak(now, p.LastActivity, p.Streak, p.LongestStreak)
	p.Streak = sr.Streak
	p.LongestStreak = sr.LongestStreak
	la := sr.LastActivity
	p.LastActivity = &la
	return sr
}

func unlockAchievements(p *core.UserProgress, defs []core.AchievementDef, now time.Time) []core.Achievement {
	newly := core.EvaluateAchievements(defs, p.Stats(), p.Achievements)
	out := make([]core.Achievement, 0, len(newly))
	for _, def := range newly {
		a := core.Achievement{ID: def.ID, Title: def.Title, UnlockedAt: now}
		p.Achievements[def.ID] = a
		out = append(out, a)
	}
	return out
}

// bonusXP applies the quiz-score multiplier tiers to the base award.
func bonusXP(base, quizScore int) int {
	switch {
	case quizScore >= 90:
		return int(math.Round(float64(base) * 1.2))
	case quizScore >= 80:
		return int(math.Round(float64(base) * 1.1))
	default:
		return base
	}
}
