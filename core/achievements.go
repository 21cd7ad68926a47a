package core

// Stats is the aggregate snapshot achievement predicates are judged against.
type Stats struct {
	CompletedLessons int
	Level            int
	Streak           int
	XP               int
}

// AchievementDef pairs an achievement id with its unlock predicate.
type AchievementDef struct {
	ID        AchievementID
	Title     string
	Predicate func(Stats) bool
}

// DefaultAchievements is the built-in catalog, evaluated strictly in order.
// Every predicate uses threshold (>=) semantics combined with unlock-once
// evaluation: a predicate is only consulted while its id is absent from the
// unlocked set, so a stat jumping past a milestone (bulk XP grant, streak
// correction) still unlocks it on the next evaluation.
var DefaultAchievements = []AchievementDef{
	{ID: "first-lesson", Title: "First Steps", Predicate: func(s Stats) bool { return s.CompletedLessons >= 1 }},
	{ID: "five-lessons", Title: "Getting Serious", Predicate: func(s Stats) bool { return s.CompletedLessons >= 5 }},
	{ID: "ten-lessons", Title: "Course Veteran", Predicate: func(s Stats) bool { return s.CompletedLessons >= 10 }},
	{ID: "level-5", Title: "Climbing", Predicate: func(s Stats) bool { return s.Level >= 5 }},
	{ID: "level-10", Title: "High Achiever", Predicate: func(s Stats) bool { return s.Level >= 10 }},
	{ID: "streak-3", Title: "Warming Up", Predicate: func(s Stats) bool { return s.Streak >= 3 }},
	{ID: "streak-7", Title: "Week Warrior", Predicate: func(s Stats) bool { return s.Streak >= 7 }},
	{ID: "streak-30", Title: "Monthly Master", Predicate: func(s Stats) bool { return s.Streak >= 30 }},
	{ID: "xp-1000", Title: "Rising Star", Predicate: func(s Stats) bool { return s.XP >= 1000 }},
	{ID: "xp-10000", Title: "Powerhouse", Predicate: func(s Stats) bool { return s.XP >= 10000 }},
}

// EvaluateAchievements returns the catalog entries that are newly satisfied
// by stats and not yet in unlocked, preserving catalog order. The caller
// stamps unlock times and records them; ids are never re-awarded.
func EvaluateAchievements(catalog []AchievementDef, stats Stats, unlocked map[AchievementID]Achievement) []AchievementDef {
	var out []AchievementDef
	for _, def := range catalog {
		if _, ok := unlocked[def.ID]; ok {
			continue
		}
		if def.Predicate != nil && def.Predicate(stats) {
			out = append(out, def)
		}
	}
	return out
}
