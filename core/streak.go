package core

import "time"

// StreakResult is the outcome of applying one qualifying activity.
type StreakResult struct {
	Streak        int
	LongestStreak int
	LastActivity  time.Time
	Changed       bool
}

// EvaluateStreak applies a qualifying activity at now against the stored
// streak state. Comparison is by UTC calendar day, never exact timestamps:
// a second activity on the same day is a no-op, the day after increments,
// anything else starts over at 1.
func EvaluateStreak(now time.Time, lastActivity *time.Time, streak, longestStreak int) StreakResult {
	changed := true
	if lastActivity == nil {
		streak = 1
	} else {
		switch daysBetween(*lastActivity, now) {
		case 0:
			changed = false
		case 1:
			streak++
		default:
			streak = 1
		}
	}
	if streak > longestStreak {
		longestStreak = streak
	}
	return StreakResult{
		Streak:        streak,
		LongestStreak: longestStreak,
		LastActivity:  now.UTC(),
		Changed:       changed,
	}
}

// StreakBroken is the read-path check: it reports whether the stored streak
// is stale (two or more calendar days without activity) without touching
// the activity date. Callers present a zero streak when it returns true;
// the stored record is only rewritten by the next activity, which starts
// fresh at 1 through EvaluateStreak.
func StreakBroken(now time.Time, lastActivity *time.Time) bool {
	if lastActivity == nil {
		return false
	}
	return daysBetween(*lastActivity, now) >= 2
}

// daysBetween counts whole UTC calendar days from a to b.
func daysBetween(a, b time.Time) int {
	ad := midnightUTC(a)
	bd := midnightUTC(b)
	return int(bd.Sub(ad) / (24 * time.Hour))
}

func midnightUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
