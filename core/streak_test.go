package core

import (
	"testing"
	"time"
)

func at(day int, hour int) time.Time {
	return time.Date(2024, time.March, day, hour, 0, 0, 0, time.UTC)
}

func TestStreakFirstActivity(t *testing.T) {
	res := EvaluateStreak(at(1, 9), nil, 0, 0)
	if res.Streak != 1 || res.LongestStreak != 1 || !res.Changed {
		t.Fatalf("got %+v", res)
	}
}

func TestStreakSameDayNoOp(t *testing.T) {
	last := at(1, 9)
	res := EvaluateStreak(at(1, 22), &last, 4, 6)
	if res.Streak != 4 || res.Changed {
		t.Fatalf("same-day activity must not change streak: %+v", res)
	}
	if res.LongestStreak != 6 {
		t.Fatalf("longest streak moved: %+v", res)
	}
}

func TestStreakNextDayIncrements(t *testing.T) {
	last := at(1, 23)
	res := EvaluateStreak(at(2, 0), &last, 4, 4)
	if res.Streak != 5 || !res.Changed {
		t.Fatalf("got %+v", res)
	}
	if res.LongestStreak != 5 {
		t.Fatalf("longest should follow streak: %+v", res)
	}
}

func TestStreakGapResets(t *testing.T) {
	last := at(1, 12)
	res := EvaluateStreak(at(4, 12), &last, 9, 9)
	if res.Streak != 1 || !res.Changed {
		t.Fatalf("got %+v", res)
	}
	if res.LongestStreak != 9 {
		t.Fatalf("longest must keep its high-water mark: %+v", res)
	}
}

func TestStreakLongestInvariant(t *testing.T) {
	var last *time.Time
	streak, longest := 0, 0
	for day := 1; day <= 10; day++ {
		now := at(day, 10)
		if day == 6 {
			// skip a day by jumping two forward
			now = at(day+1, 10)
		}
		res := EvaluateStreak(now, last, streak, longest)
		if res.LongestStreak < res.Streak {
			t.Fatalf("day %d: longest %d < streak %d", day, res.LongestStreak, res.Streak)
		}
		if res.LongestStreak < longest {
			t.Fatalf("day %d: longest decreased", day)
		}
		streak, longest = res.Streak, res.LongestStreak
		la := res.LastActivity
		last = &la
	}
}

func TestStreakBroken(t *testing.T) {
	if StreakBroken(at(5, 10), nil) {
		t.Fatal("no prior activity is not a broken streak")
	}
	last := at(1, 10)
	if StreakBroken(at(2, 10), &last) {
		t.Fatal("one-day gap is still continuable")
	}
	if !StreakBroken(at(3, 10), &last) {
		t.Fatal("two-day gap should report broken")
	}
}
