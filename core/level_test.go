package core

import "testing"

func TestLevelFormula(t *testing.T) {
	cases := []struct{ xp, level int }{
		{0, 1},
		{999, 1},
		{1000, 2},
		{1999, 2},
		{2999, 3},
		{3000, 4},
		{-5, 1},
	}
	for _, c := range cases {
		if got := Level(c.xp); got != c.level {
			t.Fatalf("Level(%d) = %d, want %d", c.xp, got, c.level)
		}
	}
}

func TestLevelMonotonic(t *testing.T) {
	prev := Level(0)
	for xp := 1; xp <= 10_000; xp += 97 {
		lvl := Level(xp)
		if lvl < prev {
			t.Fatalf("level decreased at xp=%d: %d < %d", xp, lvl, prev)
		}
		prev = lvl
	}
}
