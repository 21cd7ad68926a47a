package core

// XPPerLevel is the XP span covered by a single level.
const XPPerLevel = 1000

// Level maps cumulative XP to a level number: floor(xp/1000) + 1.
// Pure and total; callers recompute it in full after every XP change
// instead of adjusting the stored level incrementally.
func Level(xp int) int {
	if xp < 0 {
		return 1
	}
	return xp/XPPerLevel + 1
}
