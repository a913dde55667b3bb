// SPDX-License-Identifier: MIT

package pack

// Thresholds names the mastery scores at which difficulty is bumped one
// level. The values are policy, supplied by configuration; they never live
// inline at a call site.
type Thresholds struct {
	FirstBumpAt  int
	SecondBumpAt int
}

// DefaultThresholds is the shipped bump policy.
var DefaultThresholds = Thresholds{FirstBumpAt: 3, SecondBumpAt: 8}

// Valid reports whether the thresholds describe a usable step function.
func (t Thresholds) Valid() bool {
	return t.FirstBumpAt > 0 && t.SecondBumpAt > t.FirstBumpAt
}

// Adjust maps a requested difficulty and a mastery score to the effective
// difficulty. The step function is monotonic: each reached threshold bumps
// one level, capped at advanced, and mastery never bumps downward. An
// unknown base is treated as beginner.
func Adjust(base Level, masteryScore int, t Thresholds) Level {
	if base < LevelBeginner || base > LevelAdvanced {
		base = LevelBeginner
	}
	if !t.Valid() {
		t = DefaultThresholds
	}

	bumps := 0
	if masteryScore >= t.FirstBumpAt {
		bumps++
	}
	if masteryScore >= t.SecondBumpAt {
		bumps++
	}

	adjusted := base + Level(bumps)
	if adjusted > LevelAdvanced {
		adjusted = LevelAdvanced
	}
	return adjusted
}
