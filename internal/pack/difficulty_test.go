// SPDX-License-Identifier: MIT

package pack

import "testing"

func TestAdjust(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		base    Level
		mastery int
		want    Level
	}{
		{"unseen topic stays at base", LevelBeginner, 0, LevelBeginner},
		{"below first threshold", LevelBeginner, 2, LevelBeginner},
		{"first threshold bumps once", LevelBeginner, 3, LevelIntermediate},
		{"between thresholds", LevelBeginner, 7, LevelIntermediate},
		{"second threshold bumps twice", LevelBeginner, 8, LevelAdvanced},
		{"far past second threshold", LevelBeginner, 100, LevelAdvanced},
		{"intermediate base bumps to ceiling", LevelIntermediate, 3, LevelAdvanced},
		{"ceiling holds from intermediate", LevelIntermediate, 50, LevelAdvanced},
		{"advanced never moves", LevelAdvanced, 0, LevelAdvanced},
		{"advanced stays at ceiling", LevelAdvanced, 99, LevelAdvanced},
		{"unknown base treated as beginner", LevelUnknown, 3, LevelIntermediate},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Adjust(tt.base, tt.mastery, DefaultThresholds); got != tt.want {
				t.Fatalf("Adjust(%v, %d): got %v, want %v", tt.base, tt.mastery, got, tt.want)
			}
		})
	}
}

func TestAdjustMonotonic(t *testing.T) {
	t.Parallel()

	// More mastery never yields an easier level.
	for base := LevelBeginner; base <= LevelAdvanced; base++ {
		prev := Adjust(base, 0, DefaultThresholds)
		for score := 1; score <= 20; score++ {
			cur := Adjust(base, score, DefaultThresholds)
			if cur < prev {
				t.Fatalf("base %v: level dropped from %v to %v at score %d", base, prev, cur, score)
			}
			prev = cur
		}
	}
}

func TestAdjustCustomThresholds(t *testing.T) {
	t.Parallel()

	tight := Thresholds{FirstBumpAt: 1, SecondBumpAt: 2}
	if got := Adjust(LevelBeginner, 1, tight); got != LevelIntermediate {
		t.Fatalf("custom first bump: got %v, want %v", got, LevelIntermediate)
	}
	if got := Adjust(LevelBeginner, 2, tight); got != LevelAdvanced {
		t.Fatalf("custom second bump: got %v, want %v", got, LevelAdvanced)
	}
}

func TestAdjustInvalidThresholdsFallBack(t *testing.T) {
	t.Parallel()

	broken := Thresholds{FirstBumpAt: 5, SecondBumpAt: 2}
	if got := Adjust(LevelBeginner, 3, broken); got != LevelIntermediate {
		t.Fatalf("invalid thresholds should fall back to defaults: got %v", got)
	}
}

func TestThresholdsValid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		t    Thresholds
		want bool
	}{
		{Thresholds{FirstBumpAt: 3, SecondBumpAt: 8}, true},
		{Thresholds{FirstBumpAt: 0, SecondBumpAt: 8}, false},
		{Thresholds{FirstBumpAt: 8, SecondBumpAt: 3}, false},
		{Thresholds{FirstBumpAt: 4, SecondBumpAt: 4}, false},
	}
	for _, tt := range cases {
		if got := tt.t.Valid(); got != tt.want {
			t.Errorf("Valid(%+v): got %v, want %v", tt.t, got, tt.want)
		}
	}
}
