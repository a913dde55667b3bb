// SPDX-License-Identifier: MIT

// Package pack implements the duration-constrained selection engine: given
// candidate video metadata and a time window, it deterministically picks a
// subset that fills the window without ever exceeding it.
//
// Everything in this package is pure and synchronous. Candidate pools and
// history snapshots are passed in by the caller; the engine performs no I/O,
// keeps no state between invocations, and never touches ambient randomness.
package pack

import (
	"errors"
	"fmt"
	"time"
)

// Level is the difficulty rating of a candidate, ordered from easiest to
// hardest so mastery adjustment can step upward.
type Level int

const (
	LevelUnknown Level = iota
	LevelBeginner
	LevelIntermediate
	LevelAdvanced
)

var levelNames = map[Level]string{
	LevelBeginner:     "beginner",
	LevelIntermediate: "intermediate",
	LevelAdvanced:     "advanced",
}

// String returns the wire name of the level, or "unknown".
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// ParseLevel maps a wire name to a Level, case-insensitively. The second
// return is false for anything that is not a known level.
func ParseLevel(s string) (Level, bool) {
	switch normalizeKey(s) {
	case "beginner":
		return LevelBeginner, true
	case "intermediate":
		return LevelIntermediate, true
	case "advanced":
		return LevelAdvanced, true
	default:
		return LevelUnknown, false
	}
}

// Candidate is one catalog item eligible for selection.
type Candidate struct {
	ID          string
	ChannelID   string
	DurationSec int
	Topic       string
	Tags        []string
	Level       Level
	PublishedAt time.Time
}

// Window is the inclusive duration band a pack must land in.
type Window struct {
	MinSec int
	MaxSec int
}

// ErrWindowInfeasible reports a request whose window can never be satisfied.
// Callers are expected to validate before invoking the engine; hitting this
// error is a programming bug, not a data condition.
var ErrWindowInfeasible = errors.New("pack: infeasible duration window")

// Validate rejects windows with inverted or non-positive bounds.
func (w Window) Validate() error {
	if w.MaxSec <= 0 || w.MinSec < 0 || w.MinSec > w.MaxSec {
		return fmt.Errorf("%w: min=%d max=%d", ErrWindowInfeasible, w.MinSec, w.MaxSec)
	}
	return nil
}

func (w Window) contains(durationSec int) bool {
	return durationSec >= w.MinSec && durationSec <= w.MaxSec
}

// TolerantWindow builds a window of target ± tolerancePct percent, using
// integer arithmetic so equal inputs always produce equal bounds.
func TolerantWindow(targetSec, tolerancePct int) Window {
	return Window{
		MinSec: targetSec * (100 - tolerancePct) / 100,
		MaxSec: targetSec * (100 + tolerancePct) / 100,
	}
}

// Request carries the packing parameters for one invocation.
type Request struct {
	Topic             string
	Window            Window
	Level             Level
	LevelStrict       bool
	ExcludedIDs       map[string]struct{}
	BlockedChannelIDs map[string]struct{}
	Seed              string
}

// Item is one selected entry of a pack. Presentation fields stay with the
// caller; the engine reports only what it decided on.
type Item struct {
	ID          string
	DurationSec int
	ChannelID   string
}

// Result is the outcome of a Build invocation.
//
// TotalSec never exceeds the window ceiling. UnderFilled is true exactly when
// the total falls short of the window minimum; a short pack is a valid,
// explicitly flagged outcome, never a silent one.
type Result struct {
	Items       []Item
	TotalSec    int
	UnderFilled bool
}

// Selection is the outcome of a Recommend invocation, including which
// heuristic produced it.
type Selection struct {
	Items    []Item
	TotalSec int
	Strategy string
}

func itemOf(c Candidate) Item {
	return Item{ID: c.ID, DurationSec: c.DurationSec, ChannelID: c.ChannelID}
}

func itemsOf(cands []Candidate) []Item {
	items := make([]Item, len(cands))
	for i, c := range cands {
		items[i] = itemOf(c)
	}
	return items
}
