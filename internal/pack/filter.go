// SPDX-License-Identifier: MIT

package pack

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var foldCaser = cases.Fold()

// normalizeKey canonicalizes a topic or tag for comparison: trimmed, NFC
// normalized, case-folded. Topic matching is case-insensitive across the
// whole engine.
func normalizeKey(s string) string {
	return foldCaser.String(norm.NFC.String(strings.TrimSpace(s)))
}

// Filter removes candidates that fail the request's hard constraints: wrong
// topic, non-positive duration, excluded id, blocked channel, and, when
// LevelStrict is set, the wrong difficulty level.
//
// Malformed entries (durationSec <= 0) are dropped silently; upstream
// metadata noise must never fail an otherwise fittable pack. An empty topic
// keeps all topics, which is how the duration-fit call site uses it.
func Filter(cands []Candidate, req Request) []Candidate {
	want := normalizeKey(req.Topic)
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if c.DurationSec <= 0 {
			continue
		}
		if want != "" && !matchesTopic(c, want) {
			continue
		}
		if _, excluded := req.ExcludedIDs[c.ID]; excluded {
			continue
		}
		if _, blocked := req.BlockedChannelIDs[c.ChannelID]; blocked {
			continue
		}
		if req.LevelStrict && c.Level != req.Level {
			continue
		}
		out = append(out, c)
	}
	return out
}

// matchesTopic reports whether the candidate's topic or one of its tags
// equals the normalized key.
func matchesTopic(c Candidate, want string) bool {
	if normalizeKey(c.Topic) == want {
		return true
	}
	for _, tag := range c.Tags {
		if normalizeKey(tag) == want {
			return true
		}
	}
	return false
}
