// SPDX-License-Identifier: MIT

package pack

import "time"

// Strategy names. Declaration order doubles as the final tie-break: when two
// heuristics produce equivalent selections, the earlier one wins.
const (
	StrategyLongestFirst  = "longest-first"
	StrategyShortestFirst = "shortest-first"
	StrategyCreatorAware  = "creator-aware"
	StrategyRecencyFirst  = "recency-first"
)

// OverbookPct is how far, in percent, a recommendation may exceed the
// caller's remaining time. The resulting ceiling is a hard cap.
const OverbookPct = 3

type strategy struct {
	name string
	run  func(pool []Candidate, ceiling int) ([]Candidate, int)
}

var strategies = []strategy{
	{StrategyLongestFirst, runLongestFirst},
	{StrategyShortestFirst, runShortestFirst},
	{StrategyCreatorAware, runCreatorAware},
	{StrategyRecencyFirst, runRecencyFirst},
}

// Recommend runs every packing heuristic against the same pool and picks the
// winner via the ordered tie-break chain: highest total, most distinct
// channels, most recent publication, declaration order.
//
// The pool is deduplicated by id first, keeping the first occurrence in
// input order. The ceiling is remainingSec plus the overbook allowance;
// no heuristic may exceed it.
func Recommend(cands []Candidate, remainingSec int) Selection {
	pool := dedupByID(cands)
	ceiling := remainingSec + remainingSec*OverbookPct/100

	best := runStrategy(strategies[0], pool, ceiling)
	for _, s := range strategies[1:] {
		if r := runStrategy(s, pool, ceiling); beats(r, best) {
			best = r
		}
	}
	return Selection{
		Items:    itemsOf(best.selected),
		TotalSec: best.total,
		Strategy: best.name,
	}
}

type strategyResult struct {
	name     string
	selected []Candidate
	total    int
}

func runStrategy(s strategy, pool []Candidate, ceiling int) strategyResult {
	sel, total := s.run(pool, ceiling)
	return strategyResult{name: s.name, selected: sel, total: total}
}

// beats reports whether a strictly improves on b at some tie-break level.
// Equality at every level keeps b, the earlier-declared strategy.
func beats(a, b strategyResult) bool {
	if a.total != b.total {
		return a.total > b.total
	}
	if ca, cb := distinctChannels(a.selected), distinctChannels(b.selected); ca != cb {
		return ca > cb
	}
	if la, lb := latestPublished(a.selected), latestPublished(b.selected); !la.Equal(lb) {
		return la.After(lb)
	}
	return false
}

func distinctChannels(sel []Candidate) int {
	channels := make(map[string]struct{}, len(sel))
	for _, c := range sel {
		channels[c.ChannelID] = struct{}{}
	}
	return len(channels)
}

func latestPublished(sel []Candidate) time.Time {
	var latest time.Time
	for _, c := range sel {
		if c.PublishedAt.After(latest) {
			latest = c.PublishedAt
		}
	}
	return latest
}

func runLongestFirst(pool []Candidate, ceiling int) ([]Candidate, int) {
	return fill(sortByDurationDesc(pool), ceiling)
}

func runShortestFirst(pool []Candidate, ceiling int) ([]Candidate, int) {
	return fill(sortByDurationAsc(pool), ceiling)
}

func runRecencyFirst(pool []Candidate, ceiling int) ([]Candidate, int) {
	return fill(sortByRecencyDesc(pool), ceiling)
}

// runCreatorAware prefers the longest fitting candidate from a channel not
// yet represented in the selection, falling back to plain duration order once
// every fitting candidate comes from an already-represented channel.
func runCreatorAware(pool []Candidate, ceiling int) ([]Candidate, int) {
	ordered := sortByDurationDesc(pool)
	used := make([]bool, len(ordered))
	represented := make(map[string]struct{}, len(ordered))

	sel := make([]Candidate, 0, len(ordered))
	total := 0
	for {
		pick := -1
		for i, c := range ordered {
			if used[i] || total+c.DurationSec > ceiling {
				continue
			}
			if _, seen := represented[c.ChannelID]; seen {
				continue
			}
			pick = i
			break
		}
		if pick < 0 {
			for i, c := range ordered {
				if used[i] || total+c.DurationSec > ceiling {
					continue
				}
				pick = i
				break
			}
		}
		if pick < 0 {
			return sel, total
		}
		used[pick] = true
		represented[ordered[pick].ChannelID] = struct{}{}
		sel = append(sel, ordered[pick])
		total += ordered[pick].DurationSec
	}
}
