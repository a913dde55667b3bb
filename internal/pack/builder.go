// SPDX-License-Identifier: MIT

package pack

import "sort"

// Build selects a subset of candidates that fits the duration window.
//
// Phases, in priority order:
//  1. Perfect single-item fit: one candidate inside [MinSec, MaxSec] wins
//     outright. Among several, the longest wins, ties by smallest id.
//  2. Greedy accumulation over the pool sorted ascending by (duration, id),
//     adding while the running total stays at or under MaxSec.
//  3. Local improvement: swap a selected item for a strictly longer
//     unselected one whenever the total still fits, restarting after each
//     swap. The total strictly grows and is bounded by MaxSec, so the pass
//     reaches a fixed point.
//
// The result is byte-identical for identical input. TotalSec never exceeds
// MaxSec; falling short of MinSec is reported via UnderFilled rather than
// padded over the ceiling.
func Build(cands []Candidate, w Window) (Result, error) {
	if err := w.Validate(); err != nil {
		return Result{}, err
	}

	// Filtering has already dropped malformed entries and duplicates on the
	// normal path; kept here so Build stands alone.
	pool := dedupByID(cands)

	if c, ok := perfectFit(pool, w); ok {
		return Result{Items: []Item{itemOf(c)}, TotalSec: c.DurationSec}, nil
	}

	return packFrom(sortByDurationAsc(pool), w), nil
}

// BuildOrdered is Build with pool-order tie-breaking: candidates of equal
// duration keep their relative input order instead of being ordered by id,
// and a perfect fit among equally long candidates goes to the earliest pool
// position. A caller that pre-orders the pool with a seeded Shuffler gets
// deterministic variety: the same pool order always yields the same pack,
// while a different order can resolve equal-duration ties differently.
func BuildOrdered(cands []Candidate, w Window) (Result, error) {
	if err := w.Validate(); err != nil {
		return Result{}, err
	}

	pool := dedupByID(cands)

	if c, ok := perfectFitOrdered(pool, w); ok {
		return Result{Items: []Item{itemOf(c)}, TotalSec: c.DurationSec}, nil
	}

	return packFrom(sortByDurationKeepOrder(pool), w), nil
}

// packFrom runs the greedy and improvement phases over an already ordered
// pool and assembles the result.
func packFrom(ordered []Candidate, w Window) Result {
	sel, total := fill(ordered, w.MaxSec)
	sel, total = improve(sel, ordered, total, w.MaxSec)

	return Result{
		Items:       itemsOf(sel),
		TotalSec:    total,
		UnderFilled: total < w.MinSec,
	}
}

// perfectFit returns the longest single candidate inside the window, ties
// resolved by smallest id.
func perfectFit(pool []Candidate, w Window) (Candidate, bool) {
	var best Candidate
	found := false
	for _, c := range pool {
		if !w.contains(c.DurationSec) {
			continue
		}
		if !found || c.DurationSec > best.DurationSec ||
			(c.DurationSec == best.DurationSec && c.ID < best.ID) {
			best = c
			found = true
		}
	}
	return best, found
}

// perfectFitOrdered returns the longest single candidate inside the window,
// ties resolved by earliest pool position.
func perfectFitOrdered(pool []Candidate, w Window) (Candidate, bool) {
	var best Candidate
	found := false
	for _, c := range pool {
		if !w.contains(c.DurationSec) {
			continue
		}
		if !found || c.DurationSec > best.DurationSec {
			best = c
			found = true
		}
	}
	return best, found
}

// fill greedily accumulates candidates in the given order while the running
// total stays at or under ceiling. The input order is the whole strategy;
// every packing heuristic in this package goes through here.
func fill(ordered []Candidate, ceiling int) ([]Candidate, int) {
	sel := make([]Candidate, 0, len(ordered))
	total := 0
	for _, c := range ordered {
		if total+c.DurationSec <= ceiling {
			sel = append(sel, c)
			total += c.DurationSec
		}
	}
	return sel, total
}

// improve runs the local-improvement pass: scan the selection in order, the
// pool in ascending (duration, id) order, apply the first swap to a strictly
// longer unselected candidate that keeps the total within ceiling, then
// restart. Returns at the fixed point.
func improve(sel, pool []Candidate, total, ceiling int) ([]Candidate, int) {
	for {
		selected := make(map[string]struct{}, len(sel))
		for _, c := range sel {
			selected[c.ID] = struct{}{}
		}

		swapped := false
	scan:
		for i, cur := range sel {
			for _, cand := range pool {
				if _, taken := selected[cand.ID]; taken {
					continue
				}
				if cand.DurationSec <= cur.DurationSec {
					continue
				}
				if total-cur.DurationSec+cand.DurationSec > ceiling {
					continue
				}
				total += cand.DurationSec - cur.DurationSec
				sel[i] = cand
				swapped = true
				break scan
			}
		}
		if !swapped {
			return sel, total
		}
	}
}

// dedupByID keeps the first occurrence of each id in input order and drops
// entries with non-positive durations.
func dedupByID(cands []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(cands))
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if c.DurationSec <= 0 {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

func sortByDurationAsc(pool []Candidate) []Candidate {
	out := append([]Candidate(nil), pool...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DurationSec != out[j].DurationSec {
			return out[i].DurationSec < out[j].DurationSec
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// sortByDurationKeepOrder orders ascending by duration only; the stable sort
// keeps the pool order for equal durations.
func sortByDurationKeepOrder(pool []Candidate) []Candidate {
	out := append([]Candidate(nil), pool...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DurationSec < out[j].DurationSec
	})
	return out
}

func sortByDurationDesc(pool []Candidate) []Candidate {
	out := append([]Candidate(nil), pool...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DurationSec != out[j].DurationSec {
			return out[i].DurationSec > out[j].DurationSec
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func sortByRecencyDesc(pool []Candidate) []Candidate {
	out := append([]Candidate(nil), pool...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].PublishedAt.After(out[j].PublishedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
