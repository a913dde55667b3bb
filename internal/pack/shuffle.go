// SPDX-License-Identifier: MIT

package pack

import (
	"hash/fnv"
	"math/rand"
)

// Shuffler is a deterministic pseudo-random source keyed by an explicit seed
// string. It exists so variety features (suggestion rotation, wizard vibe)
// stay reproducible: the same seed always yields the same permutation, and
// nothing in the engine ever reaches for ambient global randomness.
type Shuffler struct {
	rng *rand.Rand
}

// NewShuffler derives a seeded source from the given string.
func NewShuffler(seed string) *Shuffler {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	// #nosec G404 -- reproducible variety, not security
	return &Shuffler{rng: rand.New(rand.NewSource(int64(h.Sum64())))}
}

// Shuffle permutes n elements via the provided swap function.
func (s *Shuffler) Shuffle(n int, swap func(i, j int)) {
	s.rng.Shuffle(n, swap)
}

// Candidates returns a shuffled copy of the pool; the input is untouched.
func (s *Shuffler) Candidates(pool []Candidate) []Candidate {
	out := append([]Candidate(nil), pool...)
	s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Strings returns a shuffled copy of the given slice; the input is untouched.
func (s *Shuffler) Strings(values []string) []string {
	out := append([]string(nil), values...)
	s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
