// SPDX-License-Identifier: MIT

package history

import (
	"context"
	"sync"
)

// MemoryStore keeps watch history in a map. Contents vanish on restart,
// which is acceptable for the default single-user setup.
type MemoryStore struct {
	mu     sync.RWMutex
	topics map[string]map[string]int // topic -> video id -> duration
}

// NewMemoryStore creates an empty in-memory history store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		topics: make(map[string]map[string]int),
	}
}

func (s *MemoryStore) MarkWatched(_ context.Context, topic, videoID string, durationSec int) error {
	key := normalizeTopic(topic)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.topics[key] == nil {
		s.topics[key] = make(map[string]int)
	}
	s.topics[key][videoID] = durationSec
	return nil
}

func (s *MemoryStore) Watched(_ context.Context, topic string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Copy so callers never see later writes.
	out := make(map[string]struct{})
	for id := range s.topics[normalizeTopic(topic)] {
		out[id] = struct{}{}
	}
	return out, nil
}

func (s *MemoryStore) MasteryScore(_ context.Context, topic string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.topics[normalizeTopic(topic)]), nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.topics = nil
	s.mu.Unlock()
	return nil
}

var _ Store = (*MemoryStore)(nil)
