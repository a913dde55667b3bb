// SPDX-License-Identifier: MIT

// Package history persists which videos the commuter has already watched,
// per topic. Handlers read a snapshot per request and hand it to the
// selection engine; nothing in here is consulted during packing itself.
package history

import (
	"context"
	"fmt"
	"strings"
)

// Store is the watch-history surface. Topics are case-insensitive; all
// implementations normalize before storing or querying.
type Store interface {
	// MarkWatched records one consumed video. Marking the same video twice
	// is an update, not a duplicate.
	MarkWatched(ctx context.Context, topic, videoID string, durationSec int) error

	// Watched returns the set of video IDs consumed for a topic. Unknown
	// topics yield an empty set.
	Watched(ctx context.Context, topic string) (map[string]struct{}, error)

	// MasteryScore is the number of distinct videos consumed for a topic.
	MasteryScore(ctx context.Context, topic string) (int, error)

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// Open creates a history store for the configured backend. An empty backend
// falls back to memory so a bare config still boots.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSqliteStore(dir)
	case "badger":
		return NewBadgerStore(dir)
	default:
		return nil, fmt.Errorf("unknown history backend: %s (supported: memory, sqlite, badger)", backend)
	}
}

func normalizeTopic(topic string) string {
	return strings.ToLower(strings.TrimSpace(topic))
}
