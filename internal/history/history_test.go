// SPDX-License-Identifier: MIT

package history

import (
	"context"
	"strings"
	"testing"
)

func openAll(t *testing.T) map[string]Store {
	t.Helper()
	stores := map[string]Store{
		"memory": NewMemoryStore(),
	}
	sq, err := NewSqliteStore(t.TempDir())
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	stores["sqlite"] = sq

	bg, err := NewBadgerStore(t.TempDir())
	if err != nil {
		t.Fatalf("badger: %v", err)
	}
	stores["badger"] = bg
	return stores
}

func TestStoreConformance(t *testing.T) {
	ctx := context.Background()
	for name, store := range openAll(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			watched, err := store.Watched(ctx, "golang")
			if err != nil {
				t.Fatalf("Watched(empty): %v", err)
			}
			if len(watched) != 0 {
				t.Errorf("fresh store: got %d watched, want 0", len(watched))
			}
			score, err := store.MasteryScore(ctx, "golang")
			if err != nil || score != 0 {
				t.Errorf("fresh store: score = %d, err = %v", score, err)
			}

			for _, id := range []string{"v1", "v2", "v3"} {
				if err := store.MarkWatched(ctx, "golang", id, 300); err != nil {
					t.Fatalf("MarkWatched(%s): %v", id, err)
				}
			}
			// Same video again must not inflate the score.
			if err := store.MarkWatched(ctx, "golang", "v2", 360); err != nil {
				t.Fatalf("MarkWatched(dup): %v", err)
			}

			score, err = store.MasteryScore(ctx, "golang")
			if err != nil {
				t.Fatalf("MasteryScore: %v", err)
			}
			if score != 3 {
				t.Errorf("score = %d, want 3", score)
			}

			watched, err = store.Watched(ctx, "GoLang")
			if err != nil {
				t.Fatalf("Watched (case variant): %v", err)
			}
			if len(watched) != 3 {
				t.Errorf("topic lookup must be case-insensitive: got %d, want 3", len(watched))
			}
			if _, ok := watched["v2"]; !ok {
				t.Error("v2 missing from watched set")
			}

			other, err := store.Watched(ctx, "rust")
			if err != nil {
				t.Fatalf("Watched(other topic): %v", err)
			}
			if len(other) != 0 {
				t.Errorf("topics must be isolated: got %d entries for rust", len(other))
			}

			// Callers own the returned set; mutating it must not leak back.
			watched["ghost"] = struct{}{}
			again, err := store.Watched(ctx, "golang")
			if err != nil {
				t.Fatalf("Watched (re-read): %v", err)
			}
			if _, ok := again["ghost"]; ok {
				t.Error("returned set is aliased to internal state")
			}

			if err := store.Ping(ctx); err != nil {
				t.Errorf("Ping on open store: %v", err)
			}
		})
	}
}

func TestSqlitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewSqliteStore(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.MarkWatched(ctx, "golang", "v1", 300); err != nil {
		t.Fatalf("MarkWatched: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := NewSqliteStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	score, err := s2.MasteryScore(ctx, "golang")
	if err != nil {
		t.Fatalf("MasteryScore: %v", err)
	}
	if score != 1 {
		t.Errorf("score after reopen = %d, want 1", score)
	}
}

func TestBadgerPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewBadgerStore(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.MarkWatched(ctx, "golang", "v1", 300); err != nil {
		t.Fatalf("MarkWatched: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Ping(ctx); err == nil {
		t.Error("Ping after Close must fail")
	}

	s2, err := NewBadgerStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	watched, err := s2.Watched(ctx, "golang")
	if err != nil {
		t.Fatalf("Watched: %v", err)
	}
	if _, ok := watched["v1"]; !ok {
		t.Error("v1 missing after reopen")
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	store, err := Open("memory", "")
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Errorf("got %T, want *MemoryStore", store)
	}

	// Empty backend boots a bare config.
	store, err = Open("", "")
	if err != nil {
		t.Fatalf("empty backend: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Errorf("got %T, want *MemoryStore for empty backend", store)
	}

	store, err = Open("sqlite", t.TempDir())
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if _, ok := store.(*SqliteStore); !ok {
		t.Errorf("got %T, want *SqliteStore", store)
	}
	_ = store.Close()

	store, err = Open("badger", t.TempDir())
	if err != nil {
		t.Fatalf("badger: %v", err)
	}
	if _, ok := store.(*BadgerStore); !ok {
		t.Errorf("got %T, want *BadgerStore", store)
	}
	_ = store.Close()
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	store, err := Open("postgres", "")
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if store != nil {
		t.Fatalf("expected nil store, got %T", store)
	}
	if !strings.Contains(err.Error(), "unknown history backend") {
		t.Errorf("error = %q, want mention of unknown backend", err)
	}
}
