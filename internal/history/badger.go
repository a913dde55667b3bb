// SPDX-License-Identifier: MIT

package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore keeps watch history in an embedded LSM store. Keys are
// "watched/<topic>/<id>"; values carry the duration and timestamp as JSON.
type BadgerStore struct {
	db *badger.DB
}

type watchEnvelope struct {
	DurationSec int       `json:"durationSec"`
	WatchedAt   time.Time `json:"watchedAt"`
}

// NewBadgerStore opens (or creates) the badger database under dir.
func NewBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(filepath.Join(dir, "history")).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("history: open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func watchKey(topic, videoID string) []byte {
	return []byte("watched/" + normalizeTopic(topic) + "/" + videoID)
}

func topicPrefix(topic string) []byte {
	return []byte("watched/" + normalizeTopic(topic) + "/")
}

func (s *BadgerStore) MarkWatched(_ context.Context, topic, videoID string, durationSec int) error {
	buf, err := json.Marshal(watchEnvelope{DurationSec: durationSec, WatchedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(watchKey(topic, videoID), buf)
	})
}

func (s *BadgerStore) Watched(ctx context.Context, topic string) (map[string]struct{}, error) {
	prefix := topicPrefix(topic)
	out := make(map[string]struct{})
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			key := string(it.Item().Key())
			out[strings.TrimPrefix(key, string(prefix))] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BadgerStore) MasteryScore(ctx context.Context, topic string) (int, error) {
	watched, err := s.Watched(ctx, topic)
	if err != nil {
		return 0, err
	}
	return len(watched), nil
}

func (s *BadgerStore) Ping(context.Context) error {
	// A no-op read transaction fails once the database is closed.
	err := s.db.View(func(*badger.Txn) error { return nil })
	if errors.Is(err, badger.ErrDBClosed) {
		return fmt.Errorf("history: badger closed: %w", err)
	}
	return err
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

var _ Store = (*BadgerStore)(nil)
