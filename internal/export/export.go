// SPDX-License-Identifier: MIT

// Package export persists the latest built pack per topic so "up next"
// requests can be answered byte-identically across daemon restarts. Packs
// are written as JSON plus an .m3u rendition for media players.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio/v2"

	xglog "github.com/ManuGH/pendel/internal/log"
	platformfs "github.com/ManuGH/pendel/internal/platform/fs"
)

// ErrNoSnapshot is returned when a topic has never had a pack persisted.
var ErrNoSnapshot = errors.New("export: no snapshot for topic")

// Item is one pack entry with the presentation fields a player needs.
type Item struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	ChannelName string `json:"channelName"`
	DurationSec int    `json:"durationSec"`
	URL         string `json:"url,omitempty"`
}

// Snapshot is the persisted form of one built pack.
type Snapshot struct {
	Topic     string    `json:"topic"`
	Strategy  string    `json:"strategy,omitempty"`
	Items     []Item    `json:"items"`
	TotalSec  int       `json:"totalSec"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store writes and reads pack snapshots under <dataDir>/packs.
type Store struct {
	dir string
}

// NewStore creates the packs directory and returns a store rooted there.
func NewStore(dataDir string) (*Store, error) {
	dir := filepath.Join(dataDir, "packs")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("export: create packs dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Write persists the snapshot atomically, replacing any previous pack for
// the topic. Both renditions go through fsync-before-rename so a power cut
// can never leave a torn file.
func (s *Store) Write(ctx context.Context, snap Snapshot) error {
	slug, err := topicSlug(snap.Topic)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("export: encode snapshot: %w", err)
	}
	if err := s.writeAtomic(ctx, slug+".json", data); err != nil {
		return err
	}
	return s.writeAtomic(ctx, slug+".m3u", renderM3U(snap))
}

// Latest returns the stored snapshot for a topic, or ErrNoSnapshot.
func (s *Store) Latest(topic string) (Snapshot, error) {
	slug, err := topicSlug(topic)
	if err != nil {
		return Snapshot{}, err
	}
	path, err := platformfs.ConfineRelPath(s.dir, slug+".json")
	if err != nil {
		return Snapshot{}, fmt.Errorf("export: resolve snapshot path: %w", err)
	}
	if err := platformfs.IsRegularFile(path); err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, ErrNoSnapshot
		}
		return Snapshot{}, fmt.Errorf("export: stat snapshot: %w", err)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path confined above
	if err != nil {
		return Snapshot{}, fmt.Errorf("export: read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("export: decode snapshot: %w", err)
	}
	return snap, nil
}

func (s *Store) writeAtomic(ctx context.Context, name string, data []byte) error {
	logger := xglog.FromContext(ctx)

	path, err := platformfs.ConfineRelPath(s.dir, name)
	if err != nil {
		return fmt.Errorf("export: resolve snapshot path: %w", err)
	}

	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("export: create pending file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			logger.Debug().Err(err).Str("file", name).Msg("cleanup pending snapshot")
		}
	}()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("export: write snapshot: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("export: replace snapshot: %w", err)
	}
	return nil
}

// topicSlug maps a topic onto a flat filename. Anything outside [a-z0-9-_]
// becomes '-', so path separators and traversal sequences cannot survive.
func topicSlug(topic string) (string, error) {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, strings.TrimSpace(topic))
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "", fmt.Errorf("export: topic %q yields no usable filename", topic)
	}
	return slug, nil
}

func renderM3U(snap Snapshot) []byte {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	for _, it := range snap.Items {
		if it.URL == "" {
			continue
		}
		name := it.Title
		if it.ChannelName != "" {
			name = it.ChannelName + " - " + it.Title
		}
		fmt.Fprintf(&b, "#EXTINF:%d,%s\n%s\n", it.DurationSec, name, it.URL)
	}
	return []byte(b.String())
}
