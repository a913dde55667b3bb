// SPDX-License-Identifier: MIT

package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure Go driver
)

const (
	schemaVersion = 1
	dbFileName    = "history.sqlite"
	busyTimeout   = 5 * time.Second
)

// SqliteStore is the durable default for real deployments. WAL mode and
// busy_timeout are set through the DSN so they apply to every connection
// in the pool.
type SqliteStore struct {
	db *sql.DB
}

// NewSqliteStore opens (or creates) the history database under dir and
// migrates the schema.
func NewSqliteStore(dir string) (*SqliteStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("history: create dir: %w", err)
	}
	dbPath := filepath.Join(dir, dbFileName)
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		dbPath, busyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(1 * time.Hour)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: ping failed: %w", err)
	}

	s := &SqliteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: migration failed: %w", err)
	}
	return s, nil
}

func (s *SqliteStore) migrate() error {
	var currentVersion int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&currentVersion); err != nil {
		return err
	}
	if currentVersion >= schemaVersion {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	schema := `
	CREATE TABLE IF NOT EXISTS watch_history (
		topic TEXT NOT NULL,
		video_id TEXT NOT NULL,
		duration_sec INTEGER NOT NULL,
		watched_at TEXT NOT NULL,
		PRIMARY KEY (topic, video_id)
	);
	CREATE INDEX IF NOT EXISTS idx_watch_topic ON watch_history(topic);
	`
	if _, err := tx.Exec(schema); err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SqliteStore) MarkWatched(ctx context.Context, topic, videoID string, durationSec int) error {
	query := `
	INSERT INTO watch_history (topic, video_id, duration_sec, watched_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(topic, video_id) DO UPDATE SET
		duration_sec = excluded.duration_sec,
		watched_at = excluded.watched_at
	`
	_, err := s.db.ExecContext(ctx, query,
		normalizeTopic(topic), videoID, durationSec, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (s *SqliteStore) Watched(ctx context.Context, topic string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT video_id FROM watch_history WHERE topic = ?`, normalizeTopic(topic))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

func (s *SqliteStore) MasteryScore(ctx context.Context, topic string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM watch_history WHERE topic = ?`, normalizeTopic(topic)).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *SqliteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SqliteStore)(nil)
