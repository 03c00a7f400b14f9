// Package sqlite persists the last good payload per cache key. Long
// lived views read their snapshot at startup and render immediately
// while fresh data loads; every later refresh overwrites the row.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no snapshot exists for a key.
var ErrNotFound = errors.New("snapshot not found")

// schemaVersion is stamped into PRAGMA user_version. Bump on any schema
// change; older files are dropped and recreated, snapshots are cache.
const schemaVersion = 1

// SnapshotStore is a key/payload table in a local sqlite file.
type SnapshotStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the snapshot database at path.
func Open(path string, logger *slog.Logger) (*SnapshotStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create snapshot directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}
	// One writer at a time keeps modernc's file locking simple.
	db.SetMaxOpenConns(1)

	s := &SnapshotStore{db: db, logger: logger}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SnapshotStore) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version != 0 && version != schemaVersion {
		// Snapshots are a cache: an unknown schema is dropped, not migrated.
		s.logger.Warn("snapshot schema version mismatch, resetting",
			"found", version, "want", schemaVersion)
		if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS snapshots"); err != nil {
			return fmt.Errorf("drop stale snapshot table: %w", err)
		}
	}

	const create = `
CREATE TABLE IF NOT EXISTS snapshots (
	key        TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`
	if _, err := s.db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create snapshot table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("stamp schema version: %w", err)
	}
	return nil
}

// Put stores or replaces the payload for key.
func (s *SnapshotStore) Put(ctx context.Context, key string, payload []byte) error {
	const upsert = `
INSERT INTO snapshots (key, payload, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, upsert, key, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("put snapshot %q: %w", key, err)
	}
	return nil
}

// Get returns the payload and write time for key, or ErrNotFound.
func (s *SnapshotStore) Get(ctx context.Context, key string) ([]byte, time.Time, error) {
	var payload []byte
	var updatedAt time.Time
	err := s.db.QueryRowContext(ctx,
		"SELECT payload, updated_at FROM snapshots WHERE key = ?", key,
	).Scan(&payload, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("get snapshot %q: %w", key, err)
	}
	return payload, updatedAt, nil
}

// Delete removes the snapshot for key. Missing keys are not an error.
func (s *SnapshotStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete snapshot %q: %w", key, err)
	}
	return nil
}

// Purge removes every snapshot. Used by "courtside reset".
func (s *SnapshotStore) Purge(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM snapshots"); err != nil {
		return fmt.Errorf("purge snapshots: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}
