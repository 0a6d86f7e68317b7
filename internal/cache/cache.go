// Package cache provides a SQLite-backed result cache so watch mode can skip
// files whose content and language are unchanged since the last generation.
//
// The key is the source path; an entry stores the sha256 of the file content
// together with the resolved language name, so a forced-language change
// invalidates as reliably as an edit does.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ContentHash returns the hex sha256 of source content.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Store persists per-file generation results.
// Use ":memory:" for an in-memory database, or a file path for persistence.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates (or opens) the cache database and ensures its schema.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS results (
		source TEXT PRIMARY KEY,
		content_hash TEXT NOT NULL,
		language TEXT NOT NULL,
		destination TEXT NOT NULL,
		generated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_generated_at ON results(generated_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// UpToDate reports whether the stored entry for source matches the given
// content hash and language. A miss (no entry) is simply not up to date.
func (s *Store) UpToDate(ctx context.Context, source, contentHash, language string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var storedHash, storedLang string
	err := s.db.QueryRowContext(ctx,
		"SELECT content_hash, language FROM results WHERE source = ?", source,
	).Scan(&storedHash, &storedLang)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query result: %w", err)
	}

	return storedHash == contentHash && storedLang == language, nil
}

// Record stores (or replaces) the generation result for source.
func (s *Store) Record(ctx context.Context, source, contentHash, language, destination string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO results (source, content_hash, language, destination, generated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(source) DO UPDATE SET
		   content_hash = excluded.content_hash,
		   language = excluded.language,
		   destination = excluded.destination,
		   generated_at = excluded.generated_at`,
		source, contentHash, language, destination, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	return nil
}

// Forget drops the entry for source, forcing regeneration on next sight.
func (s *Store) Forget(ctx context.Context, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM results WHERE source = ?", source); err != nil {
		return fmt.Errorf("forget result: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
