// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

// Package cache provides a SQLite-backed store for per-file extraction
// results, keyed by content hash, so a run over mostly-unchanged source
// trees can skip re-parsing and re-extracting files whose bytes haven't
// moved. The cache is opaque to the core pipeline: it stores and returns
// raw payload bytes, and makes no assumptions about what they decode to.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Cache stores one payload per source path, together with the content hash
// it was computed from, in a SQLite database file.
type Cache struct {
	db *sql.DB
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS cache_entries (
    path         TEXT PRIMARY KEY,
    content_hash TEXT NOT NULL,
    adapter      TEXT NOT NULL,
    payload      BLOB NOT NULL,
    updated_at   TEXT NOT NULL
);
`

// Open opens or creates the cache database at dbPath, creating parent
// directories as needed.
func Open(dbPath string) (*Cache, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cache: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("cache: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("cache: set pragma: %w", err)
		}
	}

	if _, err := db.ExecContext(context.Background(), schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: create schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// HashContent returns the stable content hash used as a cache-invalidation
// key: two calls over identical bytes always produce the same hash, and
// any byte difference changes it.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached payload for path if its stored content hash
// matches contentHash. A hash mismatch (the file changed since the cache
// entry was written) or a missing entry both report ok=false, so callers
// don't need to distinguish "never cached" from "stale" — either way the
// caller must re-extract.
func (c *Cache) Get(ctx context.Context, path, contentHash string) (payload []byte, ok bool, err error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT content_hash, payload FROM cache_entries WHERE path = ?`, path)

	var storedHash string
	if err := row.Scan(&storedHash, &payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache: get %s: %w", path, err)
	}
	if storedHash != contentHash {
		return nil, false, nil
	}
	return payload, true, nil
}

// Put stores (or replaces) the payload for path, along with the content
// hash of the source bytes it was extracted from and the adapter that
// produced it.
func (c *Cache) Put(ctx context.Context, path, contentHash, adapter string, payload []byte) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO cache_entries (path, content_hash, adapter, payload, updated_at)
		 VALUES (?, ?, ?, ?, datetime('now'))
		 ON CONFLICT(path) DO UPDATE SET
		   content_hash = excluded.content_hash,
		   adapter      = excluded.adapter,
		   payload      = excluded.payload,
		   updated_at   = excluded.updated_at`,
		path, contentHash, adapter, payload)
	if err != nil {
		return fmt.Errorf("cache: put %s: %w", path, err)
	}
	return nil
}

// Invalidate removes the cache entry for path, if any.
func (c *Cache) Invalidate(ctx context.Context, path string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE path = ?`, path); err != nil {
		return fmt.Errorf("cache: invalidate %s: %w", path, err)
	}
	return nil
}

// Paths returns every path currently tracked by the cache, for
// staleness sweeps (dropping entries for files removed from the source
// tree since the last run).
func (c *Cache) Paths(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT path FROM cache_entries`)
	if err != nil {
		return nil, fmt.Errorf("cache: list paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("cache: scan path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
