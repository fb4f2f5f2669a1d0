// Package catalog records which captures have been opened, backed by a
// small SQLite database. The shell treats catalog failures as
// diagnostics, never as reasons to stop a replay.
package catalog

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Catalog is the recent-captures store.
type Catalog struct {
	db *sql.DB
}

// Entry is one recorded capture.
type Entry struct {
	ID         string
	Path       string
	Bytes      int64
	Bookmarks  int
	OpenedAt   time.Time
	LastOffset int64
}

// Open creates or opens the catalog database at path and applies the
// schema. Safe to call repeatedly on the same file.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect catalog: %w", err)
	}

	// SQLite allows one writer; keep a single connection to avoid
	// SQLITE_BUSY from the pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply catalog schema: %w", err)
	}

	return &Catalog{db: db}, nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// RecordOpen upserts a capture: a re-opened path keeps its row (and id)
// but refreshes size, bookmark count, and timestamp.
func (c *Catalog) RecordOpen(path string, bytes int64, bookmarks int) error {
	_, err := c.db.Exec(`
		INSERT INTO captures (id, path, bytes, bookmarks, opened_at, last_offset)
		VALUES (?, ?, ?, ?, ?, 0)
		ON CONFLICT(path) DO UPDATE SET
			bytes = excluded.bytes,
			bookmarks = excluded.bookmarks,
			opened_at = excluded.opened_at`,
		uuid.NewString(), path, bytes, bookmarks,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record capture %s: %w", path, err)
	}
	return nil
}

// SetLastOffset remembers how far a capture was replayed.
func (c *Catalog) SetLastOffset(path string, offset int64) error {
	_, err := c.db.Exec(
		`UPDATE captures SET last_offset = ? WHERE path = ?`, offset, path)
	if err != nil {
		return fmt.Errorf("update offset for %s: %w", path, err)
	}
	return nil
}

// Recent returns up to limit entries, most recently opened first.
func (c *Catalog) Recent(limit int) ([]Entry, error) {
	rows, err := c.db.Query(`
		SELECT id, path, bytes, bookmarks, opened_at, last_offset
		FROM captures
		ORDER BY opened_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent captures: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var openedAt string
		if err := rows.Scan(&e.ID, &e.Path, &e.Bytes, &e.Bookmarks, &openedAt, &e.LastOffset); err != nil {
			return nil, fmt.Errorf("scan capture row: %w", err)
		}
		e.OpenedAt, err = time.Parse(time.RFC3339Nano, openedAt)
		if err != nil {
			return nil, fmt.Errorf("parse opened_at %q: %w", openedAt, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
