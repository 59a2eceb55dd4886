// Package sqlite opens an embedded SQLite record store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"weightlog/internal/adapter/sqlstore"

	_ "modernc.org/sqlite"
)

// DB wraps a *sql.DB and implements domain.RecordStore.
type DB struct {
	*sqlstore.Store
	sql *sql.DB
}

// Open opens (creating if needed) the database file at path and applies the schema.
// Time columns are stored as unix milliseconds.
func Open(path string) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path)
	}
	dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	s, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and writes ordered.
	s.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate(ctx, s); err != nil {
		_ = s.Close()
		return nil, err
	}
	return &DB{Store: sqlstore.New(s, sqlstore.SQLite), sql: s}, nil
}

// Close closes the SQLite handle.
func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS profiles (id TEXT PRIMARY KEY, name TEXT NOT NULL, gender TEXT NOT NULL DEFAULT '', age INTEGER NOT NULL, height INTEGER NOT NULL, start_weight REAL NOT NULL, target_weight REAL NOT NULL, updated_at INTEGER NOT NULL);",
		"CREATE TABLE IF NOT EXISTS weight_entries (id TEXT PRIMARY KEY, weight REAL NOT NULL CHECK(weight > 0), date INTEGER NOT NULL, diff REAL NOT NULL DEFAULT 0, trend TEXT NOT NULL DEFAULT 'flat' CHECK(trend IN ('up','down','flat')));",
		"CREATE INDEX IF NOT EXISTS idx_weight_entries_date ON weight_entries(date);",
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
