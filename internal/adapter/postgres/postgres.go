// Package postgres opens the PostgreSQL-backed record store.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"weightlog/internal/adapter/sqlstore"

	_ "github.com/lib/pq"
)

// DB wraps a *sql.DB and implements domain.RecordStore.
type DB struct {
	*sqlstore.Store
	sql *sql.DB
}

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	if err := migrate(ctx, s); err != nil {
		_ = s.Close()
		return nil, err
	}
	return &DB{Store: sqlstore.New(s, sqlstore.Postgres), sql: s}, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS profiles (id TEXT PRIMARY KEY, name TEXT NOT NULL, gender TEXT NOT NULL DEFAULT '', age INTEGER NOT NULL, height INTEGER NOT NULL, start_weight DOUBLE PRECISION NOT NULL, target_weight DOUBLE PRECISION NOT NULL, updated_at TIMESTAMPTZ NOT NULL);",
		"CREATE TABLE IF NOT EXISTS weight_entries (id TEXT PRIMARY KEY, weight DOUBLE PRECISION NOT NULL CHECK(weight > 0), date TIMESTAMPTZ NOT NULL, diff DOUBLE PRECISION NOT NULL DEFAULT 0, trend TEXT NOT NULL DEFAULT 'flat' CHECK(trend IN ('up','down','flat')));",
		"CREATE INDEX IF NOT EXISTS idx_weight_entries_date ON weight_entries(date);",
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
