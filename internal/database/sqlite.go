package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// OpenSQLite opens (creating if needed) the SQLite database at path and
// applies the schema.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// - journal_mode=WAL: readers do not block the writer
	// - busy_timeout=5000: wait on lock instead of failing immediately
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?"
	} else {
		dsn += "&"
	}
	dsn += "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// One writer at a time; this also keeps a :memory: database alive on a
	// single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	if err := MigrateSQLite(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// MigrateSQLite applies the idempotent SQLite schema.
func MigrateSQLite(ctx context.Context, db *sql.DB) error {
	for _, stmt := range statements(sqliteSchema) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply sqlite schema: %w", err)
		}
	}
	return nil
}
