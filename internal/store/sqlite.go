// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"

	"github.com/samber/oops"
	// Register the pure-Go sqlite driver.
	_ "modernc.org/sqlite"

	"github.com/Trux13/oxide-plugins/internal/xdg"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS plugin_data (
	name       TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteFileName is the database file created inside the store directory.
const SQLiteFileName = "oxide.db"

// SQLiteStore keeps plugin objects in a single sqlite database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) dir/oxide.db and ensures the schema exists.
func OpenSQLiteStore(ctx context.Context, dir string) (*SQLiteStore, error) {
	if dir == "" {
		return nil, oops.Code("INVALID_STORE_CONFIG").Errorf("sqlite store requires a directory")
	}
	if err := xdg.EnsureDir(dir); err != nil {
		return nil, oops.Code("STORE_OPEN_FAILED").With("dir", dir).Wrap(err)
	}

	path := filepath.Join(filepath.Clean(dir), SQLiteFileName)
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, oops.Code("STORE_OPEN_FAILED").With("driver", DriverSQLite).With("path", path).Wrap(err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close() //nolint:errcheck // ping error takes precedence
		return nil, oops.Code("STORE_OPEN_FAILED").With("driver", DriverSQLite).With("path", path).Wrap(err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close() //nolint:errcheck // schema error takes precedence
		return nil, oops.Code("STORE_OPEN_FAILED").With("operation", "create schema").Wrap(err)
	}
	return &SQLiteStore{db: db}, nil
}

// ReadObject implements DataStore.
func (s *SQLiteStore) ReadObject(ctx context.Context, name string, v any) error {
	if err := validateName(name); err != nil {
		return err
	}

	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM plugin_data WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return oops.Code("READ_FAILED").With("name", name).Wrap(err)
	}
	return decode(name, []byte(data), v)
}

// WriteObject implements DataStore.
func (s *SQLiteStore) WriteObject(ctx context.Context, name string, v any) error {
	if err := validateName(name); err != nil {
		return err
	}
	data, err := encode(name, v)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO plugin_data (name, data, updated_at) VALUES (?, ?, unixepoch())
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		name, string(data))
	if err != nil {
		return oops.Code("WRITE_FAILED").With("name", name).Wrap(err)
	}
	return nil
}

// Close implements DataStore.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
