// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package store

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
)

// poolIface is the subset of pgxpool.Pool the postgres store needs.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore keeps plugin objects as JSONB rows in the plugin_data table.
type PostgresStore struct {
	pool poolIface
}

// NewPostgresStore wraps an existing pool. The schema must already exist.
func NewPostgresStore(pool poolIface) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// OpenPostgresStore applies pending migrations and connects to databaseURL.
func OpenPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, oops.Code("INVALID_STORE_CONFIG").Errorf("postgres store requires a url")
	}

	migrator, err := NewMigrator(databaseURL)
	if err != nil {
		return nil, err
	}
	upErr := migrator.Up()
	closeErr := migrator.Close()
	if upErr != nil {
		return nil, upErr
	}
	if closeErr != nil {
		return nil, closeErr
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.Code("STORE_OPEN_FAILED").With("driver", DriverPostgres).Wrap(err)
	}
	return &PostgresStore{pool: pool}, nil
}

// ReadObject implements DataStore. A missing table is treated like a
// missing row so reads before the first migration report ErrNotFound.
func (s *PostgresStore) ReadObject(ctx context.Context, name string, v any) error {
	if err := validateName(name); err != nil {
		return err
	}

	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM plugin_data WHERE name = $1`, name).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) || isUndefinedTable(err) {
		return ErrNotFound
	}
	if err != nil {
		return oops.Code("READ_FAILED").With("operation", "read plugin data").With("name", name).Wrap(err)
	}
	return decode(name, data, v)
}

// WriteObject implements DataStore.
func (s *PostgresStore) WriteObject(ctx context.Context, name string, v any) error {
	if err := validateName(name); err != nil {
		return err
	}
	data, err := encode(name, v)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO plugin_data (name, data, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		name, string(data))
	if err != nil {
		return oops.Code("WRITE_FAILED").With("operation", "write plugin data").With("name", name).Wrap(err)
	}
	return nil
}

// Close implements DataStore.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable
}
