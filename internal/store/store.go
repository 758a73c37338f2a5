// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

// Package store provides the durable key-value data store plugins persist
// their state to. Each plugin reads and writes whole JSON objects by name.
package store

//go:generate go tool mockgen -source=store.go -destination=storetest/mock_datastore.go -package=storetest

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/samber/oops"
)

// ErrNotFound is returned when no object with the requested name exists.
var ErrNotFound = errors.New("data object not found")

// DataStore persists named JSON objects.
type DataStore interface {
	// ReadObject decodes the object stored under name into v.
	// Returns ErrNotFound when nothing has been written under name.
	ReadObject(ctx context.Context, name string, v any) error

	// WriteObject replaces the object stored under name with v.
	WriteObject(ctx context.Context, name string, v any) error

	// Close releases the backend's resources.
	Close() error
}

// Supported store drivers.
const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config selects and configures a store backend.
type Config struct {
	// Driver is one of file, memory, redis, postgres or sqlite.
	Driver string `koanf:"driver" json:"driver" jsonschema:"enum=file,enum=memory,enum=redis,enum=postgres,enum=sqlite"`
	// Dir holds data files for the file and sqlite drivers.
	Dir string `koanf:"dir" json:"dir,omitempty"`
	// URL is the connection string for the redis and postgres drivers.
	URL string `koanf:"url" json:"url,omitempty" env:"OXIDE_STORE_URL"`
	// KeyPrefix namespaces redis keys.
	KeyPrefix string `koanf:"key_prefix" json:"key_prefix,omitempty"`
}

// DefaultConfig returns a file store rooted at dir.
func DefaultConfig(dir string) Config {
	return Config{
		Driver:    DriverFile,
		Dir:       dir,
		KeyPrefix: defaultKeyPrefix,
	}
}

// Open creates the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg Config) (DataStore, error) {
	switch cfg.Driver {
	case DriverFile, "":
		return NewFileStore(cfg.Dir)
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverRedis:
		return NewRedisStore(ctx, cfg.URL, cfg.KeyPrefix)
	case DriverPostgres:
		return OpenPostgresStore(ctx, cfg.URL)
	case DriverSQLite:
		return OpenSQLiteStore(ctx, cfg.Dir)
	default:
		return nil, oops.Code("UNKNOWN_STORE_DRIVER").
			With("driver", cfg.Driver).
			Errorf("unknown store driver %q", cfg.Driver)
	}
}

// validateName rejects names that cannot be used as file names or keys.
func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return oops.Code("INVALID_OBJECT_NAME").Errorf("object name is required")
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return oops.Code("INVALID_OBJECT_NAME").
			With("name", name).
			Errorf("object name %q must not contain path separators", name)
	}
	return nil
}

func encode(name string, v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, oops.Code("ENCODE_FAILED").With("name", name).Wrap(err)
	}
	return data, nil
}

func decode(name string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return oops.Code("DECODE_FAILED").With("name", name).Wrap(err)
	}
	return nil
}
