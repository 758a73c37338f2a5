// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/samber/oops"

	"github.com/Trux13/oxide-plugins/internal/xdg"
)

// FileStore keeps one JSON file per object in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, oops.Code("INVALID_STORE_CONFIG").Errorf("file store requires a directory")
	}
	if err := xdg.EnsureDir(dir); err != nil {
		return nil, oops.Code("STORE_OPEN_FAILED").With("dir", dir).Wrap(err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// ReadObject implements DataStore.
func (s *FileStore) ReadObject(_ context.Context, name string, v any) error {
	if err := validateName(name); err != nil {
		return err
	}

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return oops.Code("READ_FAILED").With("name", name).With("path", s.path(name)).Wrap(err)
	}
	return decode(name, data, v)
}

// WriteObject implements DataStore. The file is replaced atomically.
func (s *FileStore) WriteObject(_ context.Context, name string, v any) error {
	if err := validateName(name); err != nil {
		return err
	}
	data, err := encode(name, v)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return oops.Code("WRITE_FAILED").With("name", name).Wrap(err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()        //nolint:errcheck // write error takes precedence
		_ = os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup
		return oops.Code("WRITE_FAILED").With("name", name).Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup
		return oops.Code("WRITE_FAILED").With("name", name).Wrap(err)
	}
	if err := os.Rename(tmpPath, s.path(name)); err != nil {
		_ = os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup
		return oops.Code("WRITE_FAILED").With("name", name).Wrap(err)
	}
	return nil
}

// Close implements DataStore.
func (s *FileStore) Close() error {
	return nil
}
