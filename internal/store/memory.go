// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory DataStore. Contents are lost on exit.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string][]byte),
	}
}

// ReadObject implements DataStore.
func (s *MemoryStore) ReadObject(_ context.Context, name string, v any) error {
	if err := validateName(name); err != nil {
		return err
	}

	s.mu.RLock()
	data, ok := s.objects[name]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	return decode(name, data, v)
}

// WriteObject implements DataStore.
func (s *MemoryStore) WriteObject(_ context.Context, name string, v any) error {
	if err := validateName(name); err != nil {
		return err
	}
	data, err := encode(name, v)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.objects[name] = data
	s.mu.Unlock()
	return nil
}

// Raw returns a copy of the stored bytes for name. Used by tests.
func (s *MemoryStore) Raw(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[name]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true
}

// Close implements DataStore.
func (s *MemoryStore) Close() error {
	return nil
}
