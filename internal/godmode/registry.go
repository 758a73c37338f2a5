// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package godmode

import (
	"context"
)

// PlayerStatusRecord marks one protected player.
type PlayerStatusRecord struct {
	UserID string `json:"UserId"`
	Name   string `json:"Name"`
}

// Registry is the authoritative set of protected players. A player is
// protected exactly when it has a record.
//
// Registry is not safe for concurrent use; it lives on the host tick
// goroutine.
type Registry struct {
	gods    map[string]PlayerStatusRecord
	gateway *Gateway
}

// NewRegistry creates an empty registry persisted through gateway.
func NewRegistry(gateway *Gateway) *Registry {
	return &Registry{
		gods:    make(map[string]PlayerStatusRecord),
		gateway: gateway,
	}
}

// IsProtected reports whether id has protected status.
func (r *Registry) IsProtected(id string) bool {
	_, ok := r.gods[id]
	return ok
}

// Activate records id as protected, replacing any previous record.
func (r *Registry) Activate(id, displayName string) {
	r.gods[id] = PlayerStatusRecord{UserID: id, Name: displayName}
}

// Deactivate removes id's record, if any.
func (r *Registry) Deactivate(id string) {
	delete(r.gods, id)
}

// List returns a copy of all records in no particular order.
func (r *Registry) List() []PlayerStatusRecord {
	out := make([]PlayerStatusRecord, 0, len(r.gods))
	for _, rec := range r.gods {
		out = append(out, rec)
	}
	return out
}

// Count returns the number of protected players.
func (r *Registry) Count() int {
	return len(r.gods)
}

// Load replaces the registry contents with the persisted snapshot.
// Records without a user id are dropped.
func (r *Registry) Load(ctx context.Context) error {
	records, err := r.gateway.Load(ctx)
	if err != nil {
		return err
	}
	gods := make(map[string]PlayerStatusRecord, len(records))
	for _, rec := range records {
		if rec.UserID == "" {
			continue
		}
		gods[rec.UserID] = rec
	}
	r.gods = gods
	return nil
}

// Save writes the registry to the persisted snapshot.
func (r *Registry) Save(ctx context.Context) error {
	return r.gateway.Save(ctx, r.List())
}
