// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package godmode

import (
	"context"
	"errors"
	"sort"

	"github.com/samber/oops"

	"github.com/Trux13/oxide-plugins/internal/store"
)

// DataObjectName is the data store object holding the registry snapshot.
const DataObjectName = Name

// snapshot is the persisted form of the registry.
type snapshot struct {
	Gods []PlayerStatusRecord `json:"Gods"`
}

// Gateway reads and writes registry snapshots.
type Gateway struct {
	data store.DataStore
}

// NewGateway creates a gateway over data.
func NewGateway(data store.DataStore) *Gateway {
	return &Gateway{data: data}
}

// Load returns the persisted records. A missing snapshot is empty.
func (g *Gateway) Load(ctx context.Context) ([]PlayerStatusRecord, error) {
	var snap snapshot
	if err := g.data.ReadObject(ctx, DataObjectName, &snap); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, oops.In("godmode").
			With("object", DataObjectName).
			Wrapf(err, "load protected players")
	}
	return snap.Gods, nil
}

// Save replaces the persisted snapshot with records.
func (g *Gateway) Save(ctx context.Context, records []PlayerStatusRecord) error {
	gods := make([]PlayerStatusRecord, len(records))
	copy(gods, records)
	sort.Slice(gods, func(i, j int) bool { return gods[i].UserID < gods[j].UserID })

	if err := g.data.WriteObject(ctx, DataObjectName, snapshot{Gods: gods}); err != nil {
		return oops.In("godmode").
			With("object", DataObjectName).
			With("count", len(gods)).
			Wrapf(err, "save protected players")
	}
	return nil
}
