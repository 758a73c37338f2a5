// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package host

// Entity is anything that can take or deal damage.
type Entity interface {
	EntityID() string
}

// DamageType classifies a component of a hit.
type DamageType string

// Damage types the host produces.
const (
	DamageGeneric DamageType = "generic"
	DamageBullet  DamageType = "bullet"
	DamageSlash   DamageType = "slash"
	DamageBlunt   DamageType = "blunt"
	DamageStab    DamageType = "stab"
	DamageHeat    DamageType = "heat"
	DamageFall    DamageType = "fall"
)

// DamageTypeList maps each damage type to its amount.
type DamageTypeList map[DamageType]float64

// Total returns the sum of all damage components.
func (l DamageTypeList) Total() float64 {
	var total float64
	for _, amount := range l {
		total += amount
	}
	return total
}

// Vector3 is a point in world space.
type Vector3 struct {
	X, Y, Z float64
}

// HitInfo describes a single in-flight hit. Hooks may modify it before the
// host applies it.
type HitInfo struct {
	// Initiator is the attacking entity, or nil for environmental damage.
	Initiator   Entity
	DamageTypes DamageTypeList
	HitMaterial uint32
	PointStart  Vector3
}

// InitiatorPlayer returns the initiator as a player, or nil when the hit was
// not dealt by a player.
func (h *HitInfo) InitiatorPlayer() *Player {
	if h == nil {
		return nil
	}
	p, _ := h.Initiator.(*Player)
	return p
}
