// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package host

import "context"

// Decision is a hook's verdict on an event the host is about to apply.
type Decision uint8

// Hook decisions. Any decision other than Continue overrides the host's
// default outcome for the event.
const (
	// Continue leaves the default behaviour in place.
	Continue Decision = iota
	// Allow forces the event through.
	Allow
	// Deny cancels the default behaviour.
	Deny
)

// String returns the lower-case decision name.
func (d Decision) String() string {
	switch d {
	case Continue:
		return "continue"
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	default:
		return "unknown"
	}
}

// Hooks receives host events before the host applies their default outcome.
// All methods are called on the tick goroutine.
type Hooks interface {
	OnPlayerJoined(p *Player)
	OnEntityTakeDamage(victim Entity, info *HitInfo)
	CanLootPlayer(target, looter *Player) Decision
	OnLootPlayer(looter, target *Player)
	OnRunPlayerMetabolism(p *Player) Decision
	CanBeWounded(p *Player) Decision
	OnServerSave(ctx context.Context)
}

// NopHooks ignores every event.
type NopHooks struct{}

// OnPlayerJoined implements Hooks.
func (NopHooks) OnPlayerJoined(*Player) {}

// OnEntityTakeDamage implements Hooks.
func (NopHooks) OnEntityTakeDamage(Entity, *HitInfo) {}

// CanLootPlayer implements Hooks.
func (NopHooks) CanLootPlayer(_, _ *Player) Decision { return Continue }

// OnLootPlayer implements Hooks.
func (NopHooks) OnLootPlayer(_, _ *Player) {}

// OnRunPlayerMetabolism implements Hooks.
func (NopHooks) OnRunPlayerMetabolism(*Player) Decision { return Continue }

// CanBeWounded implements Hooks.
func (NopHooks) CanBeWounded(*Player) Decision { return Continue }

// OnServerSave implements Hooks.
func (NopHooks) OnServerSave(context.Context) {}
