// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package host

import (
	"io"
	"log/slog"
	"strings"
)

// PlayerFlags is a bit set of transient player states.
type PlayerFlags uint32

// Player flags the host and plugins read and write.
const (
	// FlagReceivingSnapshot is set while a joining client is still being sent
	// its initial world snapshot.
	FlagReceivingSnapshot PlayerFlags = 1 << iota
	// FlagNoSprint blocks sprinting. The host sets it when endurance runs out.
	FlagNoSprint
	// FlagWounded marks a downed player.
	FlagWounded
	// FlagDead marks a player killed without entering the wounded state.
	FlagDead
)

// Player is a connected (or recently disconnected) player.
//
// Player is not safe for concurrent use. It must only be touched from the
// host tick goroutine; other goroutines go through Server.Do.
type Player struct {
	id          string
	displayName string
	locale      string
	flags       PlayerFlags
	connected   bool
	vitals      *Vitals
	lootTarget  *Player
	out         io.Writer
	clientSyncs int
}

// NewPlayer creates a connected player with default vitals.
// Replies are written to out; a nil out discards them.
func NewPlayer(id, displayName string, out io.Writer) *Player {
	return &Player{
		id:          id,
		displayName: displayName,
		connected:   true,
		vitals:      NewVitals(),
		out:         out,
	}
}

// ID returns the stable player identity.
func (p *Player) ID() string {
	return p.id
}

// EntityID implements Entity.
func (p *Player) EntityID() string {
	return p.id
}

// DisplayName returns the name shown to other players.
func (p *Player) DisplayName() string {
	return p.displayName
}

// SetDisplayName replaces the name shown to other players.
func (p *Player) SetDisplayName(name string) {
	p.displayName = name
}

// Locale returns the player's preferred message locale, or "" for the default.
func (p *Player) Locale() string {
	return p.locale
}

// SetLocale sets the player's preferred message locale.
func (p *Player) SetLocale(locale string) {
	p.locale = strings.TrimSpace(locale)
}

// HasFlag reports whether every bit in f is set.
func (p *Player) HasFlag(f PlayerFlags) bool {
	return p.flags&f == f
}

// SetFlag sets or clears the bits in f.
func (p *Player) SetFlag(f PlayerFlags, on bool) {
	if on {
		p.flags |= f
		return
	}
	p.flags &^= f
}

// IsConnected reports whether the player's client is still attached.
func (p *Player) IsConnected() bool {
	return p.connected
}

// Vitals returns the player's simulated vital attributes.
func (p *Player) Vitals() *Vitals {
	return p.vitals
}

// SyncVitals pushes the current vitals to the player's client.
func (p *Player) SyncVitals() {
	p.clientSyncs++
}

// VitalsSyncCount returns how many times vitals were pushed to the client.
func (p *Player) VitalsSyncCount() int {
	return p.clientSyncs
}

// LootTarget returns the player being looted, or nil.
func (p *Player) LootTarget() *Player {
	return p.lootTarget
}

// IsLooting reports whether the player has an open loot session.
func (p *Player) IsLooting() bool {
	return p.lootTarget != nil
}

// StartLooting opens a loot session on target.
func (p *Player) StartLooting(target *Player) {
	p.lootTarget = target
}

// EndLooting closes the player's loot session, if any.
func (p *Player) EndLooting() {
	p.lootTarget = nil
}

// Reply sends a line of text to the player's client.
func (p *Player) Reply(message string) {
	if p.out == nil || !p.connected {
		return
	}
	if _, err := io.WriteString(p.out, message+"\n"); err != nil {
		slog.Debug("failed to write player reply",
			"player_id", p.id,
			"error", err)
	}
}
