// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

// Package plugin provides the in-process plugin runtime: plugin lifecycle,
// per-plugin hook subscriptions, and dispatch of host events to plugins.
package plugin

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Trux13/oxide-plugins/internal/access"
	"github.com/Trux13/oxide-plugins/internal/command"
	"github.com/Trux13/oxide-plugins/internal/host"
	"github.com/Trux13/oxide-plugins/internal/lang"
	"github.com/Trux13/oxide-plugins/internal/store"
)

// Plugin is a behaviour module loaded into the host.
//
// Loaded and Unload run on the host tick goroutine, as do all hooks.
type Plugin interface {
	Info() Info
	// Loaded initializes the plugin. Returning an error coded
	// UNSUPPORTED_HOST aborts the whole load.
	Loaded(ctx context.Context, env *Env) error
	// Unload flushes state before the plugin is removed.
	Unload(ctx context.Context) error
}

// Hook names a host event a plugin can subscribe to.
type Hook string

// Hooks known to the runtime.
const (
	HookPlayerJoined        Hook = "OnPlayerJoined"
	HookEntityTakeDamage    Hook = "OnEntityTakeDamage"
	HookCanLootPlayer       Hook = "CanLootPlayer"
	HookLootPlayer          Hook = "OnLootPlayer"
	HookRunPlayerMetabolism Hook = "OnRunPlayerMetabolism"
	HookCanBeWounded        Hook = "CanBeWounded"
	HookServerSave          Hook = "OnServerSave"
)

// PlayerJoinedHook is implemented by plugins that handle player joins.
type PlayerJoinedHook interface {
	OnPlayerJoined(p *host.Player)
}

// EntityTakeDamageHook is implemented by plugins that may modify incoming hits.
type EntityTakeDamageHook interface {
	OnEntityTakeDamage(victim host.Entity, info *host.HitInfo)
}

// CanLootPlayerHook is implemented by plugins that gate loot attempts.
type CanLootPlayerHook interface {
	CanLootPlayer(target, looter *host.Player) host.Decision
}

// LootPlayerHook is implemented by plugins that observe opened loot sessions.
type LootPlayerHook interface {
	OnLootPlayer(looter, target *host.Player)
}

// RunPlayerMetabolismHook is implemented by plugins that may skip vitals decay.
type RunPlayerMetabolismHook interface {
	OnRunPlayerMetabolism(p *host.Player) host.Decision
}

// CanBeWoundedHook is implemented by plugins that gate the wounded state.
type CanBeWoundedHook interface {
	CanBeWounded(p *host.Player) host.Decision
}

// ServerSaveHook is implemented by plugins that flush on server save.
type ServerSaveHook interface {
	OnServerSave(ctx context.Context)
}

// implementedHooks returns the hooks p has methods for.
func implementedHooks(p Plugin) map[Hook]bool {
	hooks := make(map[Hook]bool)
	if _, ok := p.(PlayerJoinedHook); ok {
		hooks[HookPlayerJoined] = true
	}
	if _, ok := p.(EntityTakeDamageHook); ok {
		hooks[HookEntityTakeDamage] = true
	}
	if _, ok := p.(CanLootPlayerHook); ok {
		hooks[HookCanLootPlayer] = true
	}
	if _, ok := p.(LootPlayerHook); ok {
		hooks[HookLootPlayer] = true
	}
	if _, ok := p.(RunPlayerMetabolismHook); ok {
		hooks[HookRunPlayerMetabolism] = true
	}
	if _, ok := p.(CanBeWoundedHook); ok {
		hooks[HookCanBeWounded] = true
	}
	if _, ok := p.(ServerSaveHook); ok {
		hooks[HookServerSave] = true
	}
	return hooks
}

// SettingsSource decodes a plugin's settings section.
type SettingsSource interface {
	// Decode overlays the settings for plugin onto v. v keeps its values for
	// keys the source does not set.
	Decode(plugin string, v any) error
}

// NoSettings is a SettingsSource that leaves every value at its default.
type NoSettings struct{}

// Decode implements SettingsSource.
func (NoSettings) Decode(string, any) error { return nil }

// Env is what a plugin receives on load.
type Env struct {
	Host        *host.Server
	Data        store.DataStore
	Permissions *access.Permissions
	Commands    *command.Registry
	Lang        *lang.Catalog
	Settings    SettingsSource
	Metrics     prometheus.Registerer
	Logger      *slog.Logger
	// Hooks is the plugin's own subscription set.
	Hooks *Subscriptions
}
