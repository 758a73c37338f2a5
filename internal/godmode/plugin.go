// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

// Package godmode lets players with permission become invulnerable.
//
// Protected players take no damage, cannot be looted, keep full vitals and
// carry a name tag, each as configured by Settings. All state lives on the
// host tick goroutine and is flushed to the data store on server save and
// unload.
package godmode

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"

	"github.com/Trux13/oxide-plugins/internal/host"
	"github.com/Trux13/oxide-plugins/internal/lang"
	"github.com/Trux13/oxide-plugins/internal/plugin"
	"github.com/Trux13/oxide-plugins/pkg/errutil"
)

// Name is the plugin name. It is also the message namespace and data
// object name.
const Name = "Godmode"

// SupportedGame is the only host game the plugin runs on.
const SupportedGame = "rust"

var info = plugin.MustInfo(Name, "Wulf/lukespragg", "3.1.0",
	"Allows players with permission to become invincible/invulnerable")

// Plugin is the godmode plugin.
type Plugin struct {
	now func() time.Time

	settings    Settings
	registry    *Registry
	applier     *Applier
	throttler   *Throttler
	interceptor *Interceptor
	toggler     *Toggler
	metrics     *Metrics
	registerer  prometheus.Registerer
	msg         messenger
	logger      *slog.Logger
}

var (
	_ plugin.Plugin                  = (*Plugin)(nil)
	_ plugin.PlayerJoinedHook        = (*Plugin)(nil)
	_ plugin.EntityTakeDamageHook    = (*Plugin)(nil)
	_ plugin.CanLootPlayerHook       = (*Plugin)(nil)
	_ plugin.LootPlayerHook          = (*Plugin)(nil)
	_ plugin.RunPlayerMetabolismHook = (*Plugin)(nil)
	_ plugin.CanBeWoundedHook        = (*Plugin)(nil)
	_ plugin.ServerSaveHook          = (*Plugin)(nil)
)

// Option configures the plugin.
type Option func(*Plugin)

// WithClock replaces the clock used by the notification throttler.
func WithClock(now func() time.Time) Option {
	return func(p *Plugin) {
		p.now = now
	}
}

// New creates an unloaded plugin.
func New(opts ...Option) *Plugin {
	p := &Plugin{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Info implements plugin.Plugin.
func (p *Plugin) Info() plugin.Info {
	return info
}

// Settings returns the settings in effect after load.
func (p *Plugin) Settings() Settings {
	return p.settings
}

// Registry returns the status registry.
func (p *Plugin) Registry() *Registry {
	return p.registry
}

// Toggler returns the toggle operations.
func (p *Plugin) Toggler() *Toggler {
	return p.toggler
}

// Loaded implements plugin.Plugin.
func (p *Plugin) Loaded(ctx context.Context, env *plugin.Env) error {
	if game := env.Host.Game(); game != SupportedGame {
		return ErrUnsupportedHost(game)
	}
	p.logger = env.Logger

	p.settings = DefaultSettings()
	if err := env.Settings.Decode(Name, &p.settings); err != nil {
		return oops.In("godmode").Wrapf(err, "decode settings")
	}

	if err := env.Lang.RegisterDefaults(Name, lang.BaseLocale, DefaultMessages); err != nil {
		return err
	}

	p.metrics = NewMetrics()
	p.registry = NewRegistry(NewGateway(env.Data))
	if err := p.registry.Load(ctx); err != nil {
		return err
	}

	if err := env.Permissions.RegisterPermission(PermissionAllowed, Name); err != nil {
		return err
	}

	p.msg = messenger{catalog: env.Lang}
	p.applier = NewApplier(p.settings)
	p.throttler = NewThrottler(env.Lang, p.metrics, p.now)
	p.interceptor = NewInterceptor(InterceptorDeps{
		Settings:  p.settings,
		Registry:  p.registry,
		Applier:   p.applier,
		Throttler: p.throttler,
		Scheduler: env.Host,
		Hooks:     env.Hooks,
		Metrics:   p.metrics,
		Catalog:   env.Lang,
		Logger:    p.logger,
	})
	p.toggler = NewToggler(p.registry, p.applier, p.interceptor, env.Host, env.Permissions, env.Lang, p.metrics)

	if err := p.registerCommands(env.Commands); err != nil {
		return err
	}
	if err := p.metrics.Register(env.Metrics); err != nil {
		return oops.In("godmode").Wrapf(err, "register metrics")
	}
	p.registerer = env.Metrics
	p.interceptor.SyncInterest()

	p.logger.Info("godmode ready",
		"protected_players", p.registry.Count(),
		"can_be_hurt", p.settings.CanBeHurt,
		"infinite_run", p.settings.InfiniteRun)
	return nil
}

// Unload implements plugin.Plugin.
func (p *Plugin) Unload(ctx context.Context) error {
	if p.interceptor != nil {
		p.interceptor.Stop()
	}
	if p.registerer != nil {
		p.metrics.Unregister(p.registerer)
		p.registerer = nil
	}
	if p.registry == nil {
		return nil
	}
	return p.registry.Save(ctx)
}

// OnServerSave implements plugin.ServerSaveHook.
func (p *Plugin) OnServerSave(ctx context.Context) {
	if err := p.registry.Save(ctx); err != nil {
		errutil.LogError(p.logger, "failed to save protected players", err)
		return
	}
	p.logger.Debug("saved protected players", "count", p.registry.Count())
}

// OnPlayerJoined implements plugin.PlayerJoinedHook.
func (p *Plugin) OnPlayerJoined(pl *host.Player) {
	p.interceptor.OnPlayerJoined(pl)
}

// OnEntityTakeDamage implements plugin.EntityTakeDamageHook.
func (p *Plugin) OnEntityTakeDamage(victim host.Entity, hit *host.HitInfo) {
	p.interceptor.OnIncomingDamage(victim, hit)
}

// CanLootPlayer implements plugin.CanLootPlayerHook.
func (p *Plugin) CanLootPlayer(target, looter *host.Player) host.Decision {
	return p.interceptor.OnLootAttempt(target, looter)
}

// OnLootPlayer implements plugin.LootPlayerHook.
func (p *Plugin) OnLootPlayer(looter, target *host.Player) {
	p.interceptor.OnLootSessionObserved(looter, target)
}

// OnRunPlayerMetabolism implements plugin.RunPlayerMetabolismHook.
func (p *Plugin) OnRunPlayerMetabolism(pl *host.Player) host.Decision {
	return p.interceptor.OnVitalsRecalculated(pl)
}

// CanBeWounded implements plugin.CanBeWoundedHook.
func (p *Plugin) CanBeWounded(pl *host.Player) host.Decision {
	return p.interceptor.OnWoundCheck(pl)
}
