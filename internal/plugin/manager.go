// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package plugin

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"

	"github.com/Trux13/oxide-plugins/internal/access"
	"github.com/Trux13/oxide-plugins/internal/command"
	"github.com/Trux13/oxide-plugins/internal/host"
	"github.com/Trux13/oxide-plugins/internal/lang"
	"github.com/Trux13/oxide-plugins/internal/store"
	"github.com/Trux13/oxide-plugins/pkg/errutil"
)

// loadedPlugin is a plugin that completed Loaded.
type loadedPlugin struct {
	plugin Plugin
	info   Info
	subs   *Subscriptions
}

// Manager owns plugin lifecycle and delivers host events to plugins.
// It implements host.Hooks; install it with host.Server.SetHooks.
type Manager struct {
	host        *host.Server
	data        store.DataStore
	permissions *access.Permissions
	commands    *command.Registry
	lang        *lang.Catalog
	settings    SettingsSource
	registerer  prometheus.Registerer
	logger      *slog.Logger
	metrics     *managerMetrics

	loaded []*loadedPlugin // load order
	mu     sync.RWMutex
}

var _ host.Hooks = (*Manager)(nil)

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithSettings sets the source plugins read their settings from.
func WithSettings(src SettingsSource) ManagerOption {
	return func(m *Manager) {
		m.settings = src
	}
}

// WithMetricsRegistry registers runtime metrics with reg and hands reg to
// plugins for their own collectors.
func WithMetricsRegistry(reg prometheus.Registerer) ManagerOption {
	return func(m *Manager) {
		m.registerer = reg
	}
}

// WithLogger sets the base logger. Plugins receive a child logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a plugin manager over the shared host services.
func NewManager(srv *host.Server, data store.DataStore, perms *access.Permissions,
	commands *command.Registry, catalog *lang.Catalog, opts ...ManagerOption,
) *Manager {
	m := &Manager{
		host:        srv,
		data:        data,
		permissions: perms,
		commands:    commands,
		lang:        catalog,
		settings:    NoSettings{},
		registerer:  prometheus.NewRegistry(),
		logger:      slog.Default(),
		metrics:     newManagerMetrics(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.metrics.register(m.registerer)
	return m
}

// Load initializes p and starts delivering its hooks.
// On failure every command and permission p registered is removed again.
func (m *Manager) Load(ctx context.Context, p Plugin) error {
	info := p.Info()
	if err := info.Validate(); err != nil {
		return err
	}

	m.mu.RLock()
	_, exists := m.find(info.Name)
	m.mu.RUnlock()
	if exists {
		return oops.Code(CodeAlreadyLoaded).
			With("plugin", info.Name).
			Errorf("plugin %s is already loaded", info.Name)
	}

	lp := &loadedPlugin{
		plugin: p,
		info:   info,
		subs:   newSubscriptions(info.Name, implementedHooks(p)),
	}
	env := &Env{
		Host:        m.host,
		Data:        m.data,
		Permissions: m.permissions,
		Commands:    m.commands,
		Lang:        m.lang,
		Settings:    m.settings,
		Metrics:     m.registerer,
		Logger:      m.logger.With("plugin", info.Name),
		Hooks:       lp.subs,
	}

	if err := p.Loaded(ctx, env); err != nil {
		m.release(info.Name)
		return oops.Code(CodeLoadFailed).
			With("plugin", info.Name).
			Wrapf(err, "load plugin %s", info.Name)
	}

	m.mu.Lock()
	m.loaded = append(m.loaded, lp)
	m.metrics.loaded.Set(float64(len(m.loaded)))
	m.mu.Unlock()

	m.logger.Info("loaded plugin",
		"plugin", info.Name,
		"version", info.Version.String(),
		"author", info.Author,
		"hooks", lp.subs.Active())
	return nil
}

// LoadAll loads plugins in order.
//
// A plugin that fails to load is logged and skipped, except for an
// UNSUPPORTED_HOST failure, which stops loading and is returned.
func (m *Manager) LoadAll(ctx context.Context, plugins ...Plugin) error {
	for _, p := range plugins {
		err := m.Load(ctx, p)
		if err == nil {
			continue
		}
		if IsUnsupportedHost(err) {
			return err
		}
		errutil.LogError(m.logger, "failed to load plugin", err, "plugin", p.Info().Name)
	}
	return nil
}

// Unload flushes and removes a loaded plugin.
func (m *Manager) Unload(ctx context.Context, name string) error {
	m.mu.Lock()
	idx, ok := m.find(name)
	if !ok {
		m.mu.Unlock()
		return oops.Code(CodeNotLoaded).
			With("plugin", name).
			Errorf("plugin %s is not loaded", name)
	}
	lp := m.loaded[idx]
	m.loaded = append(m.loaded[:idx], m.loaded[idx+1:]...)
	m.metrics.loaded.Set(float64(len(m.loaded)))
	m.mu.Unlock()

	err := lp.plugin.Unload(ctx)
	m.release(name)
	if err != nil {
		return oops.Code(CodeUnloadFailed).
			With("plugin", name).
			Wrapf(err, "unload plugin %s", name)
	}

	m.logger.Info("unloaded plugin", "plugin", name)
	return nil
}

// UnloadAll unloads every plugin in reverse load order and joins the errors.
func (m *Manager) UnloadAll(ctx context.Context) error {
	names := m.ListPlugins()
	var errs []error
	for i := len(names) - 1; i >= 0; i-- {
		if err := m.Unload(ctx, names[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ListPlugins returns names of loaded plugins in load order.
func (m *Manager) ListPlugins() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.loaded))
	for _, lp := range m.loaded {
		names = append(names, lp.info.Name)
	}
	return names
}

// Info returns the info of a loaded plugin.
func (m *Manager) Info(name string) (Info, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx, ok := m.find(name)
	if !ok {
		return Info{}, false
	}
	return m.loaded[idx].info, true
}

// find returns the index of the named plugin. Callers hold mu.
func (m *Manager) find(name string) (int, bool) {
	for i, lp := range m.loaded {
		if lp.info.Name == name {
			return i, true
		}
	}
	return -1, false
}

func (m *Manager) release(name string) {
	if m.commands != nil {
		m.commands.UnregisterSource(name)
	}
	if m.permissions != nil {
		m.permissions.UnregisterPermissions(name)
	}
}

// subscribers returns the plugins currently subscribed to hook, in load
// order. The lock is released before hooks run so plugins may change their
// subscriptions from inside a hook.
func (m *Manager) subscribers(hook Hook) []*loadedPlugin {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*loadedPlugin
	for _, lp := range m.loaded {
		if lp.subs.IsSubscribed(hook) {
			out = append(out, lp)
		}
	}
	return out
}

func (m *Manager) called(lp *loadedPlugin, hook Hook) {
	m.metrics.hookCalls.WithLabelValues(lp.info.Name, string(hook)).Inc()
}

// decide merges decisions: every subscriber runs, the first non-Continue
// decision wins.
func (m *Manager) decide(hook Hook, call func(Plugin) host.Decision) host.Decision {
	result := host.Continue
	var owner string
	for _, lp := range m.subscribers(hook) {
		m.called(lp, hook)
		d := call(lp.plugin)
		if d == host.Continue {
			continue
		}
		if result == host.Continue {
			result, owner = d, lp.info.Name
			continue
		}
		if d != result {
			m.logger.Warn("conflicting hook decisions",
				"hook", string(hook),
				"plugin", lp.info.Name,
				"decision", d.String(),
				"winner", owner,
				"winning_decision", result.String())
		}
	}
	return result
}

// OnPlayerJoined implements host.Hooks.
func (m *Manager) OnPlayerJoined(p *host.Player) {
	for _, lp := range m.subscribers(HookPlayerJoined) {
		m.called(lp, HookPlayerJoined)
		lp.plugin.(PlayerJoinedHook).OnPlayerJoined(p)
	}
}

// OnEntityTakeDamage implements host.Hooks.
func (m *Manager) OnEntityTakeDamage(victim host.Entity, info *host.HitInfo) {
	for _, lp := range m.subscribers(HookEntityTakeDamage) {
		m.called(lp, HookEntityTakeDamage)
		lp.plugin.(EntityTakeDamageHook).OnEntityTakeDamage(victim, info)
	}
}

// CanLootPlayer implements host.Hooks.
func (m *Manager) CanLootPlayer(target, looter *host.Player) host.Decision {
	return m.decide(HookCanLootPlayer, func(p Plugin) host.Decision {
		return p.(CanLootPlayerHook).CanLootPlayer(target, looter)
	})
}

// OnLootPlayer implements host.Hooks.
func (m *Manager) OnLootPlayer(looter, target *host.Player) {
	for _, lp := range m.subscribers(HookLootPlayer) {
		m.called(lp, HookLootPlayer)
		lp.plugin.(LootPlayerHook).OnLootPlayer(looter, target)
	}
}

// OnRunPlayerMetabolism implements host.Hooks.
func (m *Manager) OnRunPlayerMetabolism(p *host.Player) host.Decision {
	return m.decide(HookRunPlayerMetabolism, func(pl Plugin) host.Decision {
		return pl.(RunPlayerMetabolismHook).OnRunPlayerMetabolism(p)
	})
}

// CanBeWounded implements host.Hooks.
func (m *Manager) CanBeWounded(p *host.Player) host.Decision {
	return m.decide(HookCanBeWounded, func(pl Plugin) host.Decision {
		return pl.(CanBeWoundedHook).CanBeWounded(p)
	})
}

// OnServerSave implements host.Hooks.
func (m *Manager) OnServerSave(ctx context.Context) {
	for _, lp := range m.subscribers(HookServerSave) {
		m.called(lp, HookServerSave)
		lp.plugin.(ServerSaveHook).OnServerSave(ctx)
	}
}
