// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package godmode

import (
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/Trux13/oxide-plugins/internal/host"
	"github.com/Trux13/oxide-plugins/internal/lang"
	"github.com/Trux13/oxide-plugins/internal/plugin"
)

// JoinRetryDelay is how long to wait before re-checking a player that is
// still receiving its join snapshot.
const JoinRetryDelay = 2 * time.Second

// Scheduler defers work to a later tick.
type Scheduler interface {
	NextTick(fn func())
	Once(d time.Duration, fn func()) *host.Timer
}

// HookSwitch turns hook delivery on and off.
type HookSwitch interface {
	Subscribe(hook plugin.Hook) error
	Unsubscribe(hook plugin.Hook)
	IsSubscribed(hook plugin.Hook) bool
}

// Interceptor holds the event filters that enforce protected status.
type Interceptor struct {
	settings  Settings
	registry  *Registry
	applier   *Applier
	throttler *Throttler
	scheduler Scheduler
	hooks     HookSwitch
	msg       messenger
	metrics   *Metrics
	logger    *slog.Logger
	stopped   bool
}

// InterceptorDeps are the collaborators of an Interceptor.
type InterceptorDeps struct {
	Settings  Settings
	Registry  *Registry
	Applier   *Applier
	Throttler *Throttler
	Scheduler Scheduler
	Hooks     HookSwitch
	Metrics   *Metrics
	Catalog   *lang.Catalog
	Logger    *slog.Logger
}

// NewInterceptor creates the filters.
func NewInterceptor(d InterceptorDeps) *Interceptor {
	if d.Metrics == nil {
		d.Metrics = NewMetrics()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Interceptor{
		settings:  d.Settings,
		registry:  d.Registry,
		applier:   d.Applier,
		throttler: d.Throttler,
		scheduler: d.Scheduler,
		hooks:     d.Hooks,
		msg:       messenger{catalog: d.Catalog},
		metrics:   d.Metrics,
		logger:    d.Logger,
	}
}

// Stop makes every deferred loot close and join re-sync a no-op.
func (i *Interceptor) Stop() {
	i.stopped = true
}

func (i *Interceptor) protected(p *host.Player) bool {
	return p != nil && i.registry.IsProtected(p.ID())
}

// SyncInterest subscribes the endurance filter while at least one player is
// protected and unsubscribes it otherwise.
func (i *Interceptor) SyncInterest() {
	count := i.registry.Count()
	i.metrics.Protected.Set(float64(count))
	if i.hooks == nil {
		return
	}

	subscribed := i.hooks.IsSubscribed(plugin.HookRunPlayerMetabolism)
	switch {
	case count > 0 && !subscribed:
		if err := i.hooks.Subscribe(plugin.HookRunPlayerMetabolism); err != nil {
			i.logger.Warn("failed to subscribe endurance filter", "error", err)
		}
	case count == 0 && subscribed:
		i.hooks.Unsubscribe(plugin.HookRunPlayerMetabolism)
	}
}

// neutralize turns a hit into a no-op.
func neutralize(info *host.HitInfo) {
	info.DamageTypes = host.DamageTypeList{}
	info.HitMaterial = 0
	info.PointStart = host.Vector3{}
}

// OnIncomingDamage neutralizes hits on protected victims and, when
// configured, hits dealt by protected attackers.
func (i *Interceptor) OnIncomingDamage(victim host.Entity, info *host.HitInfo) {
	if info == nil {
		return
	}
	target, ok := victim.(*host.Player)
	if !ok {
		return
	}
	attacker := info.InitiatorPlayer()

	if !i.settings.CanBeHurt && i.protected(target) {
		neutralize(info)
		i.metrics.DamageNeutralized.Inc()
		i.logger.Debug("neutralized damage to protected player", "victim_id", target.ID())
		if i.settings.InformOnAttack {
			i.throttler.MaybeNotify(target, attacker)
		}
	}

	if !i.settings.CanHurtPlayers && i.protected(attacker) {
		neutralize(info)
		i.metrics.DamageNeutralized.Inc()
		i.logger.Debug("neutralized damage from protected player", "attacker_id", attacker.ID())
	}
}

// OnLootAttempt denies looting a protected target or looting by a
// protected looter, as configured. A denied looter's session is closed on
// the next tick.
func (i *Interceptor) OnLootAttempt(target, looter *host.Player) host.Decision {
	if target == nil || looter == nil {
		return host.Continue
	}
	if (!i.settings.CanBeLooted && i.protected(target)) ||
		(!i.settings.CanLootPlayers && i.protected(looter)) {
		i.logger.Debug("denied loot attempt",
			"looter_id", looter.ID(),
			"target_id", target.ID())
		i.endLootNextTick(looter)
		return host.Deny
	}
	return host.Continue
}

// OnLootSessionObserved closes a loot session that was opened on a
// protected target without passing OnLootAttempt.
func (i *Interceptor) OnLootSessionObserved(looter, target *host.Player) {
	if looter == nil || !i.protected(target) {
		return
	}
	i.endLootNextTick(looter)
}

func (i *Interceptor) endLootNextTick(looter *host.Player) {
	i.metrics.LootDenied.Inc()
	i.scheduler.NextTick(func() {
		if i.stopped {
			return
		}
		looter.EndLooting()
		i.msg.reply(looter, MsgNoLooting)
	})
}

// OnVitalsRecalculated lifts the no-sprint flag and skips endurance decay
// for protected players when InfiniteRun is set.
func (i *Interceptor) OnVitalsRecalculated(p *host.Player) host.Decision {
	if p == nil {
		return host.Continue
	}
	p.SetFlag(host.FlagNoSprint, false)
	if i.settings.InfiniteRun && i.protected(p) {
		return host.Deny
	}
	return host.Continue
}

// OnWoundCheck keeps protected players from entering the wounded state.
func (i *Interceptor) OnWoundCheck(p *host.Player) host.Decision {
	if !i.settings.CanBeHurt && i.protected(p) {
		return host.Deny
	}
	return host.Continue
}

// OnPlayerJoined re-applies the protected overrides once the player's
// client has its snapshot.
func (i *Interceptor) OnPlayerJoined(p *host.Player) {
	i.resync(p, retry.NewConstant(JoinRetryDelay))
}

func (i *Interceptor) resync(p *host.Player, backoff retry.Backoff) {
	if i.stopped || !p.IsConnected() {
		return
	}
	if p.HasFlag(host.FlagReceivingSnapshot) {
		next, stop := backoff.Next()
		if stop {
			i.logger.Warn("gave up waiting for player snapshot", "player_id", p.ID())
			return
		}
		i.scheduler.Once(next, func() { i.resync(p, backoff) })
		return
	}
	if !i.protected(p) {
		return
	}
	i.applier.Apply(p, true)
}
