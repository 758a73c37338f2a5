// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package godmode

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Trux13/oxide-plugins/internal/host"
	"github.com/Trux13/oxide-plugins/internal/plugin"
)

func hit(attacker host.Entity) *host.HitInfo {
	return &host.HitInfo{
		Initiator:   attacker,
		DamageTypes: host.DamageTypeList{host.DamageBullet: 40},
		HitMaterial: 7,
		PointStart:  host.Vector3{X: 1, Y: 2, Z: 3},
	}
}

// crate is a non-player entity.
type crate struct{}

func (crate) EntityID() string { return "crate" }

func TestInterceptor_Damage(t *testing.T) {
	tests := []struct {
		name           string
		settings       func(*Settings)
		victimGod      bool
		attackerGod    bool
		wantNeutral    bool
		wantVictimMsgs int
	}{
		{name: "neither protected", wantNeutral: false},
		{name: "protected victim", victimGod: true, wantNeutral: true, wantVictimMsgs: 1},
		{
			name:        "protected victim without notifications",
			settings:    func(s *Settings) { s.InformOnAttack = false },
			victimGod:   true,
			wantNeutral: true,
		},
		{
			name:      "protected victim that can be hurt",
			settings:  func(s *Settings) { s.CanBeHurt = true },
			victimGod: true,
		},
		{name: "protected attacker allowed to hurt", attackerGod: true},
		{
			name:        "protected attacker not allowed to hurt",
			settings:    func(s *Settings) { s.CanHurtPlayers = false },
			attackerGod: true,
			wantNeutral: true,
		},
		{
			name:           "both protected",
			settings:       func(s *Settings) { s.CanHurtPlayers = false },
			victimGod:      true,
			attackerGod:    true,
			wantNeutral:    true,
			wantVictimMsgs: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []fixtureOption
			if tt.settings != nil {
				opts = append(opts, withSettings(tt.settings))
			}
			f := newFixture(t, opts...)
			victim := f.connect("1", "Alice")
			attacker := f.connect("2", "Bob")
			if tt.victimGod {
				f.plugin.Registry().Activate("1", "Alice")
			}
			if tt.attackerGod {
				f.plugin.Registry().Activate("2", "Bob")
			}

			info := hit(attacker)
			dealt := f.srv.Damage(victim, info)

			if tt.wantNeutral {
				assert.Zero(t, dealt)
				assert.Empty(t, info.DamageTypes)
				assert.Zero(t, info.HitMaterial)
				assert.Equal(t, host.Vector3{}, info.PointStart)
				assert.Equal(t, 100.0, victim.Vitals().Get(host.Health).Value)
			} else {
				assert.InDelta(t, 40, dealt, 1e-9)
				assert.InDelta(t, 60, victim.Vitals().Get(host.Health).Value, 1e-9)
			}
			assert.Len(t, f.replies("1"), tt.wantVictimMsgs)
		})
	}
}

func TestInterceptor_DamageIgnoresNonPlayerVictims(t *testing.T) {
	f := newFixture(t, withSettings(func(s *Settings) { s.CanHurtPlayers = false }))
	attacker := f.connect("2", "Bob")
	f.plugin.Registry().Activate("2", "Bob")

	info := hit(attacker)
	f.plugin.interceptor.OnIncomingDamage(crate{}, info)
	assert.NotEmpty(t, info.DamageTypes)
}

func TestInterceptor_EnvironmentalDamageOnProtectedVictim(t *testing.T) {
	f := newFixture(t)
	victim := f.connect("1", "Alice")
	f.plugin.Registry().Activate("1", "Alice")

	info := &host.HitInfo{DamageTypes: host.DamageTypeList{host.DamageFall: 80}}
	assert.Zero(t, f.srv.Damage(victim, info))
	assert.Empty(t, f.replies("1"), "no attacker to name")
}

func TestInterceptor_LootAttempt(t *testing.T) {
	t.Run("protected target is denied and session closed next tick", func(t *testing.T) {
		f := newFixture(t)
		looter := f.connect("1", "Alice")
		target := f.connect("2", "Bob")
		f.plugin.Registry().Activate("2", "Bob")
		looter.StartLooting(target)

		assert.Equal(t, host.Deny, f.plugin.interceptor.OnLootAttempt(target, looter))
		assert.True(t, looter.IsLooting(), "termination is never inline")
		assert.Empty(t, f.replies("1"))

		f.tick()
		assert.False(t, looter.IsLooting())
		assert.Equal(t, []string{"You are not allowed to loot a player with godmode"}, f.replies("1"))
		assert.InDelta(t, 1, testutil.ToFloat64(f.plugin.metrics.LootDenied), 1e-9)
	})

	t.Run("protected target that can be looted", func(t *testing.T) {
		f := newFixture(t, withSettings(func(s *Settings) { s.CanBeLooted = true }))
		looter := f.connect("1", "Alice")
		target := f.connect("2", "Bob")
		f.plugin.Registry().Activate("2", "Bob")

		assert.True(t, f.srv.TryLoot(looter, target))
		assert.True(t, looter.IsLooting())

		f.tick()
		assert.False(t, looter.IsLooting(), "active session on a protected target is closed")
		assert.Equal(t, []string{"You are not allowed to loot a player with godmode"}, f.replies("1"))
	})

	t.Run("protected looter", func(t *testing.T) {
		f := newFixture(t, withSettings(func(s *Settings) { s.CanLootPlayers = false }))
		looter := f.connect("1", "Alice")
		target := f.connect("2", "Bob")
		f.plugin.Registry().Activate("1", "Alice")

		assert.False(t, f.srv.TryLoot(looter, target))
	})

	t.Run("nobody protected", func(t *testing.T) {
		f := newFixture(t)
		looter := f.connect("1", "Alice")
		target := f.connect("2", "Bob")

		assert.Equal(t, host.Continue, f.plugin.interceptor.OnLootAttempt(target, looter))
	})
}

func TestInterceptor_LootSessionObserved(t *testing.T) {
	f := newFixture(t, withSettings(func(s *Settings) { s.CanBeLooted = true }))
	looter := f.connect("1", "Alice")
	target := f.connect("2", "Bob")
	other := f.connect("3", "Carol")
	f.plugin.Registry().Activate("2", "Bob")

	f.srv.OpenLoot(looter, target)
	f.srv.OpenLoot(other, looter)
	assert.True(t, looter.IsLooting())

	f.tick()
	assert.False(t, looter.IsLooting(), "session on a protected target is closed")
	assert.True(t, other.IsLooting())
	assert.Equal(t, []string{"You are not allowed to loot a player with godmode"}, f.replies("1"))
}

func TestInterceptor_VitalsRecalculated(t *testing.T) {
	f := newFixture(t)
	p := f.connect("1", "Alice")
	p.SetFlag(host.FlagNoSprint, true)

	assert.Equal(t, host.Continue, f.plugin.interceptor.OnVitalsRecalculated(p))
	assert.False(t, p.HasFlag(host.FlagNoSprint))

	f.plugin.Registry().Activate("1", "Alice")
	assert.Equal(t, host.Deny, f.plugin.interceptor.OnVitalsRecalculated(p))

	f2 := newFixture(t, withSettings(func(s *Settings) { s.InfiniteRun = false }))
	q := f2.connect("1", "Alice")
	f2.plugin.Registry().Activate("1", "Alice")
	assert.Equal(t, host.Continue, f2.plugin.interceptor.OnVitalsRecalculated(q))
}

func TestInterceptor_WoundCheck(t *testing.T) {
	f := newFixture(t)
	p := f.connect("1", "Alice")
	assert.Equal(t, host.Continue, f.plugin.interceptor.OnWoundCheck(p))

	f.plugin.Registry().Activate("1", "Alice")
	assert.Equal(t, host.Deny, f.plugin.interceptor.OnWoundCheck(p))

	f2 := newFixture(t, withSettings(func(s *Settings) { s.CanBeHurt = true }))
	q := f2.connect("1", "Alice")
	f2.plugin.Registry().Activate("1", "Alice")
	assert.Equal(t, host.Continue, f2.plugin.interceptor.OnWoundCheck(q))
}

func TestInterceptor_SyncInterest(t *testing.T) {
	f := newFixture(t)
	hooks := f.plugin.interceptor.hooks
	require.NotNil(t, hooks)
	assert.False(t, hooks.IsSubscribed(plugin.HookRunPlayerMetabolism), "unsubscribed while nobody is protected")

	f.plugin.Registry().Activate("1", "Alice")
	f.plugin.interceptor.SyncInterest()
	assert.True(t, hooks.IsSubscribed(plugin.HookRunPlayerMetabolism))
	assert.InDelta(t, 1, testutil.ToFloat64(f.plugin.metrics.Protected), 1e-9)

	f.plugin.Registry().Activate("2", "Bob")
	f.plugin.Registry().Deactivate("1")
	f.plugin.interceptor.SyncInterest()
	assert.True(t, hooks.IsSubscribed(plugin.HookRunPlayerMetabolism), "still one protected player")

	f.plugin.Registry().Deactivate("2")
	f.plugin.interceptor.SyncInterest()
	assert.False(t, hooks.IsSubscribed(plugin.HookRunPlayerMetabolism))
}

func TestInterceptor_JoinResync(t *testing.T) {
	data := storeWithGods(t, PlayerStatusRecord{UserID: "1", Name: "Alice"})
	f := newFixture(t, withData(data))

	p := f.srv.Connect("1", "Alice", nil)
	require.True(t, p.HasFlag(host.FlagReceivingSnapshot))
	assert.Equal(t, "Alice", p.DisplayName(), "nothing applied while the snapshot is in flight")

	f.clock.Advance(JoinRetryDelay)
	f.tick()
	assert.Equal(t, "Alice", p.DisplayName(), "snapshot still in flight at 2s")

	f.clock.Advance(time.Second)
	f.tick()
	require.False(t, p.HasFlag(host.FlagReceivingSnapshot))

	f.clock.Advance(time.Second)
	f.tick()
	assert.Equal(t, "[God] Alice", p.DisplayName())
	assert.Equal(t, 500.0, p.Vitals().Get(host.Calories).Min)
}

func TestInterceptor_JoinResyncStopsOnDisconnect(t *testing.T) {
	data := storeWithGods(t, PlayerStatusRecord{UserID: "1", Name: "Alice"})
	f := newFixture(t, withData(data))

	p := f.srv.Connect("1", "Alice", nil)
	f.srv.Disconnect("1")

	for i := 0; i < 3; i++ {
		f.clock.Advance(JoinRetryDelay)
		f.tick()
	}
	assert.Equal(t, "Alice", p.DisplayName())
	assert.Zero(t, f.srv.Scheduler().Pending())
}

func TestInterceptor_JoinOfUnprotectedPlayer(t *testing.T) {
	f := newFixture(t)
	p := f.connect("1", "Alice")

	f.clock.Advance(5 * time.Second)
	f.tick()
	f.clock.Advance(5 * time.Second)
	f.tick()
	assert.Equal(t, "Alice", p.DisplayName())
	assert.Zero(t, p.VitalsSyncCount())
}
