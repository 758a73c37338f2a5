// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package godmode

import (
	"time"

	"github.com/Trux13/oxide-plugins/internal/host"
	"github.com/Trux13/oxide-plugins/internal/lang"
)

// NotificationCooldown is the minimum gap between two attack notifications
// to the same player in the same role.
const NotificationCooldown = 15 * time.Second

// notifyRole selects a player's cooldown slot.
type notifyRole uint8

const (
	roleVictim notifyRole = iota
	roleAttacker
)

func (r notifyRole) String() string {
	if r == roleVictim {
		return "victim"
	}
	return "attacker"
}

type slotKey struct {
	id   string
	role notifyRole
}

// Throttler rate limits the messages sent when a protected player is
// attacked. Each player has one slot as victim and one as attacker.
//
// Throttler is not safe for concurrent use.
type Throttler struct {
	now     func() time.Time
	last    map[slotKey]time.Time
	msg     messenger
	metrics *Metrics
}

// NewThrottler creates a throttler replying through catalog. A nil now uses
// time.Now; nil metrics are replaced by unregistered collectors.
func NewThrottler(catalog *lang.Catalog, metrics *Metrics, now func() time.Time) *Throttler {
	if now == nil {
		now = time.Now
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Throttler{
		now:     now,
		last:    make(map[slotKey]time.Time),
		msg:     messenger{catalog: catalog},
		metrics: metrics,
	}
}

// MaybeNotify tells the victim who attacked them and the attacker that the
// victim is protected, each at most once per cooldown window.
func (t *Throttler) MaybeNotify(victim, attacker *host.Player) {
	if victim == nil || attacker == nil || victim.ID() == attacker.ID() {
		return
	}
	now := t.now()

	if t.elapsed(victim.ID(), roleVictim, now) {
		t.msg.reply(victim, MsgInformVictim, attacker.DisplayName())
		t.stamp(victim.ID(), roleVictim, now)
	}
	if t.elapsed(attacker.ID(), roleAttacker, now) {
		t.msg.reply(attacker, MsgInformAttacker, victim.DisplayName())
		t.stamp(attacker.ID(), roleAttacker, now)
	}
}

func (t *Throttler) elapsed(id string, role notifyRole, now time.Time) bool {
	last, ok := t.last[slotKey{id: id, role: role}]
	return !ok || now.Sub(last) > NotificationCooldown
}

func (t *Throttler) stamp(id string, role notifyRole, now time.Time) {
	t.last[slotKey{id: id, role: role}] = now
	t.metrics.Notifications.WithLabelValues(role.String()).Inc()
}
