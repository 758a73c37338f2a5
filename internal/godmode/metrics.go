// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package godmode

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the godmode collectors.
type Metrics struct {
	Protected         prometheus.Gauge
	DamageNeutralized prometheus.Counter
	LootDenied        prometheus.Counter
	Notifications     *prometheus.CounterVec
	Toggles           *prometheus.CounterVec
}

// NewMetrics creates unregistered collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		Protected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "oxide_godmode_protected_players",
			Help: "Number of players with godmode enabled",
		}),
		DamageNeutralized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oxide_godmode_damage_neutralized_total",
			Help: "Total number of hits neutralized by godmode",
		}),
		LootDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oxide_godmode_loot_denied_total",
			Help: "Total number of loot attempts denied or closed by godmode",
		}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oxide_godmode_notifications_total",
			Help: "Total number of attack notifications sent",
		}, []string{"role"}),
		Toggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oxide_godmode_toggles_total",
			Help: "Total number of godmode status changes",
		}, []string{"state"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Protected, m.DamageNeutralized, m.LootDenied, m.Notifications, m.Toggles}
}

// Register registers every collector with reg. On failure the collectors
// registered so far are removed again.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	var done []prometheus.Collector
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			for _, r := range done {
				reg.Unregister(r)
			}
			return err
		}
		done = append(done, c)
	}
	return nil
}

// Unregister removes every collector from reg.
func (m *Metrics) Unregister(reg prometheus.Registerer) {
	for _, c := range m.collectors() {
		reg.Unregister(c)
	}
}
