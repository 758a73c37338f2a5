// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package plugin

import "github.com/prometheus/client_golang/prometheus"

// managerMetrics are the plugin runtime collectors.
type managerMetrics struct {
	hookCalls *prometheus.CounterVec
	loaded    prometheus.Gauge
}

func newManagerMetrics() *managerMetrics {
	return &managerMetrics{
		hookCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oxide_plugin_hook_calls_total",
				Help: "Total number of hook deliveries to plugins",
			},
			[]string{"plugin", "hook"},
		),
		loaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "oxide_plugins_loaded",
			Help: "Number of currently loaded plugins",
		}),
	}
}

func (m *managerMetrics) register(reg prometheus.Registerer) {
	reg.MustRegister(m.hookCalls, m.loaded)
}
