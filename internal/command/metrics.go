// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package command

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Dispatch outcomes recorded in the status label.
const (
	StatusSuccess          = "success"
	StatusError            = "error"
	StatusNotFound         = "not_found"
	StatusPermissionDenied = "permission_denied"
	StatusRateLimited      = "rate_limited"
)

// unknownCommand labels dispatches that matched no registered command, so
// typed garbage cannot grow the label set.
const unknownCommand = "unknown"

// Metrics counts and times command dispatches.
type Metrics struct {
	Executions *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// NewMetrics creates unregistered dispatch metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		Executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oxide_command_executions_total",
				Help: "Total number of chat command executions",
			},
			[]string{"command", "source", "status"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oxide_command_duration_seconds",
				Help:    "Chat command execution duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command", "source"},
		),
	}
}

// Register adds the metrics to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.Executions, m.Duration} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// observation collects the labels of one dispatch until it finishes.
type observation struct {
	metrics *Metrics
	start   time.Time
	command string
	source  string
	status  string
}

func (m *Metrics) begin() *observation {
	return &observation{metrics: m, start: time.Now(), command: unknownCommand, status: StatusSuccess}
}

func (o *observation) matched(entry CommandEntry) {
	o.command = entry.Name
	o.source = entry.Source
}

func (o *observation) finish() {
	o.metrics.Executions.WithLabelValues(o.command, o.source, o.status).Inc()
	if o.status == StatusSuccess || o.status == StatusError {
		o.metrics.Duration.WithLabelValues(o.command, o.source).Observe(time.Since(o.start).Seconds())
	}
}
