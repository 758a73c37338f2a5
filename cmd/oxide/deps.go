// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Trux13/oxide-plugins/internal/observability"
	"github.com/Trux13/oxide-plugins/internal/plugin"
	"github.com/Trux13/oxide-plugins/internal/store"
)

// ObservabilityServer is the part of observability.Server serve uses.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Registry() *prometheus.Registry
	Metrics() *observability.Metrics
}

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values use their default implementations.
type ServeDeps struct {
	// StoreOpener opens the configured data store.
	// Default: store.Open
	StoreOpener func(ctx context.Context, cfg store.Config) (store.DataStore, error)

	// ObservabilityServerFactory creates the metrics and health server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, ready observability.ReadinessChecker, opts ...observability.Option) ObservabilityServer

	// Plugins returns the plugins to load.
	// Default: the bundled plugins.
	Plugins func() []plugin.Plugin

	// SignalContext derives the context cancelled on shutdown signals.
	// Default: signal.NotifyContext for SIGINT and SIGTERM.
	SignalContext func(parent context.Context) (context.Context, context.CancelFunc)

	// Ready is called once plugins are loaded and the servers are running.
	Ready func(s *stack)
}

func (d *ServeDeps) withDefaults() *ServeDeps {
	out := ServeDeps{}
	if d != nil {
		out = *d
	}
	if out.StoreOpener == nil {
		out.StoreOpener = store.Open
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = func(addr string, ready observability.ReadinessChecker, opts ...observability.Option) ObservabilityServer {
			return observability.NewServer(addr, ready, opts...)
		}
	}
	if out.Plugins == nil {
		out.Plugins = bundledPlugins
	}
	if out.SignalContext == nil {
		out.SignalContext = func(parent context.Context) (context.Context, context.CancelFunc) {
			return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
		}
	}
	return &out
}
