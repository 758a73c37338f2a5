// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

// Package observability provides HTTP endpoints for metrics and health checks.
package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/oops"
)

// ReadinessChecker returns whether the service is ready to accept players.
type ReadinessChecker func() bool

// Metrics contains the host-level Prometheus metrics.
type Metrics struct {
	ConnectionsTotal *prometheus.CounterVec
	TicksTotal       prometheus.Counter
	TickDuration     prometheus.Histogram
	PlayersOnline    prometheus.Gauge

	lastTick atomic.Int64
}

// NewMetrics creates and registers the host metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ConnectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oxide_connections_total",
				Help: "Total number of connections by transport",
			},
			[]string{"type"},
		),
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oxide_host_ticks_total",
			Help: "Total number of host ticks",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "oxide_host_tick_duration_seconds",
			Help:    "Time spent running one host tick",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}),
		PlayersOnline: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "oxide_players_online",
			Help: "Number of connected players",
		}),
	}

	reg.MustRegister(m.ConnectionsTotal, m.TicksTotal, m.TickDuration, m.PlayersOnline)
	return m
}

// ObserveTick records one host tick. It matches host.TickObserver.
func (m *Metrics) ObserveTick(elapsed time.Duration, players int) {
	m.TicksTotal.Inc()
	m.TickDuration.Observe(elapsed.Seconds())
	m.PlayersOnline.Set(float64(players))
	m.lastTick.Store(time.Now().UnixNano())
}

// LastTick returns when the last tick finished, or the zero time before the
// first one.
func (m *Metrics) LastTick() time.Time {
	ns := m.lastTick.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Option configures a Server.
type Option func(*Server)

// WithStallThreshold makes liveness fail once no tick has finished for d.
// Zero disables the check.
func WithStallThreshold(d time.Duration) Option {
	return func(s *Server) {
		s.stallAfter = d
	}
}

// Server serves /metrics and the liveness and readiness probes.
type Server struct {
	addr       string
	registry   *prometheus.Registry
	metrics    *Metrics
	isReady    ReadinessChecker
	stallAfter time.Duration
	now        func() time.Time

	mu         sync.Mutex
	listener   net.Listener
	httpServer *http.Server
}

// NewServer creates an observability server on its own registry, so
// embedded hosts and tests never share collectors.
// addr is "host:port"; ":9100" listens on every interface.
func NewServer(addr string, ready ReadinessChecker, opts ...Option) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		addr:     addr,
		registry: registry,
		metrics:  NewMetrics(registry),
		isReady:  ready,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Metrics returns the host metrics.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Registry returns the registry served on /metrics. Plugins, the command
// dispatcher and the rate limiter register their collectors here.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Handler returns the HTTP handler serving every endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("GET /healthz/liveness", s.handleLiveness)
	mux.HandleFunc("GET /healthz/readiness", s.handleReadiness)
	return mux
}

// Start listens on the configured address and serves in the background.
// Serve failures arrive on the returned channel, which is closed once the
// server stops.
func (s *Server) Start() (<-chan error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpServer != nil {
		return nil, oops.Errorf("observability server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.listener = listener
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("observability server error", "error", err)
			errCh <- err
		}
	}()

	slog.Info("observability server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop shuts the server down. Stopping a server that is not running is a
// no-op.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	httpSrv := s.httpServer
	s.httpServer = nil
	s.listener = nil
	s.mu.Unlock()
	if httpSrv == nil {
		return nil
	}

	if err := httpSrv.Shutdown(ctx); err != nil {
		return oops.With("operation", "shutdown_observability_server").Wrap(err)
	}
	slog.Info("observability server stopped")
	return nil
}

// Addr returns the bound address, or "" when the server is not running.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// handleLiveness fails when the tick loop has stopped making progress.
func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	if s.stallAfter > 0 {
		last := s.metrics.LastTick()
		if !last.IsZero() && s.now().Sub(last) > s.stallAfter {
			probe(w, http.StatusServiceUnavailable, "tick loop stalled")
			return
		}
	}
	probe(w, http.StatusOK, "ok")
}

// handleReadiness returns 200 once plugins are loaded, 503 before that.
func (s *Server) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	if s.isReady != nil && !s.isReady() {
		probe(w, http.StatusServiceUnavailable, "not ready")
		return
	}
	probe(w, http.StatusOK, "ok")
}

func probe(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // client may have gone away
	io.WriteString(w, body+"\n")
}
