// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

// Package console provides a line-oriented TCP console. Each connection
// joins the host as a player, runs chat commands and can fire simulated
// combat and loot events.
package console

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"

	"github.com/Trux13/oxide-plugins/internal/host"
)

// Dispatcher runs chat commands on behalf of a player.
type Dispatcher interface {
	Dispatch(ctx context.Context, player *host.Player, input string) error
}

// Server is the console listener.
type Server struct {
	addr       string
	host       *host.Server
	dispatcher Dispatcher
	accepted   prometheus.Counter
	onLeave    func(playerID string)

	mu       sync.RWMutex
	listener net.Listener
	wg       sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithConnectionCounter counts accepted connections.
func WithConnectionCounter(c prometheus.Counter) Option {
	return func(s *Server) {
		s.accepted = c
	}
}

// WithDisconnectHook runs fn on the tick goroutine after a console player
// leaves the host.
func WithDisconnectHook(fn func(playerID string)) Option {
	return func(s *Server) {
		s.onLeave = fn
	}
}

// NewServer creates a console server.
func NewServer(addr string, srv *host.Server, dispatcher Dispatcher, opts ...Option) *Server {
	s := &Server{
		addr:       addr,
		host:       srv,
		dispatcher: dispatcher,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Addr returns the listen address, or "" before Run has bound it.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run accepts connections until ctx is cancelled, then waits for every
// connection handler to finish.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return oops.With("addr", s.addr).Wrapf(err, "console listen")
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	slog.Info("console server started", "addr", listener.Addr().String())

	defer s.wg.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		if err := listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			slog.Debug("error closing console listener", "error", err)
		}
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("console server stopped")
				return nil //nolint:nilerr // cancellation is a clean stop
			}
			if errors.Is(err, net.ErrClosed) {
				return oops.With("addr", s.addr).Wrapf(err, "console listener closed")
			}
			slog.Error("console accept failed", "error", err)
			continue
		}
		if s.accepted != nil {
			s.accepted.Inc()
		}

		handler := newConnection(conn, s)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			handler.handle(ctx)
		}()
	}
}
