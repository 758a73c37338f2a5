// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

//go:build integration

package godmode_test

import (
	"bytes"
	"context"
	"strings"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // gomega convention
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Trux13/oxide-plugins/internal/access"
	"github.com/Trux13/oxide-plugins/internal/command"
	"github.com/Trux13/oxide-plugins/internal/config"
	"github.com/Trux13/oxide-plugins/internal/godmode"
	"github.com/Trux13/oxide-plugins/internal/host"
	"github.com/Trux13/oxide-plugins/internal/lang"
	"github.com/Trux13/oxide-plugins/internal/plugin"
	"github.com/Trux13/oxide-plugins/internal/store"
)

// server is one host lifetime over a shared data store.
type server struct {
	ctx        context.Context
	now        time.Time
	host       *host.Server
	dispatcher *command.Dispatcher
	manager    *plugin.Manager
	out        map[string]*bytes.Buffer
}

func startServer(ctx context.Context, data store.DataStore, settings godmode.Settings) *server {
	cfg := config.Default()
	cfg.Access.Users = map[string]access.UserConfig{
		"1": {Groups: []string{access.GroupAdmin}},
	}
	cfg.Plugins.Godmode = settings

	s := &server{
		ctx: ctx,
		now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		out: make(map[string]*bytes.Buffer),
	}
	s.host = host.NewServer(
		host.WithClock(func() time.Time { return s.now }),
		host.WithSaveInterval(time.Minute),
		host.WithSnapshotDelay(time.Second),
	)

	perms, err := access.NewPermissions(cfg.Access)
	Expect(err).NotTo(HaveOccurred())
	commands := command.NewRegistry()
	s.dispatcher, err = command.NewDispatcher(commands, perms)
	Expect(err).NotTo(HaveOccurred())

	s.manager = plugin.NewManager(s.host, data, perms, commands, lang.New(),
		plugin.WithSettings(cfg),
		plugin.WithMetricsRegistry(prometheus.NewRegistry()))
	s.host.SetHooks(s.manager)
	Expect(s.manager.LoadAll(ctx, godmode.New(godmode.WithClock(func() time.Time { return s.now })))).To(Succeed())
	return s
}

func (s *server) stop() {
	Expect(s.manager.UnloadAll(s.ctx)).To(Succeed())
}

// join connects a player and lets the world snapshot finish.
func (s *server) join(id, name string) *host.Player {
	buf := &bytes.Buffer{}
	s.out[id] = buf
	p := s.host.Connect(id, name, buf)
	s.advance(2 * time.Second)
	s.advance(3 * time.Second)
	return p
}

func (s *server) advance(d time.Duration) {
	s.now = s.now.Add(d)
	s.host.Tick(s.ctx)
}

func (s *server) chat(p *host.Player, input string) {
	Expect(s.dispatcher.Dispatch(s.ctx, p, input)).To(Succeed())
}

// replies returns and clears the lines sent to id.
func (s *server) replies(id string) []string {
	buf := s.out[id]
	text := strings.TrimRight(buf.String(), "\n")
	buf.Reset()
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
