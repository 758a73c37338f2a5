// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package godmode

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/Trux13/oxide-plugins/internal/access"
	"github.com/Trux13/oxide-plugins/internal/command"
	"github.com/Trux13/oxide-plugins/internal/host"
	"github.com/Trux13/oxide-plugins/internal/lang"
	"github.com/Trux13/oxide-plugins/internal/plugin"
	"github.com/Trux13/oxide-plugins/internal/store"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// staticSettings decodes to fixed settings.
type staticSettings Settings

func (s staticSettings) Decode(name string, v any) error {
	if name == Name {
		*v.(*Settings) = Settings(s)
	}
	return nil
}

// fixture is a loaded plugin on a host with a fake clock.
type fixture struct {
	clock      *fakeClock
	srv        *host.Server
	data       *store.MemoryStore
	perms      *access.Permissions
	dispatcher *command.Dispatcher
	manager    *plugin.Manager
	plugin     *Plugin
	metrics    *prometheus.Registry
	out        map[string]*bytes.Buffer
}

type fixtureConfig struct {
	settings Settings
	game     string
	data     *store.MemoryStore
}

type fixtureOption func(*fixtureConfig)

func withSettings(fn func(*Settings)) fixtureOption {
	return func(c *fixtureConfig) {
		fn(&c.settings)
	}
}

func withGame(game string) fixtureOption {
	return func(c *fixtureConfig) {
		c.game = game
	}
}

func withData(data *store.MemoryStore) fixtureOption {
	return func(c *fixtureConfig) {
		c.data = data
	}
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	f, err := tryFixture(t, opts...)
	require.NoError(t, err)
	return f
}

func tryFixture(t *testing.T, opts ...fixtureOption) (*fixture, error) {
	t.Helper()
	cfg := fixtureConfig{
		settings: DefaultSettings(),
		game:     SupportedGame,
		data:     store.NewMemoryStore(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	clock := newFakeClock()
	srv := host.NewServer(
		host.WithGame(cfg.game),
		host.WithClock(clock.Now),
		host.WithSaveInterval(0),
		host.WithSnapshotDelay(3*time.Second),
	)
	perms, err := access.NewPermissions(access.DefaultConfig())
	require.NoError(t, err)
	cmds := command.NewRegistry()
	dispatcher, err := command.NewDispatcher(cmds, perms)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	mgr := plugin.NewManager(srv, cfg.data, perms, cmds, lang.New(),
		plugin.WithSettings(staticSettings(cfg.settings)),
		plugin.WithMetricsRegistry(reg))
	srv.SetHooks(mgr)

	p := New(WithClock(clock.Now))
	f := &fixture{
		clock:      clock,
		srv:        srv,
		data:       cfg.data,
		perms:      perms,
		dispatcher: dispatcher,
		manager:    mgr,
		plugin:     p,
		metrics:    reg,
		out:        make(map[string]*bytes.Buffer),
	}
	return f, mgr.Load(context.Background(), p)
}

// connect joins a player whose snapshot has already arrived.
func (f *fixture) connect(id, name string) *host.Player {
	buf := &bytes.Buffer{}
	f.out[id] = buf
	p := f.srv.Connect(id, name, buf)
	p.SetFlag(host.FlagReceivingSnapshot, false)
	return p
}

// grant gives id the godmode permission.
func (f *fixture) grant(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.perms.GrantUser(id, PermissionAllowed))
}

func (f *fixture) run(t *testing.T, p *host.Player, input string) {
	t.Helper()
	require.NoError(t, f.dispatcher.Dispatch(context.Background(), p, input))
}

func (f *fixture) tick() {
	f.srv.Tick(context.Background())
}

// replies returns and clears the lines sent to id.
func (f *fixture) replies(id string) []string {
	buf := f.out[id]
	text := strings.TrimRight(buf.String(), "\n")
	buf.Reset()
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// storeWithGods returns a store holding a snapshot of records.
func storeWithGods(t *testing.T, records ...PlayerStatusRecord) *store.MemoryStore {
	t.Helper()
	data := store.NewMemoryStore()
	require.NoError(t, data.WriteObject(context.Background(), DataObjectName, snapshot{Gods: records}))
	return data
}
