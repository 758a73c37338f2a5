// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

// Package host models the game server the plugins run inside: players and
// their vitals, combat hits, loot sessions, and a single-goroutine tick loop
// that dispatches events to Hooks.
package host

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"
)

// Default host timings.
const (
	DefaultTickRate      = 100 * time.Millisecond
	DefaultSaveInterval  = 5 * time.Minute
	DefaultSnapshotDelay = 3 * time.Second
	DefaultGame          = "rust"
)

// Server is the host game server.
//
// Every method except Do, Game and Run must be called on the tick goroutine
// (from a Do callback, a scheduled callback or a hook).
type Server struct {
	game          string
	tickRate      time.Duration
	saveInterval  time.Duration
	snapshotDelay time.Duration
	now           func() time.Time

	hooks     Hooks
	scheduler *Scheduler
	players   map[string]*Player

	lastTick time.Time
	lastSave time.Time
	observe  TickObserver

	mu      sync.Mutex
	pending []func()
}

// Option configures a Server.
type Option func(*Server)

// WithGame sets the game the host reports to plugins.
func WithGame(game string) Option {
	return func(s *Server) {
		s.game = game
	}
}

// WithTickRate sets the interval between ticks in Run.
func WithTickRate(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.tickRate = d
		}
	}
}

// WithSaveInterval sets the periodic server-save interval. Zero disables it.
func WithSaveInterval(d time.Duration) Option {
	return func(s *Server) {
		s.saveInterval = d
	}
}

// WithSnapshotDelay sets how long a joining player stays in the
// receiving-snapshot state.
func WithSnapshotDelay(d time.Duration) Option {
	return func(s *Server) {
		s.snapshotDelay = d
	}
}

// WithClock replaces the wall clock. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// TickObserver receives the duration of each tick and the number of
// connected players after it.
type TickObserver func(elapsed time.Duration, players int)

// WithTickObserver reports every tick to fn.
func WithTickObserver(fn TickObserver) Option {
	return func(s *Server) {
		s.observe = fn
	}
}

// NewServer creates a host with no players and no-op hooks.
func NewServer(opts ...Option) *Server {
	s := &Server{
		game:          DefaultGame,
		tickRate:      DefaultTickRate,
		saveInterval:  DefaultSaveInterval,
		snapshotDelay: DefaultSnapshotDelay,
		now:           time.Now,
		hooks:         NopHooks{},
		players:       make(map[string]*Player),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.scheduler = NewScheduler(s.now)
	s.lastTick = s.now()
	s.lastSave = s.lastTick
	return s
}

// SetHooks installs the event receiver. A nil hooks restores the no-op set.
func (s *Server) SetHooks(h Hooks) {
	if h == nil {
		h = NopHooks{}
	}
	s.hooks = h
}

// Game returns the game identifier plugins check for support.
func (s *Server) Game() string {
	return s.game
}

// Scheduler returns the tick scheduler.
func (s *Server) Scheduler() *Scheduler {
	return s.scheduler
}

// NextTick runs fn at the start of the next tick.
func (s *Server) NextTick(fn func()) {
	s.scheduler.NextTick(fn)
}

// Once runs fn on the first tick at least d from now.
func (s *Server) Once(d time.Duration, fn func()) *Timer {
	return s.scheduler.Once(d, fn)
}

// Do queues fn to run on the tick goroutine. Safe for concurrent use.
func (s *Server) Do(fn func()) {
	s.mu.Lock()
	s.pending = append(s.pending, fn)
	s.mu.Unlock()
}

// Run ticks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tickRate)
	defer ticker.Stop()

	slog.Info("host tick loop started",
		"game", s.game,
		"tick_rate", s.tickRate.String())

	for {
		select {
		case <-ctx.Done():
			slog.Info("host tick loop stopped")
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick advances the host by one step: queued Do callbacks, scheduled
// callbacks, metabolism for every player, then the periodic save.
func (s *Server) Tick(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	queued := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, fn := range queued {
		fn()
	}

	s.scheduler.run(now)

	dt := now.Sub(s.lastTick).Seconds()
	s.lastTick = now
	if dt > 0 {
		for _, p := range s.sortedPlayers() {
			s.runMetabolism(p, dt)
		}
	}

	if s.saveInterval > 0 && now.Sub(s.lastSave) >= s.saveInterval {
		s.lastSave = now
		s.Save(ctx)
	}

	if s.observe != nil {
		s.observe(s.now().Sub(now), len(s.players))
	}
}

// Save triggers the server-save checkpoint.
func (s *Server) Save(ctx context.Context) {
	slog.Debug("server save")
	s.hooks.OnServerSave(ctx)
}

func (s *Server) runMetabolism(p *Player, dt float64) {
	if s.hooks.OnRunPlayerMetabolism(p) != Continue {
		return
	}
	if p.vitals.Decay(dt) {
		p.SetFlag(FlagNoSprint, true)
	}
}

// Connect attaches a new player. The player starts in the
// receiving-snapshot state, which clears after the snapshot delay.
func (s *Server) Connect(id, displayName string, out io.Writer) *Player {
	if existing, ok := s.players[id]; ok {
		existing.connected = false
	}

	p := NewPlayer(id, displayName, out)
	p.SetFlag(FlagReceivingSnapshot, true)
	s.players[id] = p

	s.scheduler.Once(s.snapshotDelay, func() {
		p.SetFlag(FlagReceivingSnapshot, false)
	})

	slog.Info("player connected",
		"player_id", id,
		"name", displayName)

	s.hooks.OnPlayerJoined(p)
	return p
}

// Disconnect detaches a player. Unknown ids are ignored.
func (s *Server) Disconnect(id string) {
	p, ok := s.players[id]
	if !ok {
		return
	}
	p.EndLooting()
	p.connected = false
	delete(s.players, id)

	slog.Info("player disconnected", "player_id", id)
}

// GetPlayer returns the connected player with the exact id.
func (s *Server) GetPlayer(id string) (*Player, bool) {
	p, ok := s.players[id]
	return p, ok
}

// FindPlayer resolves a free-text name or id: exact id, then exact
// case-insensitive name, then a unique partial name match.
func (s *Server) FindPlayer(nameOrID string) (*Player, bool) {
	query := strings.TrimSpace(nameOrID)
	if query == "" {
		return nil, false
	}
	if p, ok := s.players[query]; ok {
		return p, true
	}

	lower := strings.ToLower(query)
	var partial []*Player
	for _, p := range s.sortedPlayers() {
		name := strings.ToLower(p.displayName)
		if name == lower {
			return p, true
		}
		if strings.Contains(name, lower) {
			partial = append(partial, p)
		}
	}
	if len(partial) == 1 {
		return partial[0], true
	}
	return nil, false
}

// Players returns connected players ordered by id.
func (s *Server) Players() []*Player {
	return s.sortedPlayers()
}

func (s *Server) sortedPlayers() []*Player {
	players := make([]*Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].id < players[j].id })
	return players
}

// Damage delivers a hit to victim after hooks had their chance to modify it
// and returns the damage applied. A non-finite total is dropped.
func (s *Server) Damage(victim Entity, info *HitInfo) float64 {
	s.hooks.OnEntityTakeDamage(victim, info)

	p, ok := victim.(*Player)
	if !ok {
		return 0
	}
	total := info.DamageTypes.Total()
	if math.IsNaN(total) || math.IsInf(total, 0) || total <= 0 {
		return 0
	}

	health := p.vitals.Get(Health)
	health.Add(-total)
	if health.Value > 0 || p.HasFlag(FlagWounded) || p.HasFlag(FlagDead) {
		return total
	}

	if s.hooks.CanBeWounded(p) == Deny {
		p.SetFlag(FlagDead, true)
	} else {
		p.SetFlag(FlagWounded, true)
	}
	return total
}

// TryLoot opens a loot session after the loot-permission hook allows it.
func (s *Server) TryLoot(looter, target *Player) bool {
	if s.hooks.CanLootPlayer(target, looter) == Deny {
		return false
	}
	s.OpenLoot(looter, target)
	return true
}

// OpenLoot opens a loot session without consulting the permission hook, as
// happens when looting starts from a corpse or a sleeping body.
func (s *Server) OpenLoot(looter, target *Player) {
	looter.StartLooting(target)
	s.hooks.OnLootPlayer(looter, target)
}
