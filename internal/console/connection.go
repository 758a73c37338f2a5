// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/Trux13/oxide-plugins/internal/command"
	"github.com/Trux13/oxide-plugins/internal/host"
)

const usage = `Console commands:
  connect <id> <name>        join the server as a player
  /<command> [args]          run a chat command
  attack <player> [damage]   hit a player (default 25 bullet damage)
  loot <player>              ask to loot a player
  lootbody <player>          open a player's body without asking
  locale <tag>               set your message locale
  status                     show your name, health and state
  who                        list connected players
  quit                       disconnect`

const defaultAttackDamage = 25

// lineWriter serializes writes from the tick goroutine (player replies) and
// the connection goroutine.
type lineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lineWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	//nolint:wrapcheck // io.Writer passthrough
	return lw.w.Write(p)
}

// connection handles a single console client.
type connection struct {
	conn   net.Conn
	server *Server
	id     ulid.ULID
	out    *lineWriter

	// player is written only on the connection goroutine and dereferenced
	// only inside host.Do callbacks.
	player   *host.Player
	quitting bool
}

func newConnection(conn net.Conn, server *Server) *connection {
	return &connection{
		conn:   conn,
		server: server,
		id:     ulid.Make(),
		out:    &lineWriter{w: conn},
	}
}

func (c *connection) send(format string, args ...any) {
	if _, err := fmt.Fprintf(c.out, format+"\n", args...); err != nil {
		slog.Debug("console write failed", "conn_id", c.id.String(), "error", err)
	}
}

// onTick runs fn on the host tick goroutine and waits for it.
func (c *connection) onTick(ctx context.Context, fn func()) bool {
	done := make(chan struct{})
	c.server.host.Do(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *connection) handle(ctx context.Context) {
	logger := slog.With("conn_id", c.id.String(), "remote", c.conn.RemoteAddr().String())
	logger.Debug("console connection opened")

	done := make(chan struct{})
	defer func() {
		close(done)
		c.leave()
		if err := c.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			logger.Debug("error closing console connection", "error", err)
		}
		logger.Debug("console connection closed")
	}()

	c.send("Oxide console. Type help for commands.")
	c.send("Use: connect <id> <name>")

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		reader := bufio.NewReader(c.conn)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				readErr <- err
				return
			}
			select {
			case lines <- strings.TrimSpace(line):
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.Close()
			return
		case err := <-readErr:
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				logger.Debug("console read error", "error", err)
			}
			return
		case line := <-lines:
			c.process(ctx, line)
			if c.quitting {
				return
			}
		}
	}
}

// leave disconnects the player from the host. It does not wait for the
// tick so shutdown never blocks on a stopped loop.
func (c *connection) leave() {
	if c.player == nil {
		return
	}
	p := c.player
	c.player = nil
	srv := c.server
	srv.host.Do(func() {
		if current, ok := srv.host.GetPlayer(p.ID()); !ok || current != p {
			return
		}
		srv.host.Disconnect(p.ID())
		if srv.onLeave != nil {
			srv.onLeave(p.ID())
		}
	})
}

func (c *connection) process(ctx context.Context, line string) {
	if line == "" {
		return
	}
	if strings.HasPrefix(line, "/") {
		c.runCommand(ctx, line)
		return
	}

	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(verb) {
	case "help":
		c.send("%s", usage)
	case "quit":
		c.send("Goodbye.")
		c.quitting = true
	case "connect":
		c.connect(ctx, rest)
	case "who":
		c.who(ctx)
	case "status":
		c.withPlayer(ctx, c.status)
	case "locale":
		c.withPlayer(ctx, func(p *host.Player) { c.locale(p, rest) })
	case "attack":
		c.withPlayer(ctx, func(p *host.Player) { c.attack(p, rest) })
	case "loot":
		c.withPlayer(ctx, func(p *host.Player) { c.loot(p, rest, true) })
	case "lootbody":
		c.withPlayer(ctx, func(p *host.Player) { c.loot(p, rest, false) })
	default:
		c.send("Unknown console command: %s (chat commands start with /)", verb)
	}
}

func (c *connection) connect(ctx context.Context, arg string) {
	if c.player != nil {
		c.send("Already connected.")
		return
	}
	id, name, _ := strings.Cut(arg, " ")
	name = strings.TrimSpace(name)
	if id == "" || name == "" {
		c.send("Usage: connect <id> <name>")
		return
	}

	var p *host.Player
	if !c.onTick(ctx, func() { p = c.server.host.Connect(id, name, c.out) }) {
		return
	}
	c.player = p
	c.send("Connected as %s [%s].", name, id)
	slog.Info("console player connected", "conn_id", c.id.String(), "player_id", id)
}

// withPlayer runs fn for the connected player on the tick goroutine.
func (c *connection) withPlayer(ctx context.Context, fn func(p *host.Player)) {
	if c.player == nil {
		c.send("Not connected. Use: connect <id> <name>")
		return
	}
	p := c.player
	c.onTick(ctx, func() {
		if !p.IsConnected() {
			c.send("Your session was replaced by another connection.")
			return
		}
		fn(p)
	})
}

func (c *connection) runCommand(ctx context.Context, line string) {
	c.withPlayer(ctx, func(p *host.Player) {
		if err := c.server.dispatcher.Dispatch(ctx, p, line); err != nil {
			p.Reply(command.PlayerMessage(err))
		}
	})
}

func (c *connection) who(ctx context.Context) {
	c.onTick(ctx, func() {
		players := c.server.host.Players()
		c.send("%d player(s) online:", len(players))
		for _, p := range players {
			c.send("  %s [%s]", p.DisplayName(), p.ID())
		}
	})
}

func (c *connection) status(p *host.Player) {
	v := p.Vitals()
	c.send("%s [%s] health %.0f/%.0f calories %.0f hydration %.0f%s",
		p.DisplayName(), p.ID(),
		v.Get(host.Health).Value, v.Get(host.Health).Max,
		v.Get(host.Calories).Value, v.Get(host.Hydration).Value,
		stateSuffix(p))
}

func stateSuffix(p *host.Player) string {
	var states []string
	if p.HasFlag(host.FlagWounded) {
		states = append(states, "wounded")
	}
	if p.HasFlag(host.FlagDead) {
		states = append(states, "dead")
	}
	if p.HasFlag(host.FlagNoSprint) {
		states = append(states, "exhausted")
	}
	if p.IsLooting() {
		states = append(states, "looting "+p.LootTarget().DisplayName())
	}
	if len(states) == 0 {
		return ""
	}
	return " (" + strings.Join(states, ", ") + ")"
}

func (c *connection) locale(p *host.Player, tag string) {
	if tag == "" {
		c.send("Your locale is %q.", p.Locale())
		return
	}
	p.SetLocale(tag)
	c.send("Locale set to %q.", tag)
}

func (c *connection) attack(attacker *host.Player, arg string) {
	fields := strings.Fields(arg)
	if len(fields) == 0 {
		c.send("Usage: attack <player> [damage]")
		return
	}
	amount := float64(defaultAttackDamage)
	if len(fields) > 1 {
		if parsed, err := strconv.ParseFloat(fields[len(fields)-1], 64); err == nil {
			if parsed < 0 || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
				c.send("Damage must be a finite non-negative number.")
				return
			}
			amount = parsed
			fields = fields[:len(fields)-1]
		}
	}

	victim, ok := c.server.host.FindPlayer(strings.Join(fields, " "))
	if !ok {
		c.send("No player matches %q.", strings.Join(fields, " "))
		return
	}

	applied := c.server.host.Damage(victim, &host.HitInfo{
		Initiator:   attacker,
		DamageTypes: host.DamageTypeList{host.DamageBullet: amount},
	})
	c.send("You hit %s for %.0f damage.", victim.DisplayName(), applied)
}

func (c *connection) loot(looter *host.Player, arg string, ask bool) {
	target, ok := c.server.host.FindPlayer(arg)
	if !ok || arg == "" {
		c.send("No player matches %q.", arg)
		return
	}
	if target == looter {
		c.send("You cannot loot yourself.")
		return
	}
	if !ask {
		c.server.host.OpenLoot(looter, target)
		c.send("You open %s's body.", target.DisplayName())
		return
	}
	if c.server.host.TryLoot(looter, target) {
		c.send("You start looting %s.", target.DisplayName())
	}
}
