// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package command

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Trux13/oxide-plugins/internal/access"
	"github.com/Trux13/oxide-plugins/internal/host"
)

var tracer = otel.Tracer("oxide/command")

// Dispatcher handles command parsing, permission checks, and execution.
type Dispatcher struct {
	registry    *Registry
	checker     access.Checker
	rateLimiter *RateLimiter // optional, can be nil
	metrics     *Metrics
}

// DispatcherOption configures a Dispatcher during construction.
type DispatcherOption func(*Dispatcher)

// WithRateLimiter configures the dispatcher to use rate limiting.
// If not provided, rate limiting is disabled.
func WithRateLimiter(rl *RateLimiter) DispatcherOption {
	return func(d *Dispatcher) {
		d.rateLimiter = rl
	}
}

// WithMetrics records dispatches in m. Without it the dispatcher keeps
// unregistered metrics of its own.
func WithMetrics(m *Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// NewDispatcher creates a new command dispatcher with the given registry
// and permission checker. Returns an error if either is nil.
func NewDispatcher(registry *Registry, checker access.Checker, opts ...DispatcherOption) (*Dispatcher, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	if checker == nil {
		return nil, ErrNilChecker
	}
	d := &Dispatcher{
		registry: registry,
		checker:  checker,
		metrics:  NewMetrics(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch parses and executes a chat command issued by player.
// It must be called on the host tick goroutine.
func (d *Dispatcher) Dispatch(ctx context.Context, player *host.Player, input string) (err error) {
	if player == nil {
		return ErrNoPlayer()
	}

	parsed, err := Parse(input)
	if err != nil {
		return err
	}

	obs := d.metrics.begin()
	defer obs.finish()

	ctx, span := tracer.Start(ctx, "command.execute",
		trace.WithAttributes(
			attribute.String("command.name", parsed.Name),
			attribute.String("player.id", player.ID()),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if d.rateLimiter != nil && !d.checker.UserHasPermission(player.ID(), PermissionRateLimitBypass) {
		allowed, cooldownMs := d.rateLimiter.Allow(player.ID())
		if !allowed {
			span.SetAttributes(attribute.Bool("command.rate_limited", true))
			span.SetAttributes(attribute.Int64("command.cooldown_ms", cooldownMs))
			obs.status = StatusRateLimited
			if entry, ok := d.registry.Get(parsed.Name); ok {
				obs.matched(entry)
			}
			err = ErrRateLimited(cooldownMs)
			return err
		}
	}

	entry, ok := d.registry.Get(parsed.Name)
	if !ok {
		obs.status = StatusNotFound
		err = ErrUnknownCommand(parsed.Name)
		return err
	}

	obs.matched(entry)
	span.SetAttributes(attribute.String("command.source", entry.Source))

	for _, perm := range entry.GetPermissions() {
		if !d.checker.UserHasPermission(player.ID(), perm) {
			obs.status = StatusPermissionDenied
			err = ErrPermissionDenied(parsed.Name, perm)
			return err
		}
	}

	err = entry.Handler(ctx, &CommandExecution{
		Player:    player,
		InvokedAs: parsed.Name,
		Args:      parsed.Args,
		RawArgs:   parsed.RawArgs,
	})
	if err != nil {
		obs.status = StatusError
		slog.WarnContext(ctx, "command execution failed",
			"command", parsed.Name,
			"player_id", player.ID(),
			"error", err,
		)
	}
	return err
}
