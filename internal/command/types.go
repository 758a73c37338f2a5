// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

// Package command provides the chat command registry, parser, and dispatcher.
package command

import (
	"context"

	"github.com/Trux13/oxide-plugins/internal/host"
)

// CommandHandler is the function signature for command handlers.
//
//nolint:revive // stutter kept for symmetry with CommandEntry
type CommandHandler func(ctx context.Context, exec *CommandExecution) error

// CommandEntry represents a registered chat command.
//
//nolint:revive // stutter kept; Entry alone reads poorly at call sites
type CommandEntry struct {
	Name        string         // canonical name (e.g., "god")
	Handler     CommandHandler // handler invoked on the tick goroutine
	Permissions []string       // ALL required permissions (AND logic); empty means handler checks
	Help        string         // short description (one line)
	Usage       string         // usage pattern (e.g., "god [player]")
	Source      string         // owning plugin name
}

// GetPermissions returns a copy of the required permissions.
func (e CommandEntry) GetPermissions() []string {
	if len(e.Permissions) == 0 {
		return nil
	}
	out := make([]string, len(e.Permissions))
	copy(out, e.Permissions)
	return out
}

// CommandExecution provides context for command execution.
//
//nolint:revive // stutter kept for symmetry with CommandEntry
type CommandExecution struct {
	Player    *host.Player // caller; never nil
	InvokedAs string       // name as typed
	Args      []string     // whitespace-separated arguments
	RawArgs   string       // unparsed argument string
}
