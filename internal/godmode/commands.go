// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package godmode

import (
	"context"

	"github.com/Trux13/oxide-plugins/internal/command"
)

// registerCommands adds the god and gods chat commands. Permission checks
// happen in the Toggler so refusals get the localized reply.
func (p *Plugin) registerCommands(reg *command.Registry) error {
	entries := []command.CommandEntry{
		{
			Name:    "god",
			Handler: p.godCommand,
			Help:    "Toggle godmode for yourself or another player",
			Usage:   "god [player]",
			Source:  Name,
		},
		{
			Name:    "gods",
			Handler: p.godsCommand,
			Help:    "List players with godmode enabled",
			Usage:   "gods",
			Source:  Name,
		},
	}
	for _, e := range entries {
		if err := reg.Register(e); err != nil {
			return err
		}
	}
	return nil
}

func (p *Plugin) godCommand(ctx context.Context, exec *command.CommandExecution) error {
	caller := exec.Player.ID()
	if len(exec.Args) == 0 {
		return p.replyError(exec, p.toggler.ToggleSelf(ctx, caller))
	}
	return p.replyError(exec, p.toggler.ToggleOther(ctx, caller, exec.RawArgs))
}

func (p *Plugin) godsCommand(ctx context.Context, exec *command.CommandExecution) error {
	return p.replyError(exec, p.toggler.ListProtected(ctx, exec.Player.ID()))
}

// replyError answers expected refusals with a localized message and passes
// anything else up to the dispatcher.
func (p *Plugin) replyError(exec *command.CommandExecution, err error) error {
	switch {
	case err == nil:
		return nil
	case IsNotAuthorized(err):
		p.msg.reply(exec.Player, MsgNotAllowed)
		return nil
	case IsPlayerNotFound(err):
		p.msg.reply(exec.Player, MsgPlayerNotFound)
		return nil
	default:
		return err
	}
}
