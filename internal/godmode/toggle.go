// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package godmode

import (
	"context"
	"fmt"
	"sort"

	"github.com/Trux13/oxide-plugins/internal/access"
	"github.com/Trux13/oxide-plugins/internal/host"
	"github.com/Trux13/oxide-plugins/internal/lang"
)

// PermissionAllowed gates every godmode command.
const PermissionAllowed = "godmode.allowed"

// Directory finds connected players.
type Directory interface {
	GetPlayer(id string) (*host.Player, bool)
	FindPlayer(nameOrID string) (*host.Player, bool)
}

// Toggler changes protected status on behalf of a command caller.
type Toggler struct {
	registry    *Registry
	applier     *Applier
	interceptor *Interceptor
	players     Directory
	perms       access.Checker
	msg         messenger
	metrics     *Metrics
}

// NewToggler wires the toggle operations.
func NewToggler(registry *Registry, applier *Applier, interceptor *Interceptor,
	players Directory, perms access.Checker, catalog *lang.Catalog, metrics *Metrics,
) *Toggler {
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Toggler{
		registry:    registry,
		applier:     applier,
		interceptor: interceptor,
		players:     players,
		perms:       perms,
		msg:         messenger{catalog: catalog},
		metrics:     metrics,
	}
}

// caller checks the permission and resolves the caller's player.
func (t *Toggler) caller(callerID string) (*host.Player, error) {
	if !t.perms.UserHasPermission(callerID, PermissionAllowed) {
		return nil, ErrNotAuthorized(callerID)
	}
	p, ok := t.players.GetPlayer(callerID)
	if !ok {
		return nil, ErrPlayerNotFound(callerID)
	}
	return p, nil
}

// toggle flips p's status and reports whether p is now protected.
func (t *Toggler) toggle(p *host.Player) bool {
	enable := !t.registry.IsProtected(p.ID())
	if enable {
		t.registry.Activate(p.ID(), t.applier.Strip(p.DisplayName()))
		t.metrics.Toggles.WithLabelValues("enabled").Inc()
	} else {
		t.registry.Deactivate(p.ID())
		t.metrics.Toggles.WithLabelValues("disabled").Inc()
	}
	t.applier.Apply(p, enable)
	t.interceptor.SyncInterest()
	return enable
}

// ToggleSelf flips the caller's own protected status.
func (t *Toggler) ToggleSelf(_ context.Context, playerID string) error {
	p, err := t.caller(playerID)
	if err != nil {
		return err
	}
	if t.toggle(p) {
		t.msg.reply(p, MsgEnabled)
	} else {
		t.msg.reply(p, MsgDisabled)
	}
	return nil
}

// ToggleOther flips the protected status of the player matching target and
// tells both players.
func (t *Toggler) ToggleOther(_ context.Context, callerID, target string) error {
	caller, err := t.caller(callerID)
	if err != nil {
		return err
	}
	p, ok := t.players.FindPlayer(target)
	if !ok {
		return ErrPlayerNotFound(target)
	}

	callerName := t.applier.Strip(caller.DisplayName())
	if t.toggle(p) {
		t.msg.reply(caller, MsgEnabledFor, t.applier.Strip(p.DisplayName()))
		t.msg.reply(p, MsgEnabledBy, callerName)
	} else {
		t.msg.reply(caller, MsgDisabledFor, p.DisplayName())
		t.msg.reply(p, MsgDisabledBy, callerName)
	}
	return nil
}

// ListProtected replies with every protected player as "Name [id]".
func (t *Toggler) ListProtected(_ context.Context, callerID string) error {
	caller, err := t.caller(callerID)
	if err != nil {
		return err
	}

	t.msg.reply(caller, MsgGodlist)
	records := t.registry.List()
	if len(records) == 0 {
		t.msg.reply(caller, MsgGodlistNone)
		return nil
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	for _, rec := range records {
		caller.Reply(fmt.Sprintf("%s [%s]", rec.Name, rec.UserID))
	}
	return nil
}
