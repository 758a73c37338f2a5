// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package godmode

import (
	"github.com/Trux13/oxide-plugins/internal/host"
	"github.com/Trux13/oxide-plugins/internal/lang"
)

// Message keys.
const (
	MsgDisabled       = "Disabled"
	MsgDisabledBy     = "DisabledBy"
	MsgDisabledFor    = "DisabledFor"
	MsgEnabled        = "Enabled"
	MsgEnabledBy      = "EnabledBy"
	MsgEnabledFor     = "EnabledFor"
	MsgGodlist        = "Godlist"
	MsgGodlistNone    = "GodlistNone"
	MsgInformAttacker = "InformAttacker"
	MsgInformVictim   = "InformVictim"
	MsgNoLooting      = "NoLooting"
	MsgNotAllowed     = "NotAllowed"
	MsgPlayerNotFound = "PlayerNotFound"
)

// DefaultMessages are the built-in English texts. {0} is replaced by the
// first argument.
var DefaultMessages = map[string]string{
	MsgDisabled:       "You have disabled godmode",
	MsgDisabledBy:     "Your godmode has been disabled by {0}",
	MsgDisabledFor:    "You have disabled godmode for {0}",
	MsgEnabled:        "You have enabled godmode",
	MsgEnabledBy:      "Your godmode has been enabled by {0}",
	MsgEnabledFor:     "You have enabled godmode for {0}",
	MsgGodlist:        "Players with godmode enabled:",
	MsgGodlistNone:    "No players have godmode enabled",
	MsgInformAttacker: "{0} is in godmode and can't take any damage",
	MsgInformVictim:   "{0} just tried to deal damage to you",
	MsgNoLooting:      "You are not allowed to loot a player with godmode",
	MsgNotAllowed:     "You are not allowed to use this command",
	MsgPlayerNotFound: "No players were found with that name",
}

// messenger sends localized replies in the recipient's locale.
type messenger struct {
	catalog *lang.Catalog
}

func (m messenger) reply(p *host.Player, key string, args ...any) {
	p.Reply(m.catalog.Message(p.Locale(), Name, key, args...))
}
