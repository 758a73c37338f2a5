// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package godmode

import (
	"github.com/samber/oops"

	"github.com/Trux13/oxide-plugins/internal/plugin"
	"github.com/Trux13/oxide-plugins/pkg/errutil"
)

// Error codes returned by the toggle operations.
const (
	CodeNotAuthorized  = "NOT_AUTHORIZED"
	CodePlayerNotFound = "PLAYER_NOT_FOUND"
)

// ErrNotAuthorized reports a caller without the godmode permission.
func ErrNotAuthorized(callerID string) error {
	return oops.Code(CodeNotAuthorized).
		With("player_id", callerID).
		With("permission", PermissionAllowed).
		Errorf("player %s lacks %s", callerID, PermissionAllowed)
}

// ErrPlayerNotFound reports a name or id that matched no connected player.
func ErrPlayerNotFound(query string) error {
	return oops.Code(CodePlayerNotFound).
		With("query", query).
		Errorf("no player matches %q", query)
}

// ErrUnsupportedHost reports a host game the plugin cannot run on.
func ErrUnsupportedHost(game string) error {
	return plugin.ErrUnsupportedHost(Name, game)
}

// IsNotAuthorized reports whether err carries the NOT_AUTHORIZED code.
func IsNotAuthorized(err error) bool {
	return errutil.HasCode(err, CodeNotAuthorized)
}

// IsPlayerNotFound reports whether err carries the PLAYER_NOT_FOUND code.
func IsPlayerNotFound(err error) bool {
	return errutil.HasCode(err, CodePlayerNotFound)
}

// IsUnsupportedHost reports whether err carries the UNSUPPORTED_HOST code.
func IsUnsupportedHost(err error) bool {
	return plugin.IsUnsupportedHost(err)
}
