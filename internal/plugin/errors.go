// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package plugin

import (
	"github.com/samber/oops"

	"github.com/Trux13/oxide-plugins/pkg/errutil"
)

// Error codes for plugin runtime failures.
const (
	CodeUnsupportedHost    = "UNSUPPORTED_HOST"
	CodeAlreadyLoaded      = "PLUGIN_ALREADY_LOADED"
	CodeNotLoaded          = "PLUGIN_NOT_LOADED"
	CodeHookNotImplemented = "HOOK_NOT_IMPLEMENTED"
	CodeLoadFailed         = "PLUGIN_LOAD_FAILED"
	CodeUnloadFailed       = "PLUGIN_UNLOAD_FAILED"
)

// ErrUnsupportedHost reports that a plugin cannot run on the host's game.
// Returned from Loaded, it aborts the whole load.
func ErrUnsupportedHost(plugin, game string) error {
	return oops.Code(CodeUnsupportedHost).
		With("plugin", plugin).
		With("game", game).
		Errorf("plugin %s does not support game %q", plugin, game)
}

// IsUnsupportedHost reports whether err carries the UNSUPPORTED_HOST code.
func IsUnsupportedHost(err error) bool {
	return errutil.HasCode(err, CodeUnsupportedHost)
}
