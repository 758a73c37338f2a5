// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

// Package access provides plugin permissions for players.
//
// Permissions are dotted, lowercase names owned by the plugin that registers
// them (e.g. "godmode.allowed"). Grants are glob patterns over those names,
// attached to users directly or to groups users belong to. Every player is an
// implicit member of the default group.
package access

// Checker answers permission queries for a player id.
type Checker interface {
	// UserHasPermission reports whether the user holds a registered permission.
	// Unregistered permissions are never held.
	UserHasPermission(userID, permission string) bool
}

// Well-known group names.
const (
	GroupDefault = "default"
	GroupAdmin   = "admin"
)

// Config seeds groups and user grants, typically from the config file.
type Config struct {
	// Groups maps a group name to the permission patterns it grants.
	Groups map[string][]string `koanf:"groups" json:"groups,omitempty"`
	// Users maps a player id to its groups and direct grants.
	Users map[string]UserConfig `koanf:"users" json:"users,omitempty"`
}

// UserConfig is the per-player part of Config.
type UserConfig struct {
	Groups      []string `koanf:"groups" json:"groups,omitempty"`
	Permissions []string `koanf:"permissions" json:"permissions,omitempty"`
}

// DefaultConfig returns the built-in groups: admin holds everything,
// default holds nothing.
func DefaultConfig() Config {
	return Config{
		Groups: map[string][]string{
			GroupDefault: {},
			GroupAdmin:   {"**"},
		},
	}
}
