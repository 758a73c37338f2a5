// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

// Package xdg resolves XDG Base Directory paths for the oxide server.
package xdg

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const appName = "oxide"

func baseDir(env string, fallback ...string) string {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName)
	}
	parts := append([]string{os.Getenv("HOME")}, fallback...)
	return filepath.Join(append(parts, appName)...)
}

// ConfigDir returns $XDG_CONFIG_HOME/oxide, falling back to ~/.config/oxide.
func ConfigDir() string {
	return baseDir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns $XDG_DATA_HOME/oxide, falling back to ~/.local/share/oxide.
// Plugin data files live here unless the store is configured elsewhere.
func DataDir() string {
	return baseDir("XDG_DATA_HOME", ".local", "share")
}

// StateDir returns $XDG_STATE_HOME/oxide, falling back to ~/.local/state/oxide.
func StateDir() string {
	return baseDir("XDG_STATE_HOME", ".local", "state")
}

// LangDir returns the directory holding per-locale message overrides.
func LangDir() string {
	return filepath.Join(ConfigDir(), "lang")
}

// EnsureDir creates a directory and its parents with 0700 permissions.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return oops.With("path", path).Wrapf(err, "create directory")
	}
	return nil
}
