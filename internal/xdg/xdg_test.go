// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package xdg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirs(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		value string
		fn    func() string
		want  string
	}{
		{name: "config from env", env: "XDG_CONFIG_HOME", value: "/custom/config", fn: ConfigDir, want: "/custom/config/oxide"},
		{name: "config default", env: "XDG_CONFIG_HOME", fn: ConfigDir, want: "/home/testuser/.config/oxide"},
		{name: "data from env", env: "XDG_DATA_HOME", value: "/custom/data", fn: DataDir, want: "/custom/data/oxide"},
		{name: "data default", env: "XDG_DATA_HOME", fn: DataDir, want: "/home/testuser/.local/share/oxide"},
		{name: "state from env", env: "XDG_STATE_HOME", value: "/custom/state", fn: StateDir, want: "/custom/state/oxide"},
		{name: "state default", env: "XDG_STATE_HOME", fn: StateDir, want: "/home/testuser/.local/state/oxide"},
		{name: "lang under config", env: "XDG_CONFIG_HOME", value: "/etc/xdg", fn: LangDir, want: "/etc/xdg/oxide/lang"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", "/home/testuser")
			t.Setenv(tt.env, tt.value)
			assert.Equal(t, tt.want, tt.fn())
		})
	}
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b")

	require.NoError(t, EnsureDir(path))
	require.NoError(t, EnsureDir(path), "existing directory is fine")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

func TestEnsureDir_FileInTheWay(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	assert.Error(t, EnsureDir(filepath.Join(file, "child")))
}
