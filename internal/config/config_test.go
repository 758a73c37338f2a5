// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Trux13/oxide-plugins/internal/config"
	"github.com/Trux13/oxide-plugins/internal/godmode"
	"github.com/Trux13/oxide-plugins/internal/store"
	"github.com/Trux13/oxide-plugins/pkg/errutil"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "oxide.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func newFlags(t *testing.T) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("log-format", config.DefaultLogFormat, "")
	fs.String("console-addr", config.DefaultConsoleAddr, "")
	fs.String("store-driver", store.DriverFile, "")
	fs.Duration("tick-rate", 100*time.Millisecond, "")
	fs.Bool("verbose", false, "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "rust", cfg.Server.Game)
	assert.Equal(t, 100*time.Millisecond, cfg.Server.TickRate.Std())
	assert.Equal(t, 5*time.Minute, cfg.Server.SaveInterval.Std())
	assert.Equal(t, store.DriverFile, cfg.Store.Driver)
	assert.Equal(t, cfg.DataDir, cfg.Store.Dir)
	assert.Equal(t, godmode.DefaultSettings(), cfg.Plugins.Godmode)
	assert.Contains(t, cfg.Access.Groups, "admin")
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log_format: text
data_dir: /srv/oxide
server:
  tick_rate: 50ms
  save_interval: "0"
store:
  driver: memory
access:
  users:
    "76561198000000001":
      groups: [admin]
plugins:
  godmode:
    prefix_format: "[Admin]"
    can_be_hurt: true
`)

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 50*time.Millisecond, cfg.Server.TickRate.Std())
	assert.Zero(t, cfg.Server.SaveInterval.Std())
	assert.Equal(t, 3*time.Second, cfg.Server.SnapshotDelay.Std(), "unset keys keep defaults")
	assert.Equal(t, store.DriverMemory, cfg.Store.Driver)
	assert.Equal(t, "/srv/oxide", cfg.Store.Dir)
	assert.Equal(t, []string{"admin"}, cfg.Access.Users["76561198000000001"].Groups)

	assert.Equal(t, "[Admin]", cfg.Plugins.Godmode.PrefixFormat)
	assert.True(t, cfg.Plugins.Godmode.CanBeHurt)
	assert.True(t, cfg.Plugins.Godmode.InfiniteRun, "unset plugin keys keep defaults")
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
log_format: json
store:
  driver: redis
  url: redis://file:6379/0
`)
	t.Setenv("OXIDE_LOG_FORMAT", "text")
	t.Setenv("OXIDE_STORE_URL", "redis://env:6379/1")
	t.Setenv("OXIDE_CONSOLE_ADDR", "0.0.0.0:28016")

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "redis://env:6379/1", cfg.Store.URL)
	assert.Equal(t, "0.0.0.0:28016", cfg.Console.Addr)
}

func TestLoad_ChangedFlagsOverrideEverything(t *testing.T) {
	path := writeConfig(t, "console:\n  addr: 127.0.0.1:4000\nlog_format: text\n")
	t.Setenv("OXIDE_LOG_FORMAT", "text")

	fs := newFlags(t)
	require.NoError(t, fs.Parse([]string{"--log-format", "json", "--tick-rate", "250ms", "--verbose"}))

	cfg, err := config.Load(path, fs)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 250*time.Millisecond, cfg.Server.TickRate.Std())
	assert.Equal(t, "127.0.0.1:4000", cfg.Console.Addr, "unchanged flag must not override the file")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown key", body: "colour: blue\n"},
		{name: "bad log format", body: "log_format: xml\n"},
		{name: "bad store driver", body: "store:\n  driver: mongo\n"},
		{name: "bad duration", body: "server:\n  tick_rate: soon\n"},
		{name: "wrong type", body: "plugins:\n  godmode:\n    can_be_hurt: maybe\n"},
		{name: "unknown plugin", body: "plugins:\n  doors:\n    enabled: true\n"},
		{name: "redis without url", body: "store:\n  driver: redis\n"},
		{name: "non-positive tick", body: "server:\n  tick_rate: 0s\n"},
		{name: "malformed yaml", body: "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.body), nil)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, config.CodeInvalidConfig)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, config.CodeInvalidConfig)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, ""), nil)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultLogFormat, cfg.LogFormat)
}

func TestDecode(t *testing.T) {
	cfg := config.Default()
	cfg.Plugins.Godmode.PrefixEnabled = false

	t.Run("known plugin name is case-insensitive", func(t *testing.T) {
		settings := godmode.DefaultSettings()
		require.NoError(t, cfg.Decode("Godmode", &settings))
		assert.False(t, settings.PrefixEnabled)
		assert.Equal(t, "[God]", settings.PrefixFormat)
	})

	t.Run("unknown plugin keeps defaults", func(t *testing.T) {
		type doorSettings struct {
			AutoClose bool `json:"auto_close"`
		}
		settings := doorSettings{AutoClose: true}
		require.NoError(t, cfg.Decode("Doors", &settings))
		assert.True(t, settings.AutoClose)
	})

	t.Run("incompatible target fails", func(t *testing.T) {
		var wrong []string
		err := cfg.Decode("Godmode", &wrong)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, config.CodeInvalidConfig)
	})
}

func TestValidate(t *testing.T) {
	t.Run("file store needs a directory", func(t *testing.T) {
		cfg := config.Default()
		cfg.Store.Dir = ""
		require.Error(t, cfg.Validate())
	})

	t.Run("memory store needs nothing", func(t *testing.T) {
		cfg := config.Default()
		cfg.Store.Driver = store.DriverMemory
		assert.NoError(t, cfg.Validate())
	})

	t.Run("negative save interval", func(t *testing.T) {
		cfg := config.Default()
		cfg.Store.Driver = store.DriverMemory
		cfg.Server.SaveInterval = config.Duration(-time.Second)
		require.Error(t, cfg.Validate())
	})
}
