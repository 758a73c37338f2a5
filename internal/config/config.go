// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

// Package config loads the server configuration from defaults, a YAML file,
// environment variables and command-line flags, in that order of precedence.
package config

import (
	"encoding/json"
	"strings"

	"github.com/Trux13/oxide-plugins/internal/access"
	"github.com/Trux13/oxide-plugins/internal/command"
	"github.com/Trux13/oxide-plugins/internal/godmode"
	"github.com/Trux13/oxide-plugins/internal/host"
	"github.com/Trux13/oxide-plugins/internal/logging"
	"github.com/Trux13/oxide-plugins/internal/store"
	"github.com/Trux13/oxide-plugins/internal/xdg"
	"github.com/samber/oops"
)

// CodeInvalidConfig marks configuration that failed to load or validate.
const CodeInvalidConfig = "INVALID_CONFIG"

// Default listen addresses.
const (
	DefaultConsoleAddr = "127.0.0.1:28016"
	DefaultMetricsAddr = "127.0.0.1:9100"
	DefaultLogFormat   = "json"
	DefaultLogLevel    = "info"
)

// Config is the complete server configuration.
type Config struct {
	// LogFormat is json or text.
	LogFormat string `koanf:"log_format" json:"log_format,omitempty" env:"OXIDE_LOG_FORMAT" jsonschema:"enum=json,enum=text"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `koanf:"log_level" json:"log_level,omitempty" env:"OXIDE_LOG_LEVEL" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	// DataDir holds plugin data files and defaults the store directory.
	DataDir string `koanf:"data_dir" json:"data_dir,omitempty" env:"OXIDE_DATA_DIR"`
	// LangDir holds per-locale message overrides.
	LangDir string `koanf:"lang_dir" json:"lang_dir,omitempty" env:"OXIDE_LANG_DIR"`

	Server    ServerConfig              `koanf:"server" json:"server,omitempty"`
	Console   ListenConfig              `koanf:"console" json:"console,omitempty" envPrefix:"OXIDE_CONSOLE_"`
	Metrics   ListenConfig              `koanf:"metrics" json:"metrics,omitempty" envPrefix:"OXIDE_METRICS_"`
	Store     store.Config              `koanf:"store" json:"store,omitempty"`
	Access    access.Config             `koanf:"access" json:"access,omitempty"`
	RateLimit command.RateLimiterConfig `koanf:"rate_limit" json:"rate_limit,omitempty"`
	Plugins   PluginsConfig             `koanf:"plugins" json:"plugins,omitempty"`
}

// ServerConfig tunes the host loop.
type ServerConfig struct {
	Game          string   `koanf:"game" json:"game,omitempty"`
	TickRate      Duration `koanf:"tick_rate" json:"tick_rate,omitempty"`
	SaveInterval  Duration `koanf:"save_interval" json:"save_interval,omitempty"`
	SnapshotDelay Duration `koanf:"snapshot_delay" json:"snapshot_delay,omitempty"`
}

// ListenConfig is a TCP listen address. An empty address disables the listener.
type ListenConfig struct {
	Addr string `koanf:"addr" json:"addr,omitempty" env:"ADDR"`
}

// PluginsConfig holds one settings section per bundled plugin, keyed by the
// lower-cased plugin name.
type PluginsConfig struct {
	Godmode godmode.Settings `koanf:"godmode" json:"godmode"`
}

// Default returns the built-in configuration rooted at the XDG directories.
// The store directory is left empty and follows DataDir once loaded.
func Default() *Config {
	storeCfg := store.DefaultConfig("")
	return &Config{
		LogFormat: DefaultLogFormat,
		LogLevel:  DefaultLogLevel,
		DataDir:   xdg.DataDir(),
		LangDir:   xdg.LangDir(),
		Server: ServerConfig{
			Game:          host.DefaultGame,
			TickRate:      Duration(host.DefaultTickRate),
			SaveInterval:  Duration(host.DefaultSaveInterval),
			SnapshotDelay: Duration(host.DefaultSnapshotDelay),
		},
		Console:   ListenConfig{Addr: DefaultConsoleAddr},
		Metrics:   ListenConfig{Addr: DefaultMetricsAddr},
		Store:     storeCfg,
		Access:    access.DefaultConfig(),
		RateLimit: command.RateLimiterConfig{},
		Plugins: PluginsConfig{
			Godmode: godmode.DefaultSettings(),
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if !logging.ValidFormat(c.LogFormat) {
		return oops.Code(CodeInvalidConfig).
			With("log_format", c.LogFormat).
			Errorf("log_format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return oops.Code(CodeInvalidConfig).
			With("log_level", c.LogLevel).
			Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	if c.Server.Game == "" {
		return oops.Code(CodeInvalidConfig).Errorf("server.game is required")
	}
	if c.Server.TickRate.Std() <= 0 {
		return oops.Code(CodeInvalidConfig).
			With("tick_rate", c.Server.TickRate.String()).
			Errorf("server.tick_rate must be positive")
	}
	if c.Server.SaveInterval.Std() < 0 || c.Server.SnapshotDelay.Std() < 0 {
		return oops.Code(CodeInvalidConfig).Errorf("server intervals cannot be negative")
	}
	switch c.Store.Driver {
	case store.DriverFile, store.DriverSQLite:
		if c.Store.Dir == "" {
			return oops.Code(CodeInvalidConfig).
				With("driver", c.Store.Driver).
				Errorf("store.dir is required for the %s driver", c.Store.Driver)
		}
	case store.DriverRedis, store.DriverPostgres:
		if c.Store.URL == "" {
			return oops.Code(CodeInvalidConfig).
				With("driver", c.Store.Driver).
				Errorf("store.url is required for the %s driver", c.Store.Driver)
		}
	case store.DriverMemory:
	default:
		return oops.Code(CodeInvalidConfig).
			With("driver", c.Store.Driver).
			Errorf("unknown store driver %q", c.Store.Driver)
	}
	return nil
}

// derive fills values that default from other settings.
func (c *Config) derive() {
	if c.Store.Dir == "" {
		c.Store.Dir = c.DataDir
	}
}

// Decode implements plugin.SettingsSource. It fills v from the plugin's
// section; plugins without a section keep their defaults.
func (c *Config) Decode(pluginName string, v any) error {
	raw, err := json.Marshal(c.Plugins)
	if err != nil {
		return oops.Code(CodeInvalidConfig).Wrapf(err, "encode plugin settings")
	}
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(raw, &sections); err != nil {
		return oops.Code(CodeInvalidConfig).Wrapf(err, "decode plugin settings")
	}
	section, ok := sections[strings.ToLower(pluginName)]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(section, v); err != nil {
		return oops.Code(CodeInvalidConfig).
			With("plugin", pluginName).
			Wrapf(err, "decode settings for %s", pluginName)
	}
	return nil
}
