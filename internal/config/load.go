// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// flagKeys maps command-line flag names to configuration keys. Flags not
// listed here are not configuration.
var flagKeys = map[string]string{
	"console-addr":   "console.addr",
	"metrics-addr":   "metrics.addr",
	"data-dir":       "data_dir",
	"lang-dir":       "lang_dir",
	"log-format":     "log_format",
	"log-level":      "log_level",
	"store-driver":   "store.driver",
	"store-url":      "store.url",
	"game":           "server.game",
	"tick-rate":      "server.tick_rate",
	"save-interval":  "server.save_interval",
	"snapshot-delay": "server.snapshot_delay",
}

// Load builds the configuration. Defaults are overridden by the YAML file at
// path (skipped when empty), then by OXIDE_* environment variables, then by
// flags the user set explicitly. The result is validated.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	cfg := Default()

	if path != "" {
		k := koanf.New(".")
		provider := file.Provider(path)
		data, err := provider.ReadBytes()
		if err != nil {
			return nil, oops.Code(CodeInvalidConfig).With("path", path).Wrapf(err, "read config file")
		}
		if err := ValidateSchema(data); err != nil {
			return nil, oops.Code(CodeInvalidConfig).With("path", path).Wrap(err)
		}
		if err := k.Load(provider, yaml.Parser()); err != nil {
			return nil, oops.Code(CodeInvalidConfig).With("path", path).Wrapf(err, "parse config file")
		}
		if err := k.Unmarshal("", cfg); err != nil {
			return nil, oops.Code(CodeInvalidConfig).With("path", path).Wrapf(err, "decode config file")
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, oops.Code(CodeInvalidConfig).Wrapf(err, "parse environment")
	}

	if flags != nil {
		k := koanf.New(".")
		provider := posflag.ProviderWithFlag(flags, ".", nil, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code(CodeInvalidConfig).Wrapf(err, "read flags")
		}
		if err := k.Unmarshal("", cfg); err != nil {
			return nil, oops.Code(CodeInvalidConfig).Wrapf(err, "decode flags")
		}
	}

	cfg.derive()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
