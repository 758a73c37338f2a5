// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/Trux13/oxide-plugins/internal/config"
	"github.com/Trux13/oxide-plugins/internal/godmode"
	"github.com/Trux13/oxide-plugins/internal/store"
)

// NewGodsCmd creates the gods subcommand.
func NewGodsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "gods",
		Short: "List players with saved godmode",
		Long: `Read the persisted Godmode snapshot from the configured data store and
print the protected players. The server does not need to be running.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGods(cmd, store.Open, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the snapshot as JSON")
	cmd.Flags().String("data-dir", "", "data directory (default: XDG_DATA_HOME/oxide)")
	cmd.Flags().String("store-driver", store.DriverFile, "data store driver")
	cmd.Flags().String("store-url", "", "data store connection URL")
	return cmd
}

type storeOpener func(ctx context.Context, cfg store.Config) (store.DataStore, error)

func runGods(cmd *cobra.Command, open storeOpener, asJSON bool) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return oops.With("config", configFile).Wrapf(err, "load configuration")
	}

	ctx := cmd.Context()
	data, err := open(ctx, cfg.Store)
	if err != nil {
		return oops.With("driver", cfg.Store.Driver).Wrapf(err, "open data store")
	}
	defer func() { _ = data.Close() }()

	records, err := godmode.NewGateway(data).Load(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if records == nil {
			records = []godmode.PlayerStatusRecord{}
		}
		return oops.Wrapf(enc.Encode(records), "encode snapshot")
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		_, err := fmt.Fprintln(out, "No players have godmode.")
		return err
	}
	for _, r := range records {
		if _, err := fmt.Fprintf(out, "%s [%s]\n", r.Name, r.UserID); err != nil {
			return err
		}
	}
	return nil
}
