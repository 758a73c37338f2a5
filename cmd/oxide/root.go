// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the oxide CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oxide",
		Short: "Oxide - a game server plugin host",
		Long: `Oxide runs a simulated game host with behaviour plugins such as
Godmode, exposing a line console and Prometheus metrics.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewGodsCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSchemaCmd())

	return cmd
}
