// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Trux13/oxide-plugins/internal/config"
)

// NewSchemaCmd creates the schema subcommand.
func NewSchemaCmd() *cobra.Command {
	var check string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the configuration JSON schema",
		Long: `Print the JSON schema of the oxide.yaml configuration file, or validate a
file against it with --check.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if check != "" {
				return checkConfig(cmd, check)
			}
			data, err := config.GenerateSchema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().StringVar(&check, "check", "", "validate this config file instead of printing the schema")
	return cmd
}

func checkConfig(cmd *cobra.Command, path string) error {
	if _, err := config.Load(path, nil); err != nil {
		cmd.PrintErrln(config.FormatSchemaError(err))
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
	return err
}
