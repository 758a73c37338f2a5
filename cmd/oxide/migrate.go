// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/Trux13/oxide-plugins/internal/config"
	"github.com/Trux13/oxide-plugins/internal/store"
)

// migrator is the part of store.Migrator the migrate command uses.
type migrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
	PendingMigrations() ([]uint, error)
	Close() error
}

type migratorFactory func(databaseURL string) (migrator, error)

func newStoreMigrator(databaseURL string) (migrator, error) {
	m, err := store.NewMigrator(databaseURL)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return newMigrateCmd(newStoreMigrator)
}

func newMigrateCmd(factory migratorFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the postgres data store schema",
		Long: `Apply or inspect migrations of the postgres data store. The serve command
applies pending migrations on start; this command is for operators who
migrate ahead of a deploy.`,
	}
	cmd.PersistentFlags().String("store-url", "", "postgres connection URL")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, factory, func(m migrator) error {
				cmd.Println("Running migrations...")
				if err := m.Up(); err != nil {
					return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
				}
				cmd.Println("Migrations completed successfully")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, factory, func(m migrator) error {
				if err := m.Down(); err != nil {
					return oops.Code("MIGRATION_FAILED").With("operation", "roll back migrations").Wrap(err)
				}
				cmd.Println("Migrations rolled back")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the schema version and pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, factory, func(m migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				pending, err := m.PendingMigrations()
				if err != nil {
					return err
				}
				cmd.Printf("version: %d\n", version)
				cmd.Printf("dirty: %t\n", dirty)
				cmd.Printf("pending: %d\n", len(pending))
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(cmd *cobra.Command, factory migratorFactory, fn func(migrator) error) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return oops.With("config", configFile).Wrapf(err, "load configuration")
	}
	if cfg.Store.URL == "" {
		return oops.Code(config.CodeInvalidConfig).Errorf("store.url (or OXIDE_STORE_URL) is required")
	}

	m, err := factory(cfg.Store.URL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer func() { _ = m.Close() }()

	return fn(m)
}
