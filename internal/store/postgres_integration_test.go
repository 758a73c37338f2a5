// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

//go:build integration

package store_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Trux13/oxide-plugins/internal/store"
)

type god struct {
	UserID string `json:"UserId"`
	Name   string `json:"Name"`
}

type snapshot struct {
	Gods []god `json:"Gods"`
}

var _ = Describe("PostgresStore", func() {
	var (
		ctx       context.Context
		container *postgres.PostgresContainer
		connStr   string
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		container, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("oxide_test"),
			postgres.WithUsername("oxide"),
			postgres.WithPassword("oxide"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		Expect(err).NotTo(HaveOccurred())

		connStr, err = container.ConnectionString(ctx, "sslmode=disable")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = container.Terminate(ctx)
	})

	It("migrates on open and round-trips objects", func() {
		s, err := store.OpenPostgresStore(ctx, connStr)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		var missing snapshot
		Expect(s.ReadObject(ctx, "Godmode", &missing)).To(MatchError(store.ErrNotFound))

		in := snapshot{Gods: []god{{UserID: "76561198000000001", Name: "Alice"}}}
		Expect(s.WriteObject(ctx, "Godmode", in)).To(Succeed())

		var out snapshot
		Expect(s.ReadObject(ctx, "Godmode", &out)).To(Succeed())
		Expect(out).To(Equal(in))
	})

	It("reports the applied migration version", func() {
		m, err := store.NewMigrator(connStr)
		Expect(err).NotTo(HaveOccurred())
		defer m.Close()

		pending, err := m.PendingMigrations()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending).To(Equal([]uint{1}))

		Expect(m.Up()).To(Succeed())
		version, dirty, err := m.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(uint(1)))
		Expect(dirty).To(BeFalse())

		Expect(m.Down()).To(Succeed())
		version, _, err = m.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(uint(0)))
	})

	It("treats a dropped table as not found", func() {
		s, err := store.OpenPostgresStore(ctx, connStr)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		m, err := store.NewMigrator(connStr)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Down()).To(Succeed())
		Expect(m.Close()).To(Succeed())

		var out snapshot
		Expect(s.ReadObject(ctx, "Godmode", &out)).To(MatchError(store.ErrNotFound))
	})
})
