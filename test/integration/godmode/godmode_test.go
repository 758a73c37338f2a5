// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

//go:build integration

package godmode_test

import (
	"context"
	"time"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Trux13/oxide-plugins/internal/godmode"
	"github.com/Trux13/oxide-plugins/internal/host"
	"github.com/Trux13/oxide-plugins/internal/store"
)

// backend opens a fresh data store and returns its cleanup.
type backend func(ctx context.Context) (store.DataStore, func())

func fileBackend(ctx context.Context) (store.DataStore, func()) {
	data, err := store.Open(ctx, store.Config{Driver: store.DriverFile, Dir: GinkgoT().TempDir()})
	Expect(err).NotTo(HaveOccurred())
	return data, func() { _ = data.Close() }
}

func sqliteBackend(ctx context.Context) (store.DataStore, func()) {
	data, err := store.Open(ctx, store.Config{Driver: store.DriverSQLite, Dir: GinkgoT().TempDir()})
	Expect(err).NotTo(HaveOccurred())
	return data, func() { _ = data.Close() }
}

func redisBackend(ctx context.Context) (store.DataStore, func()) {
	mr := miniredis.RunT(GinkgoT())
	data, err := store.Open(ctx, store.Config{Driver: store.DriverRedis, URL: "redis://" + mr.Addr()})
	Expect(err).NotTo(HaveOccurred())
	return data, func() { _ = data.Close() }
}

func postgresBackend(ctx context.Context) (store.DataStore, func()) {
	container, err := postgres.Run(ctx,
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

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	Expect(err).NotTo(HaveOccurred())

	data, err := store.Open(ctx, store.Config{Driver: store.DriverPostgres, URL: connStr})
	Expect(err).NotTo(HaveOccurred())
	return data, func() {
		_ = data.Close()
		_ = container.Terminate(ctx)
	}
}

var _ = Describe("Godmode on a full host", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	DescribeTable("protected players survive a restart",
		func(open backend) {
			data, cleanup := open(ctx)
			DeferCleanup(cleanup)

			first := startServer(ctx, data, godmode.DefaultSettings())
			admin := first.join("1", "Alice")
			first.join("2", "Bob")

			first.chat(admin, "/god Bob")
			Expect(first.replies("1")).To(ContainElement("You have enabled godmode for Bob"))
			Expect(first.replies("2")).To(ContainElement("Your godmode has been enabled by Alice"))
			first.stop()

			second := startServer(ctx, data, godmode.DefaultSettings())
			second.join("1", "Alice")
			bob := second.join("2", "Bob")
			Expect(bob.DisplayName()).To(Equal("[God] Bob"))

			dealt := second.host.Damage(bob, &host.HitInfo{DamageTypes: host.DamageTypeList{host.DamageBullet: 40}})
			Expect(dealt).To(BeZero())
			Expect(bob.Vitals().Get(host.Health).Value).To(Equal(100.0))
			second.stop()
		},
		Entry("file", backend(fileBackend)),
		Entry("sqlite", backend(sqliteBackend)),
		Entry("redis", backend(redisBackend)),
		Entry("postgres", Label("docker"), backend(postgresBackend)),
	)

	Describe("periodic saves", func() {
		It("writes the snapshot on the save interval", func() {
			data := store.NewMemoryStore()
			s := startServer(ctx, data, godmode.DefaultSettings())
			admin := s.join("1", "Alice")
			s.chat(admin, "/god")

			records, err := godmode.NewGateway(data).Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(BeEmpty())

			s.advance(time.Minute)

			records, err = godmode.NewGateway(data).Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(ConsistOf(godmode.PlayerStatusRecord{UserID: "1", Name: "Alice"}))
			s.stop()
		})
	})

	Describe("looting", func() {
		It("refuses to let anyone loot a protected player", func() {
			s := startServer(ctx, store.NewMemoryStore(), godmode.DefaultSettings())
			admin := s.join("1", "Alice")
			bob := s.join("2", "Bob")
			s.chat(admin, "/god")
			s.replies("1")

			Expect(s.host.TryLoot(bob, admin)).To(BeFalse())
			Expect(bob.IsLooting()).To(BeFalse())
			s.advance(100 * time.Millisecond)
			Expect(s.replies("2")).To(ContainElement("You are not allowed to loot a player with godmode"))
			s.stop()
		})
	})
})
