// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Trux13/oxide-plugins/internal/access"
	"github.com/Trux13/oxide-plugins/internal/command"
	"github.com/Trux13/oxide-plugins/internal/config"
	"github.com/Trux13/oxide-plugins/internal/console"
	"github.com/Trux13/oxide-plugins/internal/godmode"
	"github.com/Trux13/oxide-plugins/internal/host"
	"github.com/Trux13/oxide-plugins/internal/lang"
	"github.com/Trux13/oxide-plugins/internal/logging"
	"github.com/Trux13/oxide-plugins/internal/observability"
	"github.com/Trux13/oxide-plugins/internal/plugin"
	"github.com/Trux13/oxide-plugins/internal/store"
	"github.com/Trux13/oxide-plugins/internal/xdg"
	"github.com/Trux13/oxide-plugins/pkg/errutil"
)

const (
	serviceName     = "oxide"
	shutdownTimeout = 10 * time.Second

	// rateLimitSweep is how often idle rate limiter buckets are dropped.
	rateLimitSweep = 5 * time.Minute

	// minStallThreshold is the shortest tick gap liveness tolerates.
	minStallThreshold = 5 * time.Second
)

// stallThreshold is how long the tick loop may go quiet before liveness
// fails: fifty ticks, but never under minStallThreshold.
func stallThreshold(tickRate time.Duration) time.Duration {
	return max(50*tickRate, minStallThreshold)
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the host, plugins, console and metrics server",
		Long: `Run the simulated game host with the bundled plugins. Plugin state is
saved on every server-save interval and when the process shuts down.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServeWithDeps(cmd.Context(), cmd, nil)
		},
	}

	flags := cmd.Flags()
	flags.String("console-addr", config.DefaultConsoleAddr, "console listen address (empty = disabled)")
	flags.String("metrics-addr", config.DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	flags.String("data-dir", "", "data directory (default: XDG_DATA_HOME/oxide)")
	flags.String("lang-dir", "", "message override directory (default: XDG_CONFIG_HOME/oxide/lang)")
	flags.String("log-format", config.DefaultLogFormat, "log format (json or text)")
	flags.String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	flags.String("store-driver", store.DriverFile, "data store driver (file, memory, redis, postgres, sqlite)")
	flags.String("store-url", "", "data store connection URL for redis and postgres")
	flags.String("game", host.DefaultGame, "game the host reports to plugins")
	flags.Duration("tick-rate", host.DefaultTickRate, "host tick interval")
	flags.Duration("save-interval", host.DefaultSaveInterval, "server-save interval (0 = only on shutdown)")
	flags.Duration("snapshot-delay", host.DefaultSnapshotDelay, "time a joining player spends receiving the world snapshot")

	return cmd
}

// bundledPlugins returns the plugins shipped with the binary.
func bundledPlugins() []plugin.Plugin {
	return []plugin.Plugin{godmode.New()}
}

// stack is the wired server.
type stack struct {
	cfg        *config.Config
	logger     *slog.Logger
	data       store.DataStore
	host       *host.Server
	perms      *access.Permissions
	commands   *command.Registry
	limiter    *command.RateLimiter
	dispatcher *command.Dispatcher
	manager    *plugin.Manager
	console    *console.Server
	obs        ObservabilityServer
	ready      atomic.Bool
}

func runServeWithDeps(ctx context.Context, cmd *cobra.Command, deps *ServeDeps) error {
	deps = deps.withDefaults()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return oops.With("config", configFile).Wrapf(err, "load configuration")
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.Setup(serviceName, version, cfg.LogFormat, cmd.ErrOrStderr(), logging.WithLevel(level))
	slog.SetDefault(logger)

	s, err := buildStack(ctx, cfg, logger, deps)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.data.Close(); closeErr != nil {
			errutil.LogError(logger, "failed to close data store", closeErr)
		}
	}()

	if err := s.manager.LoadAll(ctx, deps.Plugins()...); err != nil {
		return oops.Wrapf(err, "load plugins")
	}
	logger.Info("plugins loaded", "plugins", s.manager.ListPlugins())

	runErr := s.run(ctx, cmd, deps)

	// The tick loop has stopped, so this goroutine now owns plugin state.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.manager.UnloadAll(shutdownCtx); err != nil {
		errutil.LogError(logger, "failed to unload plugins", err)
		runErr = errors.Join(runErr, err)
	}
	if err := s.obs.Stop(shutdownCtx); err != nil {
		logger.Warn("error stopping observability server", "error", err)
	}

	logger.Info("shutdown complete")
	return runErr
}

// buildStack opens the store and wires every component. Plugins are not
// loaded yet.
func buildStack(ctx context.Context, cfg *config.Config, logger *slog.Logger, deps *ServeDeps) (*stack, error) {
	s := &stack{cfg: cfg, logger: logger}
	s.obs = deps.ObservabilityServerFactory(cfg.Metrics.Addr, s.ready.Load,
		observability.WithStallThreshold(stallThreshold(cfg.Server.TickRate.Std())))
	reg := s.obs.Registry()

	if cfg.Store.Driver == store.DriverFile || cfg.Store.Driver == store.DriverSQLite {
		if err := xdg.EnsureDir(cfg.Store.Dir); err != nil {
			return nil, err
		}
	}
	data, err := deps.StoreOpener(ctx, cfg.Store)
	if err != nil {
		return nil, oops.With("driver", cfg.Store.Driver).Wrapf(err, "open data store")
	}
	s.data = data
	logger.Info("data store opened", "driver", cfg.Store.Driver)

	catalog := lang.New()
	if err := catalog.LoadFS(os.DirFS(cfg.LangDir)); err != nil {
		_ = data.Close()
		return nil, err
	}

	s.perms, err = access.NewPermissions(cfg.Access)
	if err != nil {
		_ = data.Close()
		return nil, oops.Wrapf(err, "build permissions")
	}

	s.host = host.NewServer(
		host.WithGame(cfg.Server.Game),
		host.WithTickRate(cfg.Server.TickRate.Std()),
		host.WithSaveInterval(cfg.Server.SaveInterval.Std()),
		host.WithSnapshotDelay(cfg.Server.SnapshotDelay.Std()),
		host.WithTickObserver(s.obs.Metrics().ObserveTick),
	)

	commandMetrics := command.NewMetrics()
	if err := commandMetrics.Register(reg); err != nil {
		_ = data.Close()
		return nil, oops.Wrapf(err, "register command metrics")
	}
	s.commands = command.NewRegistry()
	s.limiter = command.NewRateLimiter(cfg.RateLimit, command.WithRateLimiterRegistry(reg))
	s.dispatcher, err = command.NewDispatcher(s.commands, s.perms,
		command.WithRateLimiter(s.limiter),
		command.WithMetrics(commandMetrics))
	if err != nil {
		_ = data.Close()
		return nil, err
	}

	s.manager = plugin.NewManager(s.host, data, s.perms, s.commands, catalog,
		plugin.WithSettings(cfg),
		plugin.WithMetricsRegistry(reg),
		plugin.WithLogger(logger))
	s.host.SetHooks(s.manager)

	s.host.Scheduler().Every(rateLimitSweep, func() {
		s.limiter.Cleanup(command.DefaultBucketMaxAge)
	})

	if cfg.Console.Addr != "" {
		s.console = console.NewServer(cfg.Console.Addr, s.host, s.dispatcher,
			console.WithConnectionCounter(s.obs.Metrics().ConnectionsTotal.WithLabelValues("console")),
			console.WithDisconnectHook(s.limiter.Forget))
	}
	return s, nil
}

// run serves until the context is cancelled or a server fails.
func (s *stack) run(ctx context.Context, cmd *cobra.Command, deps *ServeDeps) error {
	ctx, stop := deps.SignalContext(ctx)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.host.Run(gctx)
	})

	if s.console != nil {
		g.Go(func() error {
			return s.console.Run(gctx)
		})
	}

	if s.cfg.Metrics.Addr != "" {
		obsErr, err := s.obs.Start()
		if err != nil {
			stop()
			_ = g.Wait()
			return oops.Wrapf(err, "start observability server")
		}
		g.Go(func() error {
			select {
			case err, ok := <-obsErr:
				if ok && err != nil {
					return oops.Wrapf(err, "observability server")
				}
				return nil
			case <-gctx.Done():
				return nil
			}
		})
	}

	s.ready.Store(true)
	cmd.Println("Oxide host started")
	s.logger.Info("host ready",
		"game", s.cfg.Server.Game,
		"console_addr", s.cfg.Console.Addr,
		"metrics_addr", s.cfg.Metrics.Addr)
	if deps.Ready != nil {
		deps.Ready(s)
	}

	err := g.Wait()
	s.ready.Store(false)
	if err != nil {
		return oops.Wrapf(err, "server stopped")
	}
	return nil
}
