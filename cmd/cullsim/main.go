package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/cullgo/internal/config"
	"github.com/udisondev/cullgo/internal/culling"
	"github.com/udisondev/cullgo/internal/db"
	"github.com/udisondev/cullgo/internal/debugapi"
	"github.com/udisondev/cullgo/internal/scene"
	"github.com/udisondev/cullgo/internal/sim"
	"github.com/udisondev/cullgo/internal/tracker"
)

const ConfigPath = "config/cullsim.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("CULLGO_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("cullsim starting",
		"config", cfgPath,
		"log_level", cfg.LogLevel,
		"world_scale", cfg.Culling.WorldScale)

	graph := scene.NewGraph()
	objects := tracker.NewDatabase(graph)
	pop := sim.Populate(graph, objects, cfg.Simulation, cfg.Culling)

	mgr := culling.NewManager(graph, objects, culling.Settings{
		WorldScale:         cfg.Culling.WorldScale,
		UnscaledBlockRange: cfg.Culling.UnscaledBlockRange,
		BlockHalfExtent:    cfg.Culling.BlockHalfExtent,
		BillboardRange:     cfg.Culling.BillboardRange,
	})
	slog.Info("culling manager ready",
		"blockRange", mgr.BlockRange(),
		"categories", len(pop.Counts))

	path := sim.NewPath(cfg.Simulation.Waypoints, cfg.Simulation.Loop)
	runner := sim.NewRunner(graph, objects, mgr, path, cfg.Simulation)

	var recorder *sim.Recorder
	if cfg.Database.Enabled {
		dsn := cfg.Database.DSN()
		database, err := db.New(ctx, dsn)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, dsn); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		recorder = sim.NewRecorder(runner, db.NewStatsRepository(database.Pool()), cfg.Database.FlushInterval)
		slog.Info("recording cull stats", "runID", recorder.RunID())
	}

	// Cancelled when the runner finishes its frame budget, stopping the rest.
	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		defer stop()
		if err := runner.Start(gctx); err != nil {
			return fmt.Errorf("cull runner: %w", err)
		}
		return nil
	})

	if recorder != nil {
		g.Go(func() error {
			if err := recorder.Start(gctx); err != nil {
				return fmt.Errorf("stats recorder: %w", err)
			}
			return nil
		})
	}

	if cfg.DebugAPI.Enabled {
		api := debugapi.NewServer(cfg.DebugAPI.Addr, runner, cfg.DebugAPI.StreamInterval)
		g.Go(func() error {
			if err := api.Start(gctx); err != nil {
				return fmt.Errorf("debug api: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("cullsim error: %w", err)
	}

	s := mgr.Stats()
	slog.Info("cullsim stopped",
		"frames", runner.Frame(),
		"culled", s.CurrentlyCulled,
		"fastPath", s.FastPathTicks,
		"contextChanges", s.ContextChanges,
		"reconcileDestroyed", s.ReconcileDestroyed)
	return nil
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
