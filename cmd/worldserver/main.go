package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/worldkit/internal/config"
	"github.com/udisondev/worldkit/internal/db"
	"github.com/udisondev/worldkit/internal/navmesh"
	"github.com/udisondev/worldkit/internal/scene"
	"github.com/udisondev/worldkit/internal/spawn"
	"github.com/udisondev/worldkit/internal/world"
)

const ConfigPath = "config/worldserver.yaml"

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
	if p := os.Getenv("WORLDKIT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadWorldServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("worldkit server starting", "log_level", cfg.LogLevel, "tick", cfg.TickInterval)

	catalog, err := scene.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	slog.Info("prefab catalog loaded", "path", cfg.CatalogPath, "prefabs", len(catalog.Prefabs))

	graph := scene.NewGraph()

	var (
		pendingStore spawn.PendingStore
		navStore     world.NavMeshStore
	)
	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("connected to database")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		pendingStore = db.NewPendingSpawnRepository(database.Pool())
		if cfg.NavMesh.Persist {
			navStore = db.NewNavMeshRepository(database.Pool())
		}
	}

	spawns := spawn.NewManager(spawn.NewScheduler(), scene.NewSpawner(graph, catalog), pendingStore)
	authored := make([]spawn.DelayedSpawnEvent, 0, len(cfg.Spawns))
	for _, s := range cfg.Spawns {
		ev := spawn.NewSpawnEvent(s.Object, s.Transform.Transform())
		authored = append(authored, spawn.NewDelayedSpawnEvent(s.Delay, ev))
	}
	if err := spawns.Resume(ctx, authored); err != nil {
		return fmt.Errorf("resuming spawns: %w", err)
	}

	deriver := navmesh.NewDeriver(graph, graph.Meshes(), graph, cfg.NavMesh.Delta)
	slog.Info("navmesh deriver ready", "delta", deriver.Delta(), "persist", navStore != nil)
	driver := world.NewDriver(graph, spawns, deriver, cfg.TickInterval)
	if navStore != nil {
		driver.SetNavMeshStore(navStore)
	}

	navigator := world.NewNavigator()
	driver.OnBake(navigator.Add)
	driver.OnParentChange(func(ev spawn.ParentChangeEvent) {
		slog.Info("parent changed", "node", ev.Name, "newParent", ev.NewParent, "detached", ev.IsDetached())
	})
	driver.OnDuplication(func(ev spawn.DuplicationEvent) {
		slog.Info("node duplicated", "node", ev.Name)
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting world driver", "interval", cfg.TickInterval)
		runErr := driver.Start(gctx)

		// The loop has exited; no tick can release an entry after this save.
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := driver.Shutdown(saveCtx); err != nil {
			return fmt.Errorf("world driver shutdown: %w", err)
		}

		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			return fmt.Errorf("world driver: %w", runErr)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("worldkit server stopped", "ticks", driver.Ticks(), "navmeshes", navigator.Len())
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
