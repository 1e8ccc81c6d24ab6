package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/l1jgo/simcore/internal/config"
	"github.com/l1jgo/simcore/internal/persist"
	"github.com/l1jgo/simcore/internal/viewer"
)

const version = "v0.1.0"

type runOptions struct {
	Frames int
	Viewer bool
}

func newRunCommand(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation at the configured tick rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("frames") {
				cfg.Sim.Frames = opts.Frames
			}
			if opts.Viewer {
				cfg.Viewer.Enabled = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runSimulation(cmd, cfg)
		},
	}
	cmd.Flags().IntVar(&opts.Frames, "frames", 0, "frames to run, overrides sim.frames (0 = until interrupted)")
	cmd.Flags().BoolVar(&opts.Viewer, "viewer", false, "serve the websocket viewer")
	return cmd
}

func runSimulation(cmd *cobra.Command, cfg *config.Config) error {
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	out := display{w: cmd.OutOrStdout()}
	out.banner(version)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Assemble the world
	out.section("World")
	sim, err := buildSimulation(cfg, log)
	if err != nil {
		return err
	}
	defer sim.Close()
	order, err := sim.world.Order()
	if err != nil {
		return err
	}
	out.stat("entities", sim.world.Store().Len())
	out.stat("systems", len(order))
	out.stat("scripted systems", len(sim.scripts))
	fmt.Fprintln(out.w)

	// 2. Telemetry
	if cfg.Telemetry.Enabled {
		out.section("Telemetry")
		db, err := persist.Open(ctx, cfg.Telemetry, log)
		if err != nil {
			return fmt.Errorf("telemetry db: %w", err)
		}
		defer db.Close()
		out.ok(cfg.Telemetry.Driver + " connected")

		if err := persist.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		schema, err := persist.SchemaVersion(ctx, db)
		if err != nil {
			return err
		}
		out.ok(fmt.Sprintf("migrations applied (schema v%d)", schema))

		repo := persist.NewFrameRepo(db, cfg.Telemetry.BatchSize, log)
		if err := repo.StartRun(ctx, cfg.Sim.Seed, order); err != nil {
			return err
		}
		sim.world.OnCommit(repo.Hook(ctx))
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := repo.Flush(flushCtx); err != nil {
				log.Warn("final telemetry flush failed", zap.Error(err))
			}
		}()
		out.value("run", repo.RunID().String())
		fmt.Fprintln(out.w)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	// 3. Viewer
	if cfg.Viewer.Enabled {
		hub := viewer.NewHub(sim.input, log)
		sim.world.OnCommit(hub.Hook(sim.world.Store()))
		g.Go(func() error {
			return viewer.Serve(gctx, cfg.Viewer.BindAddress, hub, log)
		})
	}

	// 4. Frame loop
	out.section("Running")
	if cfg.Viewer.Enabled {
		out.ready(fmt.Sprintf("viewer ws://%s/ws", cfg.Viewer.BindAddress))
	}
	out.ready(fmt.Sprintf("frame loop (tick: %s)", cfg.Sim.TickRate))
	fmt.Fprintln(out.w)

	g.Go(func() error {
		defer cancel()
		return frameLoop(gctx, sim, cfg.Sim, log)
	})
	return g.Wait()
}

func frameLoop(ctx context.Context, sim *simulation, cfg config.SimConfig, log *zap.Logger) error {
	ticker := time.NewTicker(cfg.TickRate)
	defer ticker.Stop()
	dt := cfg.TickRate.Seconds()

	for {
		select {
		case <-ticker.C:
			if err := sim.world.Advance(dt); err != nil {
				return err
			}
			if cfg.Frames > 0 && sim.world.Frame() >= uint64(cfg.Frames) {
				log.Info("frame limit reached", zap.Uint64("frames", sim.world.Frame()))
				return nil
			}
		case <-ctx.Done():
			log.Info("simulation stopped", zap.Uint64("frames", sim.world.Frame()))
			return nil
		}
	}
}
