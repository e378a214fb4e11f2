// Command worldsim runs the asset world simulation until the population dies
// out or the tick limit is reached.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/talgya/assetworld/internal/config"
	"github.com/talgya/assetworld/internal/engine"
	"github.com/talgya/assetworld/internal/entropy"
	"github.com/talgya/assetworld/internal/persistence"
	"github.com/talgya/assetworld/internal/resolve"
	"github.com/talgya/assetworld/internal/world"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (defaults used when empty)")
		seed       = flag.Int64("seed", 0, "random seed, overrides the config; 0 keeps the config value")
		ticks      = flag.Uint64("ticks", 0, "tick limit, overrides the config")
		dbPath     = flag.String("db", "", "SQLite file to record the run in")
		tracePath  = flag.String("trace", "", "zstd JSONL trace file")
		verify     = flag.Bool("verify", false, "check world bookkeeping every tick")
		debug      = flag.Bool("debug", false, "log every tick phase")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}
	if *seed != 0 {
		cfg.Run.Seed = *seed
	}
	if *ticks != 0 {
		cfg.Run.MaxTicks = *ticks
	}
	if *dbPath != "" {
		cfg.Run.DBPath = *dbPath
	}
	if *tracePath != "" {
		cfg.Run.TracePath = *tracePath
	}
	if *verify {
		cfg.Run.Verify = true
	}
	if cfg.Run.Seed == 0 {
		cfg.Run.Seed = entropy.CryptoSeed()
	}

	if err := run(cfg); err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	if err := cfg.Resolver.Validate(); err != nil {
		return err
	}

	rng := entropy.New(cfg.Run.Seed)
	w, err := world.New(cfg.World, rng)
	if err != nil {
		return fmt.Errorf("build world: %w", err)
	}
	slog.Info("world ready",
		"seed", cfg.Run.Seed,
		"population", humanize.Comma(int64(len(w.Population()))),
		"assets", humanize.Comma(int64(w.TotalAssets())),
	)

	eng := engine.NewEngine(w, resolve.New(cfg.Resolver, w.Spawner()), entropy.Derive(rng))
	eng.MaxTicks = cfg.Run.MaxTicks
	eng.ReportEvery = cfg.Run.ReportEvery
	eng.Verify = cfg.Run.Verify

	var sinks []func(engine.Report) error

	var rec *persistence.Recorder
	if cfg.Run.DBPath != "" {
		db, err := persistence.Open(cfg.Run.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		yamlCfg, err := cfg.Marshal()
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		if rec, err = persistence.NewRecorder(db, cfg.Run.Seed, yamlCfg, 100); err != nil {
			return err
		}
		sinks = append(sinks, rec.Record)
		slog.Info("recording run", "run", rec.RunID(), "path", cfg.Run.DBPath)
	}

	if cfg.Run.TracePath != "" {
		tw, err := persistence.CreateTrace(cfg.Run.TracePath)
		if err != nil {
			return fmt.Errorf("create trace: %w", err)
		}
		defer func() {
			if err := tw.Close(); err != nil {
				slog.Error("failed to close trace", "error", err)
			}
		}()
		sinks = append(sinks, tw.Write)
	}

	eng.OnTick = func(r engine.Report) error {
		for _, sink := range sinks {
			if err := sink(r); err != nil {
				return err
			}
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := eng.Run(ctx)
	if err != nil {
		return err
	}
	if rec != nil {
		if err := rec.Finish(res); err != nil {
			return fmt.Errorf("finish run: %w", err)
		}
	}

	slog.Info("simulation finished",
		"reason", string(res.Reason),
		"final", res.Last.String(),
		"births", humanize.Comma(int64(res.Totals.Reproductions)),
		"assassinations", humanize.Comma(int64(res.Totals.Assassinations)),
		"transfers", humanize.Comma(int64(res.Totals.Transfers)),
	)
	return nil
}
