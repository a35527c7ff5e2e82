package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/rifts/internal/core/config"
	"github.com/zeusync/rifts/internal/core/observability/log"
	"github.com/zeusync/rifts/internal/injector"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file; built-in defaults when empty")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "rifts:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}

	app, cleanup, err := injector.InitializeApp(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.Logger.Info("Starting",
		log.Float64("tick_rate", cfg.Simulation.TickRate),
		log.Uint64("seed", cfg.Simulation.Seed),
		log.Bool("server", cfg.Server.Enabled))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.Loop.Run(ctx) })
	if cfg.Server.Enabled {
		g.Go(func() error { return app.Server.Serve(ctx) })
	}

	err = g.Wait()
	app.Logger.Info("Shutdown complete")
	return err
}
