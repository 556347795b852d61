//go:build ebiten

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"waterflow/internal/app"
	"waterflow/internal/engine"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [terrain-file]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(cfg, flag.Arg(0)); err != nil {
		slog.Error("flow failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *app.Config, path string) error {
	level, err := app.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	land, err := app.LoadTerrain(path, cfg.Gen, cfg.Width, cfg.Height, cfg.Seed)
	if err != nil {
		return err
	}
	ecfg, err := cfg.Engine(logger)
	if err != nil {
		return err
	}
	e, err := engine.New(land, ecfg)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- e.Run(ctx) }()
	<-e.Ready()

	game := app.New(ctx, e, cfg.Scale, cfg.TPS, logger)
	w, h := game.Layout(0, 0)
	title := "waterflow"
	if path != "" {
		title += " - " + path
	}
	ebiten.SetWindowTitle(title)
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(w, h)

	guiErr := ebiten.RunGame(game)
	e.Stop()
	runErr := <-errc
	if guiErr != nil && !errors.Is(guiErr, ebiten.Termination) {
		return guiErr
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}
