package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/llehouerou/aurora/internal/config"
	"github.com/llehouerou/aurora/internal/logging"
)

const version = "0.3.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "aurora: %v\n", err)
		os.Exit(1)
	}

	runner := NewRunner(RunnerOpts{
		Config: cfg,
		Logger: logging.New(os.Stderr, cfg.GetLogConfig().Level),
	})

	app := &cli.Command{
		Name:     "aurora",
		Usage:    "Stream, like and scrobble music from the terminal",
		Version:  version,
		Action:   runner.TUI,
		Commands: runner.register(),
	}

	if err := app.Run(ctx, os.Args); err != nil && !errors.Is(err, context.Canceled) {
		runner.logger.Error("aurora failed", "err", err)
		os.Exit(1)
	}
}
