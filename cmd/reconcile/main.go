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

	"github.com/eshaffer321/bats-attribution/internal/cli"
	"github.com/eshaffer321/bats-attribution/internal/domain/matcher"
	"github.com/eshaffer321/bats-attribution/internal/domain/report"
	"github.com/eshaffer321/bats-attribution/internal/infrastructure/config"
	"github.com/eshaffer321/bats-attribution/internal/infrastructure/logging"
)

func main() {
	flags, err := cli.ParseReconcileFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}

	cfg := config.LoadOrEnv_WithPath(flags.Config)
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "reconcile")

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.RunReconcile(ctx, cfg, flags, os.Stdin, os.Stdout, logger); err != nil {
		var missing *matcher.MissingColumnsError
		var empty *report.EmptySourceError
		switch {
		case errors.As(err, &missing), errors.As(err, &empty):
			fmt.Fprintln(os.Stderr, "error:", err)
		default:
			logger.Error("reconcile failed", slog.String("error", err.Error()))
		}
		os.Exit(1)
	}
}
