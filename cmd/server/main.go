package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/iudanet/geojournal/internal/config"
	"github.com/iudanet/geojournal/internal/logger"
	"github.com/iudanet/geojournal/internal/server"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	args := os.Args[1:]

	if slices.Contains(args, "-version") || slices.Contains(args, "--version") {
		printVersion()
		os.Exit(0)
	}

	if err := run(args); err != nil {
		fmt.Fprintf(os.Stderr, "geojournal-server: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	if cfg.Auth.JWTSecret == config.DevSecret {
		log.Warn("using the built-in development JWT secret; set GEOJOURNAL_JWT_SECRET for real deployments")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app, err := server.NewApp(ctx, cfg, log, Version)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error("failed to close app", slog.Any("error", err))
		}
	}()

	log.Info("GeoJournal server starting",
		slog.String("version", Version),
		slog.String("commit", GitCommit),
		slog.String("db_driver", cfg.Database.Driver),
		slog.String("image_backend", cfg.Images.Backend))

	return app.Run(ctx)
}

func printVersion() {
	fmt.Printf("GeoJournal Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
