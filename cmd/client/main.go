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

	"github.com/iudanet/geojournal/internal/client/api"
	"github.com/iudanet/geojournal/internal/client/auth"
	"github.com/iudanet/geojournal/internal/client/cli"
	"github.com/iudanet/geojournal/internal/client/iocli"
	"github.com/iudanet/geojournal/internal/client/storage/boltdb"
	"github.com/iudanet/geojournal/internal/client/unlock"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", envOr("GEOJOURNAL_SERVER", "http://localhost:5000"), "Server URL")
	dbPath := flag.String("db", envOr("GEOJOURNAL_CLIENT_DB", "geojournal-client.db"), "Path to local database")
	flag.Parse()

	stdio := iocli.NewStdio()

	if *showVersion {
		printVersion(stdio)
		return 0
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage(stdio)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	boltStorage, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		return 1
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			slog.Error("failed to close database", slog.Any("error", err))
		}
	}()

	apiClient := api.NewClient(*serverURL)
	app := cli.New(stdio, apiClient, auth.NewService(apiClient, boltStorage), unlock.NewPIN(boltStorage, stdio))

	if err := app.Run(ctx, args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, cli.ErrUsage) {
			cli.PrintUsage(stdio)
		}
		return 1
	}
	return 0
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printVersion(out iocli.IO) {
	out.Printf("GeoJournal Client\n")
	out.Printf("Version:    %s\n", Version)
	out.Printf("Build Date: %s\n", BuildDate)
	out.Printf("Git Commit: %s\n", GitCommit)
}
