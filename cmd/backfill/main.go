// Command backfill runs one-shot ingestion tasks against the local store:
// full-season setup, per-session telemetry, driver and result refreshes.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nawanshaju/pitlane/internal/config"
	"github.com/nawanshaju/pitlane/internal/constants"
	"github.com/nawanshaju/pitlane/internal/ingest"
	"github.com/nawanshaju/pitlane/internal/logger"
	"github.com/nawanshaju/pitlane/internal/openf1"
	"github.com/nawanshaju/pitlane/internal/store"
)

func main() {
	year := flag.Int("year", constants.DefaultYear, "season to load")
	setup := flag.Bool("setup", false, "run full-season initial setup")
	drivers := flag.Bool("drivers", false, "refresh per-session driver records for the season")
	results := flag.Bool("results", false, "load finishing classifications for the season")
	session := flag.Int("session", 0, "load telemetry for one session key")
	flag.Parse()

	if !*setup && !*drivers && !*results && *session == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	client := openf1.NewClient(cfg.OpenF1BaseURL, cfg.RequestRate)
	ingestCfg := ingest.DefaultConfig()
	ingestCfg.RecentSessions = cfg.RecentSessions
	manager := ingest.NewManager(db, client, ingestCfg, appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *setup {
		if err := manager.InitialSetup(ctx, *year); err != nil {
			appLogger.Error("initial setup aborted", "error", err)
			os.Exit(1)
		}
	}
	if *drivers {
		if err := manager.LoadDriversByYear(ctx, *year); err != nil {
			appLogger.Error("driver refresh aborted", "error", err)
			os.Exit(1)
		}
	}
	if *results {
		if err := manager.LoadSessionResults(ctx, *year); err != nil {
			appLogger.Error("session result load aborted", "error", err)
			os.Exit(1)
		}
	}
	if *session != 0 {
		manager.LoadSessionTelemetry(ctx, *session)
	}
}
