package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/tawkr/tawkr-backend/internal/alert"
	"github.com/tawkr/tawkr-backend/internal/config"
	"github.com/tawkr/tawkr-backend/internal/db"
	"github.com/tawkr/tawkr-backend/internal/jobs"
	"github.com/tawkr/tawkr-backend/internal/logging"
	"github.com/tawkr/tawkr-backend/internal/store"
)

// Runs the quota sweep once against Postgres, outside the server's schedule.
func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Production())
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	gdb, err := db.Connect(cfg.DatabaseURL, logger, false)
	if err != nil {
		log.Fatalf("DB connection error: %v", err)
	}

	repo := store.NewGorm(gdb)
	sweep := &jobs.QuotaSweep{
		Campaigns:   repo,
		Selections:  repo,
		Territories: repo,
		Alerts:      repo,
		Notifier:    &alert.Notifier{Repo: repo},
	}

	raised, err := sweep.Run(context.Background())
	if err != nil {
		log.Fatalf("Quota sweep failed: %v", err)
	}
	fmt.Printf("✓ Quota sweep raised %d alert(s)\n", raised)
}
