package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/tawkr/tawkr-backend/internal/config"
	"github.com/tawkr/tawkr-backend/internal/db"
	"github.com/tawkr/tawkr-backend/internal/logging"
	"github.com/tawkr/tawkr-backend/internal/seeds"
	"github.com/tawkr/tawkr-backend/internal/store"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Production())
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	gdb, err := db.Connect(cfg.DatabaseURL, logger, false)
	if err != nil {
		logger.Fatal("connect", zap.Error(err))
	}
	if err := store.Migrate(gdb); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	ds, err := seeds.Load()
	if err != nil {
		logger.Fatal("load seed dataset", zap.Error(err))
	}
	if err := seeds.SeedAll(context.Background(), gdb, ds, logger); err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}
}
