package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/tawkr/tawkr-backend/internal/logging"
	"github.com/tawkr/tawkr-backend/internal/territoryimport"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load(".env.local")

	var (
		csvPath = flag.String("csv", "", "path to territories CSV")
		dbURL   = flag.String("db", os.Getenv("DATABASE_URL"), "DATABASE_URL")
		dryRun  = flag.Bool("dry-run", false, "validate the CSV without writing")
	)
	flag.Parse()

	if *csvPath == "" || (*dbURL == "" && !*dryRun) {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := logging.New("info", false)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	cfg := territoryimport.Config{
		CSVPath:     *csvPath,
		DatabaseURL: *dbURL,
		DryRun:      *dryRun,
	}

	if err := territoryimport.Run(context.Background(), cfg, logger); err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}
}
