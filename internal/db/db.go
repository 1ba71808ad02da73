package db

import (
	"fmt"
	"time"

	"github.com/tawkr/tawkr-backend/internal/logging"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the Postgres pool and routes gorm's SQL log through zap.
func Connect(dsn string, log *zap.Logger, verbose bool) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	level := logger.Warn
	if verbose {
		level = logger.Info
	}
	lg := logger.New(
		logging.StdLogger(log, "gorm"),
		logger.Config{
			SlowThreshold:             100 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: lg,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	log.Info("connected to database")
	return db, nil
}
