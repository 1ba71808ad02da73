package territoryimport

import (
	"context"
	"fmt"
	"os"

	"github.com/tawkr/tawkr-backend/internal/db"
	"github.com/tawkr/tawkr-backend/internal/store"
	"github.com/tawkr/tawkr-backend/internal/territory"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Config struct {
	CSVPath     string
	DatabaseURL string
	// DryRun parses and validates without writing.
	DryRun bool
}

// updatable are the columns an import refreshes on an existing territory.
// Status and assignment belong to the allocation workflow and are kept.
var updatable = []string{
	"name", "departement", "region", "logements", "pct_resid_princ", "mondays_available",
	"distance_km", "temps_trajet",
	"last_sales_crf", "last_sales_acf", "last_sales_mdm", "last_sales_other",
	"dispo_crf", "dispo_acf", "dispo_mdm", "dispo_autres",
	"comments", "updated_at",
}

func Run(ctx context.Context, cfg Config, log *zap.Logger) error {
	f, err := os.Open(cfg.CSVPath)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := Parse(f)
	if err != nil {
		return err
	}
	log.Info("parsed territories", zap.String("csv", cfg.CSVPath), zap.Int("rows", len(rows)))
	if cfg.DryRun {
		return nil
	}

	gdb, err := db.Connect(cfg.DatabaseURL, log, false)
	if err != nil {
		return err
	}
	if err := store.Migrate(gdb); err != nil {
		return err
	}

	return Upsert(ctx, gdb, rows)
}

// Upsert inserts new territories and refreshes existing ones by INSEE code,
// in one transaction.
func Upsert(ctx context.Context, gdb *gorm.DB, rows []territory.Territory) error {
	if len(rows) == 0 {
		return nil
	}
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code_insee"}},
			DoUpdates: clause.AssignmentColumns(updatable),
		}).CreateInBatches(&rows, 500).Error
		if err != nil {
			return fmt.Errorf("upsert territories: %w", err)
		}
		return nil
	})
}
