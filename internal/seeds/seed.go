package seeds

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedAll inserts ds into Postgres. Rows whose id already exists are left
// alone, so running it twice is harmless.
func SeedAll(ctx context.Context, gdb *gorm.DB, ds Dataset, log *zap.Logger) error {
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			table string
			rows  any
			n     int
		}{
			{"tawkr.franchises", &ds.Franchises, len(ds.Franchises)},
			{"tawkr.territories", &ds.Territories, len(ds.Territories)},
			{"tawkr.campaigns", &ds.Campaigns, len(ds.Campaigns)},
			{"tawkr.alerts", &ds.Alerts, len(ds.Alerts)},
			{"tawkr.users", &ds.Users, len(ds.Users)},
		}

		for _, s := range steps {
			if s.n == 0 {
				continue
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(s.rows)
			if res.Error != nil {
				return fmt.Errorf("seed %s: %w", s.table, res.Error)
			}
			// Explicit ids leave the serial sequence behind.
			if err := tx.Exec(fmt.Sprintf(
				`SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT COALESCE(MAX(id), 1) FROM %s))`,
				s.table, s.table)).Error; err != nil {
				return fmt.Errorf("reset %s sequence: %w", s.table, err)
			}
			log.Info("seeded", zap.String("table", s.table), zap.Int64("inserted", res.RowsAffected), zap.Int("rows", s.n))
		}
		return nil
	})
}
