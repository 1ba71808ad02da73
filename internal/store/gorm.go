package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tawkr/tawkr-backend/internal/alert"
	"github.com/tawkr/tawkr-backend/internal/auth"
	"github.com/tawkr/tawkr-backend/internal/campaign"
	"github.com/tawkr/tawkr-backend/internal/domain"
	"github.com/tawkr/tawkr-backend/internal/export"
	"github.com/tawkr/tawkr-backend/internal/franchise"
	"github.com/tawkr/tawkr-backend/internal/selection"
	"github.com/tawkr/tawkr-backend/internal/territory"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm implements the repositories on Postgres.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(gdb *gorm.DB) *Gorm {
	return &Gorm{db: gdb}
}

// Migrate creates the auth tables, the domain tables and the index holding one
// active selection per territory.
func Migrate(gdb *gorm.DB) error {
	if err := auth.Init(gdb); err != nil {
		return err
	}
	if err := gdb.AutoMigrate(
		&franchise.Franchise{},
		&territory.Territory{},
		&campaign.Campaign{},
		&alert.Alert{},
		&selection.Selection{},
		&export.Record{},
	); err != nil {
		return fmt.Errorf("auto-migrate tables: %w", err)
	}
	return gdb.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS territory_selections_one_active
		ON tawkr.territory_selections (territory_id)
		WHERE status IN ('pending', 'validated')`).Error
}

// wrap maps driver errors onto domain errors.
func wrap(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewNotFoundError(resource)
	}
	var de *domain.DomainError
	if errors.As(err, &de) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.NewConflictError("%s already exists", resource)
	}
	return domain.NewInternalError(err)
}

func (g *Gorm) ListTerritories(ctx context.Context) ([]territory.Territory, error) {
	var ts []territory.Territory
	err := g.db.WithContext(ctx).Order("id").Find(&ts).Error
	return ts, wrap(err, "territory")
}

func (g *Gorm) GetTerritory(ctx context.Context, id uint) (territory.Territory, error) {
	var t territory.Territory
	err := g.db.WithContext(ctx).First(&t, id).Error
	return t, wrap(err, "territory")
}

// UpdateTerritory locks the row for the transaction, so a selection decided
// concurrently is never overwritten. The BeforeSave hook refreshes capacity.
func (g *Gorm) UpdateTerritory(ctx context.Context, id uint, fn func(*territory.Territory) error) (territory.Territory, error) {
	var t territory.Territory
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, id).Error; err != nil {
			return wrap(err, "territory")
		}
		if err := fn(&t); err != nil {
			return err
		}
		t.ID = id
		return tx.Save(&t).Error
	})
	if err != nil {
		return territory.Territory{}, wrap(err, "territory")
	}
	return t, nil
}

func (g *Gorm) ListCampaigns(ctx context.Context) ([]campaign.Campaign, error) {
	var cs []campaign.Campaign
	err := g.db.WithContext(ctx).Order("id").Find(&cs).Error
	return cs, wrap(err, "campaign")
}

func (g *Gorm) GetCampaign(ctx context.Context, id uint) (campaign.Campaign, error) {
	var c campaign.Campaign
	err := g.db.WithContext(ctx).First(&c, id).Error
	return c, wrap(err, "campaign")
}

func (g *Gorm) ValidatedMondaysByCampaign(ctx context.Context) (map[uint]int, error) {
	var rows []struct {
		CampaignID uint
		Total      int
	}
	err := g.db.WithContext(ctx).
		Model(&selection.Selection{}).
		Select("campaign_id, COALESCE(SUM(mondays_selected), 0) AS total").
		Where("status = ?", selection.StatusValidated).
		Group("campaign_id").
		Scan(&rows).Error
	if err != nil {
		return nil, wrap(err, "selection")
	}

	out := make(map[uint]int, len(rows))
	for _, r := range rows {
		out[r.CampaignID] = r.Total
	}
	return out, nil
}

func (g *Gorm) ListFranchises(ctx context.Context) ([]franchise.Franchise, error) {
	var fs []franchise.Franchise
	err := g.db.WithContext(ctx).Order("id").Find(&fs).Error
	return fs, wrap(err, "franchise")
}

func (g *Gorm) GetFranchise(ctx context.Context, id uint) (franchise.Franchise, error) {
	var f franchise.Franchise
	err := g.db.WithContext(ctx).First(&f, id).Error
	return f, wrap(err, "franchise")
}

func (g *Gorm) ListAlerts(ctx context.Context) ([]alert.Alert, error) {
	var as []alert.Alert
	err := g.db.WithContext(ctx).Order("id").Find(&as).Error
	return as, wrap(err, "alert")
}

func (g *Gorm) GetAlert(ctx context.Context, id uint) (alert.Alert, error) {
	var a alert.Alert
	err := g.db.WithContext(ctx).First(&a, id).Error
	return a, wrap(err, "alert")
}

func (g *Gorm) SetAlertRead(ctx context.Context, id uint, read bool) (alert.Alert, error) {
	var a alert.Alert
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&alert.Alert{}).Where("id = ?", id).Update("is_read", read)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&a, id).Error
	})
	return a, wrap(err, "alert")
}

func (g *Gorm) CreateAlert(ctx context.Context, a *alert.Alert) error {
	return wrap(g.db.WithContext(ctx).Create(a).Error, "alert")
}

func (g *Gorm) ListSelections(ctx context.Context) ([]selection.Selection, error) {
	var ss []selection.Selection
	err := g.db.WithContext(ctx).Order("id").Find(&ss).Error
	return ss, wrap(err, "selection")
}

func (g *Gorm) GetSelection(ctx context.Context, id uint) (selection.Selection, error) {
	var s selection.Selection
	err := g.db.WithContext(ctx).First(&s, id).Error
	return s, wrap(err, "selection")
}

// CreateSelection relies on territory_selections_one_active to refuse a
// second active selection.
func (g *Gorm) CreateSelection(ctx context.Context, s *selection.Selection) error {
	err := g.db.WithContext(ctx).Create(s).Error
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.NewConflictError("territory already has an active selection")
	}
	return wrap(err, "selection")
}

func (g *Gorm) DecideSelection(ctx context.Context, id uint, fn func(*selection.Selection, *territory.Territory) error) (selection.Selection, territory.Territory, error) {
	var (
		s selection.Selection
		t territory.Territory
	)
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked := tx.Clauses(clause.Locking{Strength: "UPDATE"})
		if err := locked.First(&s, id).Error; err != nil {
			return wrap(err, "selection")
		}
		if err := locked.First(&t, s.TerritoryID).Error; err != nil {
			return wrap(err, "territory")
		}
		if err := fn(&s, &t); err != nil {
			return err
		}
		if err := tx.Save(&s).Error; err != nil {
			return err
		}
		return tx.Save(&t).Error
	})
	if err != nil {
		return selection.Selection{}, territory.Territory{}, wrap(err, "selection")
	}
	return s, t, nil
}

func (g *Gorm) FindUserByEmail(ctx context.Context, email string) (auth.User, error) {
	var u auth.User
	err := g.db.WithContext(ctx).First(&u, "lower(email) = lower(?)", email).Error
	return u, wrap(err, "user")
}

func (g *Gorm) GetUser(ctx context.Context, id uint) (auth.User, error) {
	var u auth.User
	err := g.db.WithContext(ctx).First(&u, id).Error
	return u, wrap(err, "user")
}

func (g *Gorm) CreateExport(ctx context.Context, r *export.Record) error {
	return wrap(g.db.WithContext(ctx).Create(r).Error, "export")
}

func (g *Gorm) ListExports(ctx context.Context, userID uint, limit int) ([]export.Record, error) {
	rs := []export.Record{}
	err := g.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rs).Error
	return rs, wrap(err, "export")
}
