package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/tawkr/tawkr-backend/internal/domain"
	"github.com/tawkr/tawkr-backend/internal/utils"
	"gorm.io/gorm"
)

// Session is the database row behind a session cookie.
type Session struct {
	SessionID   string    `gorm:"primaryKey"`
	UserID      uint      `gorm:"not null;index"`
	Email       string    `gorm:"not null"`
	Role        string    `gorm:"size:16;not null"`
	FranchiseID *uint
	ExpiresAt   time.Time `gorm:"not null;index"`
}

func (Session) TableName() string { return "tawkr.sessions" }

func (s Session) data() utils.SessionData {
	return utils.SessionData{
		SessionID:   s.SessionID,
		UserID:      s.UserID,
		Email:       s.Email,
		Role:        s.Role,
		FranchiseID: s.FranchiseID,
		ExpiresAt:   s.ExpiresAt,
	}
}

// GormStore keeps sessions in Postgres. A user holds one session at a time;
// logging in again replaces the previous one.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (g *GormStore) Create(ctx context.Context, s utils.SessionData) error {
	row := Session{
		SessionID:   s.SessionID,
		UserID:      s.UserID,
		Email:       s.Email,
		Role:        s.Role,
		FranchiseID: s.FranchiseID,
		ExpiresAt:   s.ExpiresAt,
	}
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? OR expires_at < ?", s.UserID, time.Now()).Delete(&Session{}).Error; err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return domain.NewInternalError(err)
	}
	return nil
}

func (g *GormStore) FindSessionByID(ctx context.Context, id string) (utils.SessionData, error) {
	var row Session
	err := g.db.WithContext(ctx).First(&row, "session_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.SessionData{}, domain.NewNotFoundError("session")
	}
	if err != nil {
		return utils.SessionData{}, domain.NewInternalError(err)
	}
	return row.data(), nil
}

func (g *GormStore) Delete(ctx context.Context, id string) error {
	res := g.db.WithContext(ctx).Delete(&Session{}, "session_id = ?", id)
	if res.Error != nil {
		return domain.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError("session")
	}
	return nil
}
