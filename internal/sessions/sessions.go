// Package sessions stores authenticated sessions behind the
// middleware.SessionFetcher interface.
package sessions

import (
	"context"
	"time"

	"github.com/tawkr/tawkr-backend/internal/utils"
)

// Store persists sessions until they expire.
type Store interface {
	Create(ctx context.Context, s utils.SessionData) error
	FindSessionByID(ctx context.Context, id string) (utils.SessionData, error)
	Delete(ctx context.Context, id string) error
}

// New builds a session for the given user, valid for ttl.
func New(userID uint, email, role string, franchiseID *uint, ttl time.Duration) utils.SessionData {
	return utils.SessionData{
		SessionID:   utils.GenerateUUID(),
		UserID:      userID,
		Email:       email,
		Role:        role,
		FranchiseID: franchiseID,
		ExpiresAt:   time.Now().Add(ttl),
	}
}
