package utils

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const ContextSessionKey contextKey = "session"

const (
	RoleAdmin     = "admin"
	RoleFranchise = "franchise"
)

// SessionData is the authenticated actor attached to a request.
type SessionData struct {
	SessionID   string    `json:"session_id"`
	UserID      uint      `json:"user_id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	FranchiseID *uint     `json:"franchise_id,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (s SessionData) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// IsFranchise reports whether the actor acts on behalf of a franchise.
func (s SessionData) IsFranchise() bool {
	return s.Role == RoleFranchise && s.FranchiseID != nil
}

func WithSession(ctx context.Context, s SessionData) context.Context {
	return context.WithValue(ctx, ContextSessionKey, s)
}

func SessionFromContext(ctx context.Context) (SessionData, bool) {
	s, ok := ctx.Value(ContextSessionKey).(SessionData)
	return s, ok
}

func GetUserIDFromContext(ctx context.Context) (uint, bool) {
	s, ok := SessionFromContext(ctx)
	if !ok {
		return 0, false
	}
	return s.UserID, true
}

func GenerateUUID() string {
	return uuid.NewString()
}

// UintPtr is a helper for optional foreign keys.
func UintPtr(v uint) *uint {
	return &v
}
