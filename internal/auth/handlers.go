package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/tawkr/tawkr-backend/internal/domain"
	"github.com/tawkr/tawkr-backend/internal/httputil"
	"github.com/tawkr/tawkr-backend/internal/metrics"
	"github.com/tawkr/tawkr-backend/internal/middleware"
	"github.com/tawkr/tawkr-backend/internal/sessions"
	"github.com/tawkr/tawkr-backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

type Repository interface {
	FindUserByEmail(ctx context.Context, email string) (User, error)
	GetUser(ctx context.Context, id uint) (User, error)
}

type Handler struct {
	Users    Repository
	Sessions sessions.Store
	Metrics  *metrics.Metrics

	// LoginDelay is waited before every credential check.
	LoginDelay    time.Duration
	SessionTTL    time.Duration
	SecureCookies bool
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User     MeResponse `json:"user"`
	Redirect string     `json:"redirect"`
}

type MeResponse struct {
	ID            uint    `json:"id"`
	Email         string  `json:"email"`
	Role          string  `json:"role"`
	FranchiseID   *uint   `json:"franchise_id,omitempty"`
	FranchiseName *string `json:"franchise_name,omitempty"`
}

func meOf(u User) MeResponse {
	return MeResponse{
		ID:            u.ID,
		Email:         u.Email,
		Role:          u.Role,
		FranchiseID:   u.FranchiseID,
		FranchiseName: u.FranchiseName,
	}
}

func (h *Handler) countLogin(outcome string) {
	if h.Metrics != nil {
		h.Metrics.LoginAttempts.WithLabelValues(outcome).Inc()
	}
}

// Authenticate checks credentials after the configured delay. Unknown email
// and wrong password give the same UNAUTHORIZED error.
func (h *Handler) Authenticate(ctx context.Context, email, password string) (User, error) {
	if h.LoginDelay > 0 {
		t := time.NewTimer(h.LoginDelay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return User{}, ctx.Err()
		case <-t.C:
		}
	}

	invalid := &domain.DomainError{Code: domain.ErrCodeUnauthorized, Message: "Invalid Credentials"}

	user, err := h.Users.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if domain.IsNotFound(err) {
		return User{}, invalid
	}
	if err != nil {
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return User{}, invalid
	}
	return user, nil
}

func (h *Handler) sessionCookie(value string, expires time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.SecureCookies,
	}
	if value == "" {
		c.MaxAge = -1
	} else {
		c.Expires = expires
	}
	return c
}

// LoginHandler handles POST /auth/login
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		httputil.Error(w, r, domain.NewInvalidArgumentError("Email and password are required"))
		return
	}

	user, err := h.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		if domain.CodeOf(err) == domain.ErrCodeUnauthorized {
			h.countLogin("invalid")
		} else {
			h.countLogin("error")
		}
		httputil.Error(w, r, err)
		return
	}

	session := sessions.New(user.ID, user.Email, user.Role, user.FranchiseID, h.SessionTTL)
	if err := h.Sessions.Create(r.Context(), session); err != nil {
		h.countLogin("error")
		httputil.Error(w, r, err)
		return
	}
	h.countLogin("success")

	http.SetCookie(w, h.sessionCookie(session.SessionID, session.ExpiresAt))
	httputil.JSON(w, http.StatusOK, LoginResponse{User: meOf(user), Redirect: "/dashboard"})
}

// LogoutHandler handles POST /auth/logout
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := utils.SessionFromContext(r.Context())
	if !ok {
		httputil.Error(w, r, domain.NewUnauthorizedError())
		return
	}

	if err := h.Sessions.Delete(r.Context(), session.SessionID); err != nil && !domain.IsNotFound(err) {
		httputil.Error(w, r, err)
		return
	}

	http.SetCookie(w, h.sessionCookie("", time.Time{}))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Logout successful\n"))
}

// MeHandler handles GET /auth/me
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.Error(w, r, domain.NewUnauthorizedError())
		return
	}

	user, err := h.Users.GetUser(r.Context(), userID)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, meOf(user))
}
