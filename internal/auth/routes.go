package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tawkr/tawkr-backend/internal/middleware"
)

func SetupRoutes(h *Handler, sessionFetcher middleware.SessionFetcher, limiter *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()

	r.With(limiter.Middleware).Post("/login", h.LoginHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Post("/logout", h.LogoutHandler)
		r.Get("/me", h.MeHandler)
	})

	return r
}
