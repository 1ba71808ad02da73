package alert

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tawkr/tawkr-backend/internal/middleware"
)

func SetupRoutes(h *Handler, sessionFetcher middleware.SessionFetcher) http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Get("/", h.ListAlerts)
		r.Post("/{id}/read", h.MarkRead)
		r.Post("/{id}/unread", h.MarkUnread)
	})

	return r
}
