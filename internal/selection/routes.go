package selection

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tawkr/tawkr-backend/internal/middleware"
)

func SetupRoutes(h *Handler, sessionFetcher middleware.SessionFetcher) http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Get("/", h.ListSelections)

		r.With(middleware.FranchiseMiddleware).Post("/", h.CreateSelection)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminMiddleware)
			r.Post("/{id}/validate", h.ValidateSelection)
			r.Post("/{id}/reject", h.RejectSelection)
		})
	})

	return r
}
