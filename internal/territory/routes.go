package territory

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tawkr/tawkr-backend/internal/middleware"
)

func SetupRoutes(h *Handler, sessionFetcher middleware.SessionFetcher) http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))

		r.Get("/", h.ListTerritories)
		r.Get("/{id}", h.GetTerritory)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminMiddleware)
			r.Patch("/{id}", h.UpdateTerritory)
			r.Post("/{id}/close", h.CloseTerritory)
		})
	})

	return r
}
