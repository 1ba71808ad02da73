package analytics

import (
	"net/http"

	"github.com/tawkr/tawkr-backend/internal/httputil"
	"github.com/tawkr/tawkr-backend/internal/utils"
)

type Handler struct {
	Service *Service
}

// GetDashboard handles GET /analytics/dashboard
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	actor, _ := utils.SessionFromContext(r.Context())
	d, err := h.Service.Dashboard(r.Context(), actor)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, d)
}

// GetOverview handles GET /analytics/overview
func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	actor, _ := utils.SessionFromContext(r.Context())
	o, err := h.Service.Overview(r.Context(), actor)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, o)
}
