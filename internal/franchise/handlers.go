package franchise

import (
	"context"
	"net/http"

	"github.com/tawkr/tawkr-backend/internal/domain"
	"github.com/tawkr/tawkr-backend/internal/httputil"
	"github.com/tawkr/tawkr-backend/internal/utils"
)

type Repository interface {
	ListFranchises(ctx context.Context) ([]Franchise, error)
	GetFranchise(ctx context.Context, id uint) (Franchise, error)
}

type Handler struct {
	Repo Repository
}

// ListFranchises handles GET /franchises (admin only)
func (h *Handler) ListFranchises(w http.ResponseWriter, r *http.Request) {
	fs, err := h.Repo.ListFranchises(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, fs)
}

// GetFranchise handles GET /franchises/{id}. Franchise users may read their
// own franchise only.
func (h *Handler) GetFranchise(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.URLParamID(r, "id")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	actor, _ := utils.SessionFromContext(r.Context())
	if !actor.IsAdmin() && (actor.FranchiseID == nil || *actor.FranchiseID != id) {
		httputil.Error(w, r, domain.NewForbiddenError("Forbidden: not your franchise"))
		return
	}

	f, err := h.Repo.GetFranchise(r.Context(), id)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, f)
}
