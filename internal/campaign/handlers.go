package campaign

import (
	"context"
	"net/http"

	"github.com/tawkr/tawkr-backend/internal/httputil"
)

type Repository interface {
	ListCampaigns(ctx context.Context) ([]Campaign, error)
	GetCampaign(ctx context.Context, id uint) (Campaign, error)
	// ValidatedMondaysByCampaign sums mondays_selected of validated
	// selections per campaign id.
	ValidatedMondaysByCampaign(ctx context.Context) (map[uint]int, error)
}

type Handler struct {
	Repo Repository
}

// ListProgress returns every campaign with its progress, by priority.
func ListProgress(ctx context.Context, repo Repository) ([]Progress, error) {
	cs, err := repo.ListCampaigns(ctx)
	if err != nil {
		return nil, err
	}
	selected, err := repo.ValidatedMondaysByCampaign(ctx)
	if err != nil {
		return nil, err
	}

	SortByPriority(cs)
	out := make([]Progress, 0, len(cs))
	for _, c := range cs {
		out = append(out, NewProgress(c, selected[c.ID]))
	}
	return out, nil
}

// ListCampaigns handles GET /campaigns
func (h *Handler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	out, err := ListProgress(r.Context(), h.Repo)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, out)
}

// GetCampaign handles GET /campaigns/{id}
func (h *Handler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.URLParamID(r, "id")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	c, err := h.Repo.GetCampaign(r.Context(), id)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	selected, err := h.Repo.ValidatedMondaysByCampaign(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, NewProgress(c, selected[c.ID]))
}
