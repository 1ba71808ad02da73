package alert

import (
	"context"
	"net/http"
	"time"

	"github.com/tawkr/tawkr-backend/internal/domain"
	"github.com/tawkr/tawkr-backend/internal/httputil"
	"github.com/tawkr/tawkr-backend/internal/metrics"
	"github.com/tawkr/tawkr-backend/internal/territory"
	"github.com/tawkr/tawkr-backend/internal/utils"
)

type Repository interface {
	ListAlerts(ctx context.Context) ([]Alert, error)
	GetAlert(ctx context.Context, id uint) (Alert, error)
	// SetAlertRead updates is_read only and returns the stored alert.
	SetAlertRead(ctx context.Context, id uint, read bool) (Alert, error)
	CreateAlert(ctx context.Context, a *Alert) error
}

type TerritoryLister interface {
	ListTerritories(ctx context.Context) ([]territory.Territory, error)
}

// VisibleAlerts returns the alerts about territories actor may see, newest
// first.
func VisibleAlerts(ctx context.Context, alerts Repository, territories TerritoryLister, actor utils.SessionData) ([]Alert, error) {
	as, err := alerts.ListAlerts(ctx)
	if err != nil {
		return nil, err
	}
	SortNewestFirst(as)
	if actor.IsAdmin() {
		return as, nil
	}

	ts, err := territories.ListTerritories(ctx)
	if err != nil {
		return nil, err
	}
	visible := make(map[uint]bool, len(ts))
	for _, t := range ts {
		visible[t.ID] = territory.Visible(t, actor)
	}

	out := make([]Alert, 0, len(as))
	for _, a := range as {
		if visible[a.TerritoryID] {
			out = append(out, a)
		}
	}
	return out, nil
}

type Handler struct {
	Repo        Repository
	Territories TerritoryLister
}

type listResponse struct {
	Alerts      []Alert       `json:"alerts"`
	UnreadCount int           `json:"unread_count"`
	ByLevel     map[Level]int `json:"by_level"`
}

// ListAlerts handles GET /alerts?status=unread|read&level=
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	actor, _ := utils.SessionFromContext(r.Context())

	as, err := VisibleAlerts(r.Context(), h.Repo, h.Territories, actor)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	resp := listResponse{
		UnreadCount: UnreadCount(as),
		ByLevel:     CountByLevel(as),
	}

	switch status := r.URL.Query().Get("status"); status {
	case "", "all":
	case "unread":
		as, _ = Partition(as)
	case "read":
		_, as = Partition(as)
	default:
		httputil.Error(w, r, domain.NewInvalidArgumentError("unknown alert status %q", status))
		return
	}

	if raw := r.URL.Query().Get("level"); raw != "" {
		level, err := ParseLevel(raw)
		if err != nil {
			httputil.Error(w, r, err)
			return
		}
		filtered := make([]Alert, 0, len(as))
		for _, a := range as {
			if a.Level == level {
				filtered = append(filtered, a)
			}
		}
		as = filtered
	}

	resp.Alerts = as
	httputil.JSON(w, http.StatusOK, resp)
}

type toggleResponse struct {
	Alert       Alert `json:"alert"`
	UnreadCount int   `json:"unread_count"`
}

// MarkRead handles POST /alerts/{id}/read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, true)
}

// MarkUnread handles POST /alerts/{id}/unread
func (h *Handler) MarkUnread(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, false)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, read bool) {
	id, err := httputil.URLParamID(r, "id")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	actor, _ := utils.SessionFromContext(r.Context())

	a, err := h.Repo.GetAlert(r.Context(), id)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	if !actor.IsAdmin() {
		t, err := h.territory(r.Context(), a.TerritoryID)
		if err != nil || !territory.Visible(t, actor) {
			httputil.Error(w, r, domain.NewNotFoundError("alert"))
			return
		}
	}

	a, err = h.Repo.SetAlertRead(r.Context(), id, read)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	visible, err := VisibleAlerts(r.Context(), h.Repo, h.Territories, actor)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, toggleResponse{Alert: a, UnreadCount: UnreadCount(visible)})
}

func (h *Handler) territory(ctx context.Context, id uint) (territory.Territory, error) {
	ts, err := h.Territories.ListTerritories(ctx)
	if err != nil {
		return territory.Territory{}, err
	}
	for _, t := range ts {
		if t.ID == id {
			return t, nil
		}
	}
	return territory.Territory{}, domain.NewNotFoundError("territory")
}

// Notifier raises alerts on behalf of other modules.
type Notifier struct {
	Repo    Repository
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Notify implements territory.Notifier.
func (n *Notifier) Notify(ctx context.Context, t territory.Territory, level, message string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}

	a := Alert{
		TerritoryID:   t.ID,
		TerritoryName: t.Name,
		Message:       message,
		Level:         lvl,
		CreatedAt:     now().UTC(),
	}
	if err := n.Repo.CreateAlert(ctx, &a); err != nil {
		return err
	}
	if n.Metrics != nil {
		n.Metrics.AlertsRaised.WithLabelValues(string(lvl)).Inc()
	}
	return nil
}
