package territory

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/tawkr/tawkr-backend/internal/domain"
	"github.com/tawkr/tawkr-backend/internal/httputil"
	"github.com/tawkr/tawkr-backend/internal/utils"
	"go.uber.org/zap"
)

type Repository interface {
	ListTerritories(ctx context.Context) ([]Territory, error)
	GetTerritory(ctx context.Context, id uint) (Territory, error)
	// UpdateTerritory applies fn to the current territory atomically with
	// respect to other writers. Nothing is written when fn fails.
	UpdateTerritory(ctx context.Context, id uint, fn func(*Territory) error) (Territory, error)
}

// Notifier raises alerts about a territory.
type Notifier interface {
	Notify(ctx context.Context, t Territory, level, message string) error
}

type Handler struct {
	Repo     Repository
	Notifier Notifier
	Logger   *zap.Logger
	validate *validator.Validate
}

func NewHandler(repo Repository, notifier Notifier, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.L()
	}
	return &Handler{
		Repo:     repo,
		Notifier: notifier,
		Logger:   logger,
		validate: validator.New(),
	}
}

// View decorates a territory with what the current actor may do with it.
type View struct {
	Territory
	Selectable bool `json:"selectable"`
	Editable   bool `json:"editable"`
}

func viewOf(t Territory, actor utils.SessionData) View {
	return View{
		Territory:  t,
		Selectable: Selectable(t, actor),
		Editable:   Editable(actor),
	}
}

// ListTerritories handles GET /territories?q=&status=&region=
func (h *Handler) ListTerritories(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.SessionFromContext(r.Context())
	if !ok {
		httputil.Error(w, r, domain.NewUnauthorizedError())
		return
	}

	q := Query{
		Text:   r.URL.Query().Get("q"),
		Region: r.URL.Query().Get("region"),
	}
	if raw := r.URL.Query().Get("status"); raw != "" && raw != "all" {
		s, err := ParseStatus(raw)
		if err != nil {
			httputil.Error(w, r, err)
			return
		}
		q.Status = &s
	}

	all, err := h.Repo.ListTerritories(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	found := Search(FilterVisible(all, actor), q)
	views := make([]View, 0, len(found))
	for _, t := range found {
		views = append(views, viewOf(t, actor))
	}

	httputil.JSON(w, http.StatusOK, views)
}

// GetTerritory handles GET /territories/{id}. Territories the actor may not
// see are reported as missing.
func (h *Handler) GetTerritory(w http.ResponseWriter, r *http.Request) {
	actor, _ := utils.SessionFromContext(r.Context())

	t, err := h.visibleTerritory(r, actor)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, viewOf(t, actor))
}

// UpdateRequest carries the admin-editable fields of a territory.
type UpdateRequest struct {
	Logements         *int     `json:"logements,omitempty" validate:"omitempty,gte=0"`
	PctResidPrinc     *float64 `json:"pct_resid_princ,omitempty" validate:"omitempty,gte=0,lte=100"`
	DistanceKm        *string  `json:"distance_km,omitempty" validate:"omitempty,max=32"`
	TempsTrajet       *string  `json:"temps_trajet,omitempty" validate:"omitempty,max=32"`
	DispoCRF          *string  `json:"dispo_crf,omitempty" validate:"omitempty,max=32"`
	DispoACF          *string  `json:"dispo_acf,omitempty" validate:"omitempty,max=32"`
	DispoMDM          *string  `json:"dispo_mdm,omitempty" validate:"omitempty,max=32"`
	DispoAutres       *string  `json:"dispo_autres,omitempty" validate:"omitempty,max=32"`
	NextAvailableDate *string  `json:"next_available_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Comments          *string  `json:"comments,omitempty" validate:"omitempty,max=2000"`
}

// Apply copies the set fields onto t and refreshes its capacity.
func (u UpdateRequest) Apply(t *Territory) error {
	if u.Logements != nil {
		t.Logements = *u.Logements
	}
	if u.PctResidPrinc != nil {
		t.PctResidPrinc = *u.PctResidPrinc
	}
	if u.DistanceKm != nil {
		t.DistanceKm = *u.DistanceKm
	}
	if u.TempsTrajet != nil {
		t.TempsTrajet = *u.TempsTrajet
	}
	if u.DispoCRF != nil {
		t.DispoCRF = u.DispoCRF
	}
	if u.DispoACF != nil {
		t.DispoACF = u.DispoACF
	}
	if u.DispoMDM != nil {
		t.DispoMDM = u.DispoMDM
	}
	if u.DispoAutres != nil {
		t.DispoAutres = u.DispoAutres
	}
	if u.NextAvailableDate != nil {
		t.NextAvailableDate = u.NextAvailableDate
	}
	if u.Comments != nil {
		t.Comments = u.Comments
	}
	return t.Recompute()
}

// UpdateTerritory handles PATCH /territories/{id} (admin only)
func (h *Handler) UpdateTerritory(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.URLParamID(r, "id")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	var req UpdateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.Error(w, r, domain.NewInvalidArgumentError("Invalid territory update: %v", err))
		return
	}

	t, err := h.Repo.UpdateTerritory(r.Context(), id, req.Apply)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	actor, _ := utils.SessionFromContext(r.Context())
	httputil.JSON(w, http.StatusOK, viewOf(t, actor))
}

// CloseTerritory handles POST /territories/{id}/close (admin only)
func (h *Handler) CloseTerritory(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.URLParamID(r, "id")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	var body struct {
		Reason string `json:"reason" validate:"max=500"`
	}
	if r.ContentLength > 0 {
		if err := httputil.DecodeJSON(r, &body); err != nil {
			httputil.Error(w, r, err)
			return
		}
		if err := h.validate.Struct(body); err != nil {
			httputil.Error(w, r, domain.NewInvalidArgumentError("Invalid close request: %v", err))
			return
		}
	}

	t, err := h.Repo.UpdateTerritory(r.Context(), id, func(t *Territory) error {
		return t.Transition(StatusClosed, nil)
	})
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	if h.Notifier != nil {
		msg := "Territoire fermé"
		if body.Reason != "" {
			msg += " - " + body.Reason
		}
		if err := h.Notifier.Notify(r.Context(), t, "warning", msg); err != nil {
			h.Logger.Warn("notify territory closed", zap.Uint("territory_id", t.ID), zap.Error(err))
		}
	}

	actor, _ := utils.SessionFromContext(r.Context())
	httputil.JSON(w, http.StatusOK, viewOf(t, actor))
}

func (h *Handler) visibleTerritory(r *http.Request, actor utils.SessionData) (Territory, error) {
	id, err := httputil.URLParamID(r, "id")
	if err != nil {
		return Territory{}, err
	}
	t, err := h.Repo.GetTerritory(r.Context(), id)
	if err != nil {
		return Territory{}, err
	}
	if !Visible(t, actor) {
		return Territory{}, domain.NewNotFoundError("territory")
	}
	return t, nil
}
