package selection

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/tawkr/tawkr-backend/internal/domain"
	"github.com/tawkr/tawkr-backend/internal/httputil"
	"github.com/tawkr/tawkr-backend/internal/utils"
)

type Handler struct {
	Service  *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc, validate: validator.New()}
}

// ListSelections handles GET /selections
func (h *Handler) ListSelections(w http.ResponseWriter, r *http.Request) {
	actor, _ := utils.SessionFromContext(r.Context())

	ss, err := h.Service.List(r.Context(), actor)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, ss)
}

// CreateSelection handles POST /selections (franchise only)
func (h *Handler) CreateSelection(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.Error(w, r, domain.NewInvalidArgumentError("Invalid selection: %v", err))
		return
	}

	actor, _ := utils.SessionFromContext(r.Context())
	sel, err := h.Service.Create(r.Context(), actor, req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, sel)
}

// ValidateSelection handles POST /selections/{id}/validate (admin only)
func (h *Handler) ValidateSelection(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.URLParamID(r, "id")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	actor, _ := utils.SessionFromContext(r.Context())

	sel, err := h.Service.Validate(r.Context(), actor, id)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, sel)
}

// RejectSelection handles POST /selections/{id}/reject (admin only)
func (h *Handler) RejectSelection(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.URLParamID(r, "id")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	actor, _ := utils.SessionFromContext(r.Context())

	sel, err := h.Service.Reject(r.Context(), actor, id)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, sel)
}
