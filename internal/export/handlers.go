package export

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/tawkr/tawkr-backend/internal/domain"
	"github.com/tawkr/tawkr-backend/internal/httputil"
	"github.com/tawkr/tawkr-backend/internal/utils"
	"go.uber.org/zap"
)

type Handler struct {
	Service  *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc, validate: validator.New()}
}

// CreateExport handles POST /exports and streams the generated file back.
func (h *Handler) CreateExport(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.Error(w, r, domain.NewInvalidArgumentError("Invalid export request: %v", err))
		return
	}

	actor, _ := utils.SessionFromContext(r.Context())
	file, err := h.Service.Generate(r.Context(), actor, req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Body)))
	w.Header().Set("X-Export-ID", file.Record.ID)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Body); err != nil {
		zap.L().Warn("write export", zap.String("export_id", file.Record.ID), zap.Error(err))
	}
}

// ListExports handles GET /exports
func (h *Handler) ListExports(w http.ResponseWriter, r *http.Request) {
	actor, _ := utils.SessionFromContext(r.Context())
	rs, err := h.Service.Recent(r.Context(), actor)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, rs)
}
