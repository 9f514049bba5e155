package tenant

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	errors "github.com/Ngechemoris1/payup/internal"
	"github.com/Ngechemoris1/payup/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	TenantService ServiceAPI
	Logger        *slog.Logger
}

func NewHandler(baseHandler *transport.BaseHandler, tenantService ServiceAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler:   baseHandler,
		TenantService: tenantService,
		Logger:        logger,
	}
}

// CreateTenant handles POST /api/v1/tenants
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req CreateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("CreateTenant: failed to parse request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	t, err := h.TenantService.CreateTenant(&req)
	if err != nil {
		h.Logger.Error("CreateTenant: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, ToView(t))
}

// GetTenant handles GET /api/v1/tenants/{tenantID}
func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "tenantID"), 10, 64)
	if err != nil {
		h.HandleError(w, errors.NewValidationError("invalid tenant ID", errors.ErrCodeValidationFailed))
		return
	}

	t, err := h.TenantService.GetTenant(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToView(t))
}

// ListTenants handles GET /api/v1/tenants
func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	tenants, err := h.TenantService.ListTenants(offset, limit)
	if err != nil {
		h.Logger.Error("ListTenants: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"tenants": ToViews(tenants),
	})
}

// UpdateTenant handles PUT /api/v1/tenants/{tenantID}
func (h *Handler) UpdateTenant(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "tenantID"), 10, 64)
	if err != nil {
		h.HandleError(w, errors.NewValidationError("invalid tenant ID", errors.ErrCodeValidationFailed))
		return
	}

	var req UpdateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	t, err := h.TenantService.UpdateTenant(id, &req)
	if err != nil {
		h.Logger.Error("UpdateTenant: service error", "error", err, "tenant_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToView(t))
}

// DeleteTenant handles DELETE /api/v1/tenants/{tenantID}
func (h *Handler) DeleteTenant(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "tenantID"), 10, 64)
	if err != nil {
		h.HandleError(w, errors.NewValidationError("invalid tenant ID", errors.ErrCodeValidationFailed))
		return
	}

	if err := h.TenantService.DeleteTenant(id); err != nil {
		h.Logger.Error("DeleteTenant: service error", "error", err, "tenant_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
