package bill

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
	BillService ServiceAPI
	Logger      *slog.Logger
}

func NewHandler(baseHandler *transport.BaseHandler, billService ServiceAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		BillService: billService,
		Logger:      logger,
	}
}

// CreateBill handles POST /api/v1/bills
func (h *Handler) CreateBill(w http.ResponseWriter, r *http.Request) {
	var req CreateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	b, err := h.BillService.CreateBill(&req)
	if err != nil {
		h.Logger.Error("CreateBill: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, ToView(b))
}

// GetBill handles GET /api/v1/bills/{billID}
func (h *Handler) GetBill(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "billID"), 10, 64)
	if err != nil {
		h.HandleError(w, errors.NewValidationError("invalid bill ID", errors.ErrCodeValidationFailed))
		return
	}

	b, err := h.BillService.GetBill(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToView(b))
}

// ListTenantBills handles GET /api/v1/tenants/{tenantID}/bills
func (h *Handler) ListTenantBills(w http.ResponseWriter, r *http.Request) {
	tenantID, err := strconv.ParseInt(chi.URLParam(r, "tenantID"), 10, 64)
	if err != nil {
		h.HandleError(w, errors.NewValidationError("invalid tenant ID", errors.ErrCodeValidationFailed))
		return
	}

	bills, err := h.BillService.ListTenantBills(tenantID)
	if err != nil {
		h.Logger.Error("ListTenantBills: service error", "error", err, "tenant_id", tenantID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"bills": ToViews(bills),
	})
}

// MarkBillPaid handles POST /api/v1/bills/{billID}/paid
func (h *Handler) MarkBillPaid(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "billID"), 10, 64)
	if err != nil {
		h.HandleError(w, errors.NewValidationError("invalid bill ID", errors.ErrCodeValidationFailed))
		return
	}

	if err := h.BillService.MarkBillPaid(id); err != nil {
		h.Logger.Error("MarkBillPaid: service error", "error", err, "bill_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "paid"})
}

// DeleteBill handles DELETE /api/v1/bills/{billID}
func (h *Handler) DeleteBill(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "billID"), 10, 64)
	if err != nil {
		h.HandleError(w, errors.NewValidationError("invalid bill ID", errors.ErrCodeValidationFailed))
		return
	}

	if err := h.BillService.DeleteBill(id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
