package payment

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
	PaymentService ServiceAPI
	Logger         *slog.Logger
}

func NewHandler(baseHandler *transport.BaseHandler, paymentService ServiceAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler:    baseHandler,
		PaymentService: paymentService,
		Logger:         logger,
	}
}

// InitiatePayment handles POST /api/v1/payments/initiate
func (h *Handler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	var req InitiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("InitiatePayment: failed to parse request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	resp, err := h.PaymentService.InitiatePayment(r.Context(), &req)
	if err != nil {
		h.Logger.Error("InitiatePayment: service error",
			"error", err,
			"tenant_id", req.TenantID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("InitiatePayment: STK push submitted",
		"tenant_id", req.TenantID,
		"transaction_id", resp.TransactionID)

	h.WriteJSON(w, http.StatusOK, resp)
}

// ListTenantPayments handles GET /api/v1/tenants/{tenantID}/payments
func (h *Handler) ListTenantPayments(w http.ResponseWriter, r *http.Request) {
	tenantID, err := strconv.ParseInt(chi.URLParam(r, "tenantID"), 10, 64)
	if err != nil {
		h.HandleError(w, errors.NewValidationError("invalid tenant ID", errors.ErrCodeValidationFailed))
		return
	}

	payments, err := h.PaymentService.GetPaymentsByTenant(tenantID)
	if err != nil {
		h.Logger.Error("ListTenantPayments: service error", "error", err, "tenant_id", tenantID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"payments": ToViews(payments),
	})
}
