package payment

import (
	"encoding/json"
	"log/slog"
	"net/http"

	errors "github.com/Ngechemoris1/payup/internal"
	"github.com/Ngechemoris1/payup/internal/mpesa"
	"github.com/Ngechemoris1/payup/internal/transport"
)

// WebhookHandler receives the provider's asynchronous STK result. The caller
// is the provider, not a user: responses only steer its delivery-retry
// behavior, and a bad payload must never crash the process.
type WebhookHandler struct {
	*transport.BaseHandler
	paymentService ServiceAPI
	logger         *slog.Logger
}

func NewWebhookHandler(baseHandler *transport.BaseHandler, paymentService ServiceAPI, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler:    baseHandler,
		paymentService: paymentService,
		logger:         logger,
	}
}

type callbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

// HandleSTKCallback handles POST /api/v1/payments/mpesa/callback
func (h *WebhookHandler) HandleSTKCallback(w http.ResponseWriter, r *http.Request) {
	var envelope mpesa.CallbackEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		// Not meaningful to retry; reject without touching any state.
		h.logger.Error("STK callback body not parseable", "error", err)
		h.WriteJSON(w, http.StatusBadRequest, callbackAck{ResultCode: 1, ResultDesc: "Invalid callback body"})
		return
	}

	if cb := envelope.Body.StkCallback; cb != nil {
		h.logger.Info("received STK callback",
			"transaction_id", cb.CheckoutRequestID,
			"result_code", cb.ResultCode)
	}

	if err := h.paymentService.ReconcileCallback(r.Context(), &envelope); err != nil {
		if appErr, ok := errors.IsAppError(err); ok {
			switch appErr.Type {
			case errors.ErrorTypeValidation:
				h.logger.Error("STK callback rejected as malformed", "error", appErr)
				h.WriteJSON(w, http.StatusBadRequest, callbackAck{ResultCode: 1, ResultDesc: "Malformed callback"})
				return
			case errors.ErrorTypeNotFound:
				// The provider may retry delivery; never report success for a
				// transaction we cannot account for.
				h.logger.Error("STK callback for unknown transaction", "error", appErr)
				h.WriteJSON(w, http.StatusNotFound, callbackAck{ResultCode: 1, ResultDesc: "Unknown transaction"})
				return
			}
		}

		h.logger.Error("STK callback processing failed", "error", err)
		h.WriteJSON(w, http.StatusInternalServerError, callbackAck{ResultCode: 1, ResultDesc: "Processing failed"})
		return
	}

	h.WriteJSON(w, http.StatusOK, callbackAck{ResultCode: 0, ResultDesc: "Accepted"})
}
