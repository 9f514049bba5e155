package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Ngechemoris1/payup/internal/core/events"
)

type EventHandler struct {
	sms    *SMSSender
	email  *EmailSender
	logger *slog.Logger
}

func NewEventHandler(sms *SMSSender, email *EmailSender, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		sms:    sms,
		email:  email,
		logger: logger,
	}
}

func (h *EventHandler) HandlePaymentSettled(ctx context.Context, event events.Event) error {
	settled, ok := event.(*events.PaymentSettledEvent)
	if !ok {
		h.logger.Error("invalid event type for payment settled handler", "event_type", event.EventType())
		return fmt.Errorf("expected PaymentSettledEvent, got %T", event)
	}

	message := fmt.Sprintf("Payment of KES %s received. Receipt: %s. Thank you.",
		settled.Amount, settled.ReceiptNumber)

	if settled.TenantPhone != "" {
		if err := h.sms.Send(settled.TenantPhone, message); err != nil {
			h.logger.Error("failed to send payment receipt sms",
				"error", err,
				"payment_id", settled.PaymentID,
				"event_id", settled.EventID())
		}
	}

	if settled.TenantEmail != "" {
		body := fmt.Sprintf("Dear tenant,\n\nWe have received your payment of KES %s.\nM-Pesa receipt: %s.\n\nPayUp",
			settled.Amount, settled.ReceiptNumber)
		if err := h.email.Send(settled.TenantEmail, "Payment received", body); err != nil {
			h.logger.Error("failed to send payment receipt email",
				"error", err,
				"payment_id", settled.PaymentID,
				"event_id", settled.EventID())
		}
	}

	return nil
}

func (h *EventHandler) HandlePaymentFailed(ctx context.Context, event events.Event) error {
	failed, ok := event.(*events.PaymentFailedEvent)
	if !ok {
		h.logger.Error("invalid event type for payment failed handler", "event_type", event.EventType())
		return fmt.Errorf("expected PaymentFailedEvent, got %T", event)
	}

	if failed.TenantPhone == "" {
		return nil
	}

	message := fmt.Sprintf("Your payment of KES %s was not completed: %s. Please try again.",
		failed.Amount, failed.ResultDesc)

	if err := h.sms.Send(failed.TenantPhone, message); err != nil {
		h.logger.Error("failed to send payment failure sms",
			"error", err,
			"payment_id", failed.PaymentID,
			"event_id", failed.EventID())
	}

	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypePaymentSettled, h.HandlePaymentSettled)
	eventBus.Subscribe(events.EventTypePaymentFailed, h.HandlePaymentFailed)

	h.logger.Info("notification event handlers registered",
		"handlers", []string{events.EventTypePaymentSettled, events.EventTypePaymentFailed})
}
