package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	errors "github.com/Ngechemoris1/payup/internal"
	paymentmodel "github.com/Ngechemoris1/payup/internal/core/datamodel/payment"
	"github.com/Ngechemoris1/payup/internal/core/events"
	"github.com/Ngechemoris1/payup/internal/mpesa"
)

// PaymentService owns push-payment initiation and callback reconciliation.
type PaymentService struct {
	pushClient PushClient
	payments   RepositoryAPI
	tenants    TenantStore
	uow        UnitOfWork
	ledger     *LedgerUpdater
	eventBus   *events.EventBus
	logger     *slog.Logger

	minAmount decimal.Decimal
	maxAmount decimal.Decimal

	now func() time.Time
}

func NewPaymentService(
	pushClient PushClient,
	payments RepositoryAPI,
	tenants TenantStore,
	uow UnitOfWork,
	ledger *LedgerUpdater,
	eventBus *events.EventBus,
	minAmount, maxAmount int64,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		pushClient: pushClient,
		payments:   payments,
		tenants:    tenants,
		uow:        uow,
		ledger:     ledger,
		eventBus:   eventBus,
		logger:     logger,
		minAmount:  decimal.NewFromInt(minAmount),
		maxAmount:  decimal.NewFromInt(maxAmount),
		now:        time.Now,
	}
}

// InitiatePayment validates the request, submits the STK push and records a
// PENDING payment keyed by the provider's CheckoutRequestID. No payment row
// exists unless the provider acknowledged the submission.
func (s *PaymentService) InitiatePayment(ctx context.Context, req *InitiatePaymentRequest) (*InitiatePaymentResponse, error) {
	if err := req.Validate(s.minAmount, s.maxAmount); err != nil {
		s.logger.Warn("payment initiation rejected",
			"tenant_id", req.TenantID,
			"error", err)
		return nil, err
	}

	tenant, err := s.tenants.GetByID(req.TenantID)
	if err != nil {
		s.logger.Warn("payment initiation for unknown tenant", "tenant_id", req.TenantID)
		return nil, errors.ErrTenantNotFound
	}

	accountReference := fmt.Sprintf("TENANT-%d", tenant.ID)
	description := "Rent payment"
	if req.BillID != nil {
		accountReference = fmt.Sprintf("BILL-%d", *req.BillID)
		description = "Bill payment"
	}

	result, err := s.pushClient.STKPush(ctx, mpesa.STKPushInput{
		Amount:           req.Amount,
		PhoneNumber:      req.PhoneNumber,
		AccountReference: accountReference,
		Description:      description,
	})
	if err != nil {
		s.logger.Error("STK push submission failed",
			"tenant_id", tenant.ID,
			"error", err)
		return nil, err
	}

	p := &paymentmodel.Payment{
		TenantID:       tenant.ID,
		BillID:         req.BillID,
		Amount:         req.Amount,
		Method:         paymentmodel.MethodMpesa,
		TransactionID:  result.CheckoutRequestID,
		IdempotencyKey: uuid.NewString(),
		Status:         paymentmodel.StatusPending,
		PaymentDate:    s.now(),
	}

	if err := s.payments.Create(p); err != nil {
		// The provider accepted the push but we failed to record it; the
		// callback will arrive for an unknown transaction. Loud on purpose.
		s.logger.Error("failed to persist pending payment after provider accept",
			"tenant_id", tenant.ID,
			"transaction_id", result.CheckoutRequestID,
			"error", err)
		return nil, errors.NewInternalError("failed to record pending payment", err)
	}

	s.logger.Info("payment initiated",
		"payment_id", p.ID,
		"tenant_id", tenant.ID,
		"transaction_id", p.TransactionID,
		"amount", p.Amount.StringFixed(2))

	return &InitiatePaymentResponse{
		TransactionID:   result.CheckoutRequestID,
		Status:          paymentmodel.StatusPending,
		CustomerMessage: result.CustomerMessage,
	}, nil
}

// ReconcileCallback settles the payment referenced by the provider's result
// notification exactly once. The lookup, the transition and the ledger debit
// run under one transaction with the payment row locked, so duplicate or
// concurrent deliveries cannot double-apply.
func (s *PaymentService) ReconcileCallback(ctx context.Context, envelope *mpesa.CallbackEnvelope) error {
	if err := envelope.Validate(); err != nil {
		s.logger.Warn("malformed provider callback rejected", "error", err)
		return errors.NewValidationError(err.Error(), errors.ErrCodeMalformedCallback)
	}

	cb := envelope.Body.StkCallback

	var settled *events.PaymentSettledEvent
	var failed *events.PaymentFailedEvent

	err := s.uow.Do(func(payments RepositoryAPI, tenants TenantStore) error {
		p, err := payments.GetByTransactionIDForUpdate(cb.CheckoutRequestID)
		if err != nil {
			s.logger.Warn("callback for unknown transaction",
				"transaction_id", cb.CheckoutRequestID,
				"result_code", cb.ResultCode)
			return errors.ErrPaymentNotFound
		}

		if p.IsTerminal() {
			sameOutcome := (p.Status == paymentmodel.StatusPaid && cb.Succeeded()) ||
				(p.Status == paymentmodel.StatusFailed && !cb.Succeeded())
			if sameOutcome {
				s.logger.Info("duplicate callback for settled payment ignored",
					"payment_id", p.ID,
					"transaction_id", p.TransactionID,
					"status", p.Status)
				return nil
			}
			// A conflicting outcome for a terminal payment is an operational
			// anomaly; the recorded state always wins.
			s.logger.Error("terminal state conflict: callback outcome differs from recorded state",
				"payment_id", p.ID,
				"transaction_id", p.TransactionID,
				"recorded_status", p.Status,
				"callback_result_code", cb.ResultCode,
				"code", errors.ErrCodeTerminalStateConflict)
			return nil
		}

		if cb.Succeeded() {
			receipt := cb.ReceiptNumber()
			paidAt := s.now()

			if err := payments.MarkPaid(p.ID, receipt, cb.ResultCode, cb.ResultDesc, paidAt); err != nil {
				return fmt.Errorf("mark payment paid: %w", err)
			}

			p.Status = paymentmodel.StatusPaid
			p.MpesaReceiptNumber = &receipt
			p.PaidAt = &paidAt

			// Ledger failure after a provider-confirmed payment is a
			// reconciliation incident: the PAID transition stands, the debit
			// is flagged for manual follow-up rather than rolled back.
			if err := s.ledger.Settle(tenants, p); err != nil {
				s.logger.Error("payment PAID but ledger not settled, manual reconciliation required",
					"payment_id", p.ID,
					"tenant_id", p.TenantID,
					"transaction_id", p.TransactionID,
					"error", err)
			}

			tenant, err := tenants.GetByID(p.TenantID)
			if err == nil {
				settled = events.NewPaymentSettledEvent(
					p.ID, p.TenantID, p.TransactionID,
					p.Amount.StringFixed(2), receipt,
					tenant.Phone, tenant.Email,
				)
			}

			s.logger.Info("payment reconciled as PAID",
				"payment_id", p.ID,
				"transaction_id", p.TransactionID,
				"receipt_number", receipt)
			return nil
		}

		if err := payments.MarkFailed(p.ID, cb.ResultCode, cb.ResultDesc); err != nil {
			return fmt.Errorf("mark payment failed: %w", err)
		}

		tenant, err := tenants.GetByID(p.TenantID)
		if err == nil {
			failed = events.NewPaymentFailedEvent(
				p.ID, p.TenantID, p.TransactionID,
				p.Amount.StringFixed(2), cb.ResultCode, cb.ResultDesc,
				tenant.Phone,
			)
		}

		s.logger.Info("payment reconciled as FAILED",
			"payment_id", p.ID,
			"transaction_id", p.TransactionID,
			"result_code", cb.ResultCode,
			"result_desc", cb.ResultDesc)
		return nil
	})
	if err != nil {
		return err
	}

	if settled != nil {
		s.eventBus.Publish(ctx, settled)
	}
	if failed != nil {
		s.eventBus.Publish(ctx, failed)
	}

	return nil
}

// GetPaymentsByTenant lists a tenant's payment history, newest first.
func (s *PaymentService) GetPaymentsByTenant(tenantID int64) ([]*paymentmodel.Payment, error) {
	return s.payments.GetByTenantID(tenantID)
}
