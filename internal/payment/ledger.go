package payment

import (
	"log/slog"
	"net/http"

	errors "github.com/Ngechemoris1/payup/internal"
	paymentmodel "github.com/Ngechemoris1/payup/internal/core/datamodel/payment"
)

// LedgerUpdater applies the monetary effect of a PAID payment to the owning
// tenant's balance. It is invoked only on the PENDING->PAID transition edge,
// inside the same transaction, so the debit happens exactly once per payment.
type LedgerUpdater struct {
	logger *slog.Logger
}

func NewLedgerUpdater(logger *slog.Logger) *LedgerUpdater {
	return &LedgerUpdater{logger: logger}
}

// Settle debits payment.Amount from the tenant balance through the
// transaction-scoped store.
func (l *LedgerUpdater) Settle(tenants TenantStore, p *paymentmodel.Payment) error {
	if p.Status != paymentmodel.StatusPaid {
		return errors.NewInternalError("ledger settle called for a non-PAID payment", nil)
	}

	tenant, err := tenants.GetByIDForUpdate(p.TenantID)
	if err != nil {
		l.logger.Error("ledger update failed: tenant lookup",
			"payment_id", p.ID,
			"tenant_id", p.TenantID,
			"error", err)
		return newLedgerError("tenant not found for ledger update", err)
	}

	newBalance := tenant.Balance.Sub(p.Amount)

	if err := tenants.UpdateBalance(tenant.ID, newBalance); err != nil {
		l.logger.Error("ledger update failed: balance persist",
			"payment_id", p.ID,
			"tenant_id", tenant.ID,
			"error", err)
		return newLedgerError("failed to persist tenant balance", err)
	}

	l.logger.Info("tenant ledger settled",
		"payment_id", p.ID,
		"tenant_id", tenant.ID,
		"amount", p.Amount.StringFixed(2),
		"previous_balance", tenant.Balance.StringFixed(2),
		"new_balance", newBalance.StringFixed(2))

	return nil
}

func newLedgerError(message string, cause error) *errors.AppError {
	return &errors.AppError{
		Type:       errors.ErrorTypeInternal,
		Code:       errors.ErrCodeLedgerUpdateFailed,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}
