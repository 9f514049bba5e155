package payment

import (
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	errors "github.com/Ngechemoris1/payup/internal"
	paymentmodel "github.com/Ngechemoris1/payup/internal/core/datamodel/payment"
)

// phonePattern is the Safaricom subscriber format: country code 254 followed
// by a 9-digit mobile number (07xx/01xx ranges without the leading zero).
var phonePattern = regexp.MustCompile(`^254[17]\d{8}$`)

// InitiatePaymentRequest is the caller-facing payload for an STK push.
type InitiatePaymentRequest struct {
	TenantID    int64           `json:"tenant_id"`
	Amount      decimal.Decimal `json:"amount"`
	PhoneNumber string          `json:"phone_number"`
	BillID      *int64          `json:"bill_id,omitempty"`
}

// Validate enforces the amount window and subscriber format. Bounds are
// inclusive on both ends.
func (r *InitiatePaymentRequest) Validate(minAmount, maxAmount decimal.Decimal) error {
	if !r.Amount.IsPositive() {
		return errors.NewValidationError("amount must be positive", errors.ErrCodeInvalidAmount)
	}
	if r.Amount.LessThan(minAmount) {
		return errors.NewValidationError(
			fmt.Sprintf("amount must be at least %s", minAmount.String()),
			errors.ErrCodeInvalidAmount)
	}
	if r.Amount.GreaterThan(maxAmount) {
		return errors.NewValidationError(
			fmt.Sprintf("amount must not exceed %s", maxAmount.String()),
			errors.ErrCodeInvalidAmount)
	}
	if !phonePattern.MatchString(r.PhoneNumber) {
		return errors.NewValidationError(
			"phone number must be in the format 2547XXXXXXXX or 2541XXXXXXXX",
			errors.ErrCodeInvalidPhone)
	}
	return nil
}

// InitiatePaymentResponse acknowledges a submitted push. TransactionID is the
// provider correlation id the later callback will carry.
type InitiatePaymentResponse struct {
	TransactionID   string `json:"transaction_id"`
	Status          string `json:"status"`
	CustomerMessage string `json:"customer_message"`
}

// PaymentView is the read model exposed on listing endpoints.
type PaymentView struct {
	ID            int64      `json:"id"`
	TenantID      int64      `json:"tenant_id"`
	BillID        *int64     `json:"bill_id,omitempty"`
	Amount        string     `json:"amount"`
	Method        string     `json:"method"`
	TransactionID string     `json:"transaction_id"`
	Status        string     `json:"status"`
	ReceiptNumber *string    `json:"receipt_number,omitempty"`
	PaymentDate   time.Time  `json:"payment_date"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

func ToView(p *paymentmodel.Payment) *PaymentView {
	return &PaymentView{
		ID:            p.ID,
		TenantID:      p.TenantID,
		BillID:        p.BillID,
		Amount:        p.Amount.StringFixed(2),
		Method:        p.Method,
		TransactionID: p.TransactionID,
		Status:        p.Status,
		ReceiptNumber: p.MpesaReceiptNumber,
		PaymentDate:   p.PaymentDate,
		PaidAt:        p.PaidAt,
	}
}

func ToViews(payments []*paymentmodel.Payment) []*PaymentView {
	views := make([]*PaymentView, len(payments))
	for i, p := range payments {
		views[i] = ToView(p)
	}
	return views
}
