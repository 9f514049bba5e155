package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending = "PENDING"
	StatusPaid    = "PAID"
	StatusFailed  = "FAILED"

	MethodMpesa = "MPESA"
)

// Payment records a single push-payment request issued to the provider.
// TransactionID is the provider-issued CheckoutRequestID and is the key the
// asynchronous callback reconciles against. Rows are never deleted.
type Payment struct {
	ID                 int64           `gorm:"primaryKey"`
	TenantID           int64           `gorm:"column:tenant_id;not null"`
	BillID             *int64          `gorm:"column:bill_id"`
	Amount             decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	Method             string          `gorm:"column:method;not null;default:MPESA"`
	TransactionID      string          `gorm:"column:transaction_id;uniqueIndex;not null"`
	IdempotencyKey     string          `gorm:"column:idempotency_key;uniqueIndex;not null"`
	Status             string          `gorm:"column:status;not null;default:PENDING"`
	ResultCode         *int            `gorm:"column:result_code"`
	ResultDescription  *string         `gorm:"column:result_description"`
	MpesaReceiptNumber *string         `gorm:"column:mpesa_receipt_number"`
	PaymentDate        time.Time       `gorm:"column:payment_date;default:now()"`
	PaidAt             *time.Time      `gorm:"column:paid_at"`
	CreatedAt          time.Time       `gorm:"column:created_at;default:now()"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;default:now()"`
}

func (Payment) TableName() string {
	return "payments"
}

// IsTerminal reports whether the payment has reached a state from which no
// further transition is permitted.
func (p *Payment) IsTerminal() bool {
	return p.Status == StatusPaid || p.Status == StatusFailed
}

// CanTransition reports whether moving to the given status is a legal edge
// of the payment state machine. Terminal states are sticky.
func (p *Payment) CanTransition(to string) bool {
	allowed, ok := validTransitions[p.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

var validTransitions = map[string][]string{
	StatusPending: {StatusPaid, StatusFailed},
	StatusPaid:    {},
	StatusFailed:  {},
}
