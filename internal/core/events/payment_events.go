package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePaymentSettled = "payment.settled"
	EventTypePaymentFailed  = "payment.failed"
)

// PaymentSettledEvent is published after a payment transitions to PAID and
// the tenant ledger has been debited, once per payment.
type PaymentSettledEvent struct {
	BaseEvent
	PaymentID     int64  `json:"payment_id"`
	TenantID      int64  `json:"tenant_id"`
	TransactionID string `json:"transaction_id"`
	Amount        string `json:"amount"`
	ReceiptNumber string `json:"receipt_number"`
	TenantPhone   string `json:"tenant_phone"`
	TenantEmail   string `json:"tenant_email"`
}

func NewPaymentSettledEvent(paymentID, tenantID int64, transactionID, amount, receiptNumber, tenantPhone, tenantEmail string) *PaymentSettledEvent {
	return &PaymentSettledEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentSettled,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":     paymentID,
				"tenant_id":      tenantID,
				"transaction_id": transactionID,
				"amount":         amount,
				"receipt_number": receiptNumber,
			},
		},
		PaymentID:     paymentID,
		TenantID:      tenantID,
		TransactionID: transactionID,
		Amount:        amount,
		ReceiptNumber: receiptNumber,
		TenantPhone:   tenantPhone,
		TenantEmail:   tenantEmail,
	}
}

// PaymentFailedEvent is published when the provider reports a non-success
// result for a pending payment.
type PaymentFailedEvent struct {
	BaseEvent
	PaymentID     int64  `json:"payment_id"`
	TenantID      int64  `json:"tenant_id"`
	TransactionID string `json:"transaction_id"`
	Amount        string `json:"amount"`
	ResultCode    int    `json:"result_code"`
	ResultDesc    string `json:"result_desc"`
	TenantPhone   string `json:"tenant_phone"`
}

func NewPaymentFailedEvent(paymentID, tenantID int64, transactionID, amount string, resultCode int, resultDesc, tenantPhone string) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentFailed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":     paymentID,
				"tenant_id":      tenantID,
				"transaction_id": transactionID,
				"amount":         amount,
				"result_code":    resultCode,
				"result_desc":    resultDesc,
			},
		},
		PaymentID:     paymentID,
		TenantID:      tenantID,
		TransactionID: transactionID,
		Amount:        amount,
		ResultCode:    resultCode,
		ResultDesc:    resultDesc,
		TenantPhone:   tenantPhone,
	}
}
