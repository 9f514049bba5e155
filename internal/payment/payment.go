package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	paymentmodel "github.com/Ngechemoris1/payup/internal/core/datamodel/payment"
	tenantmodel "github.com/Ngechemoris1/payup/internal/core/datamodel/tenant"
	"github.com/Ngechemoris1/payup/internal/mpesa"
)

// RepositoryAPI is the payment store consumed by the service. The ForUpdate
// variant must hold a row lock for the remainder of the enclosing
// transaction so concurrent callback deliveries serialize per payment.
type RepositoryAPI interface {
	Create(p *paymentmodel.Payment) error
	GetByTransactionID(transactionID string) (*paymentmodel.Payment, error)
	GetByTransactionIDForUpdate(transactionID string) (*paymentmodel.Payment, error)
	GetByTenantID(tenantID int64) ([]*paymentmodel.Payment, error)
	MarkPaid(id int64, receiptNumber string, resultCode int, resultDesc string, paidAt time.Time) error
	MarkFailed(id int64, resultCode int, resultDesc string) error
}

// TenantStore is the slice of the tenant directory the payment core needs:
// identity reads plus the single balance write owned by the ledger updater.
type TenantStore interface {
	GetByID(id int64) (*tenantmodel.Tenant, error)
	GetByIDForUpdate(id int64) (*tenantmodel.Tenant, error)
	UpdateBalance(id int64, balance decimal.Decimal) error
}

// UnitOfWork runs fn inside one database transaction, handing it
// transaction-scoped payment and tenant stores. The status transition and
// the ledger debit commit or roll back together.
type UnitOfWork interface {
	Do(fn func(payments RepositoryAPI, tenants TenantStore) error) error
}

// PushClient submits STK push requests to the provider.
type PushClient interface {
	STKPush(ctx context.Context, input mpesa.STKPushInput) (*mpesa.STKPushResult, error)
}

type ServiceAPI interface {
	InitiatePayment(ctx context.Context, req *InitiatePaymentRequest) (*InitiatePaymentResponse, error)
	ReconcileCallback(ctx context.Context, envelope *mpesa.CallbackEnvelope) error
	GetPaymentsByTenant(tenantID int64) ([]*paymentmodel.Payment, error)
}
