package postgres

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	paymentmodel "github.com/Ngechemoris1/payup/internal/core/datamodel/payment"
	paymentpkg "github.com/Ngechemoris1/payup/internal/payment"
	tenantPostgres "github.com/Ngechemoris1/payup/internal/tenant/postgres"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) paymentpkg.RepositoryAPI {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(p *paymentmodel.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetByTransactionID(transactionID string) (*paymentmodel.Payment, error) {
	var p paymentmodel.Payment
	err := r.db.Where("transaction_id = ?", transactionID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByTransactionIDForUpdate acquires a row lock held until the enclosing
// transaction ends. Callers must run inside the unit of work.
func (r *PaymentRepository) GetByTransactionIDForUpdate(transactionID string) (*paymentmodel.Payment, error) {
	var p paymentmodel.Payment
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("transaction_id = ?", transactionID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByTenantID(tenantID int64) ([]*paymentmodel.Payment, error) {
	var payments []*paymentmodel.Payment
	err := r.db.Where("tenant_id = ?", tenantID).Order("payment_date DESC").Find(&payments).Error
	return payments, err
}

func (r *PaymentRepository) MarkPaid(id int64, receiptNumber string, resultCode int, resultDesc string, paidAt time.Time) error {
	return r.db.Model(&paymentmodel.Payment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":               paymentmodel.StatusPaid,
		"mpesa_receipt_number": receiptNumber,
		"result_code":          resultCode,
		"result_description":   resultDesc,
		"paid_at":              paidAt,
		"updated_at":           time.Now(),
	}).Error
}

func (r *PaymentRepository) MarkFailed(id int64, resultCode int, resultDesc string) error {
	return r.db.Model(&paymentmodel.Payment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":             paymentmodel.StatusFailed,
		"result_code":        resultCode,
		"result_description": resultDesc,
		"updated_at":         time.Now(),
	}).Error
}

// UnitOfWork runs reconciliation work inside one database transaction,
// providing transaction-scoped payment and tenant stores.
type UnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) paymentpkg.UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) Do(fn func(payments paymentpkg.RepositoryAPI, tenants paymentpkg.TenantStore) error) error {
	return u.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewPaymentRepository(tx), tenantPostgres.NewTenantRepository(tx))
	})
}
