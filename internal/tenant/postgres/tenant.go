package postgres

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	tenantmodel "github.com/Ngechemoris1/payup/internal/core/datamodel/tenant"
)

type TenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository returns the concrete repository so callers can use it
// both as the tenant directory store and as the ledger's balance store.
func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) Create(t *tenantmodel.Tenant) error {
	return r.db.Create(t).Error
}

func (r *TenantRepository) GetByID(id int64) (*tenantmodel.Tenant, error) {
	var t tenantmodel.Tenant
	if err := r.db.First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByIDForUpdate acquires a row lock held until the enclosing transaction
// ends. The ledger uses this to serialize balance updates per tenant.
func (r *TenantRepository) GetByIDForUpdate(id int64) (*tenantmodel.Tenant, error) {
	var t tenantmodel.Tenant
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TenantRepository) GetAll(offset, limit int) ([]*tenantmodel.Tenant, error) {
	var tenants []*tenantmodel.Tenant
	err := r.db.Order("name ASC").Offset(offset).Limit(limit).Find(&tenants).Error
	return tenants, err
}

func (r *TenantRepository) GetByRoomID(roomID int64) (*tenantmodel.Tenant, error) {
	var t tenantmodel.Tenant
	if err := r.db.Where("room_id = ?", roomID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TenantRepository) Update(t *tenantmodel.Tenant) error {
	return r.db.Save(t).Error
}

func (r *TenantRepository) UpdateBalance(id int64, balance decimal.Decimal) error {
	return r.db.Model(&tenantmodel.Tenant{}).Where("id = ?", id).Updates(map[string]interface{}{
		"balance":    balance,
		"updated_at": time.Now(),
	}).Error
}

func (r *TenantRepository) Delete(id int64) error {
	return r.db.Delete(&tenantmodel.Tenant{}, id).Error
}
