package tenant

import (
	"github.com/shopspring/decimal"

	tenantmodel "github.com/Ngechemoris1/payup/internal/core/datamodel/tenant"
)

// RepositoryAPI is the tenant directory store. UpdateBalance exists solely
// for the payment ledger; nothing else writes Balance.
type RepositoryAPI interface {
	Create(t *tenantmodel.Tenant) error
	GetByID(id int64) (*tenantmodel.Tenant, error)
	GetByIDForUpdate(id int64) (*tenantmodel.Tenant, error)
	GetAll(offset, limit int) ([]*tenantmodel.Tenant, error)
	GetByRoomID(roomID int64) (*tenantmodel.Tenant, error)
	Update(t *tenantmodel.Tenant) error
	UpdateBalance(id int64, balance decimal.Decimal) error
	Delete(id int64) error
}

type ServiceAPI interface {
	CreateTenant(req *CreateTenantRequest) (*tenantmodel.Tenant, error)
	GetTenant(id int64) (*tenantmodel.Tenant, error)
	ListTenants(offset, limit int) ([]*tenantmodel.Tenant, error)
	UpdateTenant(id int64, req *UpdateTenantRequest) (*tenantmodel.Tenant, error)
	DeleteTenant(id int64) error
}
