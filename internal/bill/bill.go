package bill

import (
	billmodel "github.com/Ngechemoris1/payup/internal/core/datamodel/bill"
)

type RepositoryAPI interface {
	Create(b *billmodel.Bill) error
	GetByID(id int64) (*billmodel.Bill, error)
	GetByTenantID(tenantID int64) ([]*billmodel.Bill, error)
	GetOpenPastDue() ([]*billmodel.Bill, error)
	UpdateStatus(id int64, status string) error
	Delete(id int64) error
}

type ServiceAPI interface {
	CreateBill(req *CreateBillRequest) (*billmodel.Bill, error)
	GetBill(id int64) (*billmodel.Bill, error)
	ListTenantBills(tenantID int64) ([]*billmodel.Bill, error)
	MarkBillPaid(id int64) error
	MarkOverdueBills() (int, error)
	DeleteBill(id int64) error
}
