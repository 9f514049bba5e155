package postgres

import (
	"time"

	"gorm.io/gorm"

	billpkg "github.com/Ngechemoris1/payup/internal/bill"
	billmodel "github.com/Ngechemoris1/payup/internal/core/datamodel/bill"
)

type BillRepository struct {
	db *gorm.DB
}

func NewBillRepository(db *gorm.DB) billpkg.RepositoryAPI {
	return &BillRepository{db: db}
}

func (r *BillRepository) Create(b *billmodel.Bill) error {
	return r.db.Create(b).Error
}

func (r *BillRepository) GetByID(id int64) (*billmodel.Bill, error) {
	var b billmodel.Bill
	if err := r.db.First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BillRepository) GetByTenantID(tenantID int64) ([]*billmodel.Bill, error) {
	var bills []*billmodel.Bill
	err := r.db.Where("tenant_id = ?", tenantID).Order("due_date DESC").Find(&bills).Error
	return bills, err
}

func (r *BillRepository) GetOpenPastDue() ([]*billmodel.Bill, error) {
	var bills []*billmodel.Bill
	err := r.db.Where("status = ? AND due_date < ?", billmodel.StatusOpen, time.Now()).
		Find(&bills).Error
	return bills, err
}

func (r *BillRepository) UpdateStatus(id int64, status string) error {
	return r.db.Model(&billmodel.Bill{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}).Error
}

func (r *BillRepository) Delete(id int64) error {
	return r.db.Delete(&billmodel.Bill{}, id).Error
}
