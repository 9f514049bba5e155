package bill

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusOpen    = "OPEN"
	StatusPaid    = "PAID"
	StatusOverdue = "OVERDUE"

	TypeRent        = "RENT"
	TypeWater       = "WATER"
	TypeElectricity = "ELECTRICITY"
	TypeGarbage     = "GARBAGE"
)

// Bill is a charge issued to a tenant. Payments may reference a bill through
// bill_id; rent payments without a specific bill leave it unset.
type Bill struct {
	ID        int64           `gorm:"primaryKey"`
	TenantID  int64           `gorm:"column:tenant_id;not null"`
	BillType  string          `gorm:"column:bill_type;not null"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	Status    string          `gorm:"column:status;not null;default:OPEN"`
	DueDate   time.Time       `gorm:"column:due_date"`
	CreatedAt time.Time       `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time       `gorm:"column:updated_at;default:now()"`
}

func (Bill) TableName() string {
	return "bills"
}

func (b *Bill) IsOverdue(now time.Time) bool {
	return b.Status == StatusOpen && now.After(b.DueDate)
}
