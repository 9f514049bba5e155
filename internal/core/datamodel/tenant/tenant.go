package tenant

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tenant is a paying party occupying a room. Balance is the amount the
// tenant still owes; the payment ledger is the only writer of Balance.
type Tenant struct {
	ID        int64           `gorm:"primaryKey"`
	Name      string          `gorm:"column:name;not null"`
	Email     string          `gorm:"column:email"`
	Phone     string          `gorm:"column:phone;not null"`
	RoomID    *int64          `gorm:"column:room_id"`
	Balance   decimal.Decimal `gorm:"column:balance;type:numeric(14,2);not null;default:0"`
	MovedInAt *time.Time      `gorm:"column:moved_in_at"`
	CreatedAt time.Time       `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time       `gorm:"column:updated_at;default:now()"`
}

func (Tenant) TableName() string {
	return "tenants"
}
