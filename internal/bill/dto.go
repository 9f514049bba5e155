package bill

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	errors "github.com/Ngechemoris1/payup/internal"
	billmodel "github.com/Ngechemoris1/payup/internal/core/datamodel/bill"
	"github.com/Ngechemoris1/payup/internal/core/common/validation"
)

var billTypes = map[string]bool{
	billmodel.TypeRent:        true,
	billmodel.TypeWater:       true,
	billmodel.TypeElectricity: true,
	billmodel.TypeGarbage:     true,
}

type CreateBillRequest struct {
	TenantID int64           `json:"tenant_id"`
	BillType string          `json:"bill_type"`
	Amount   decimal.Decimal `json:"amount"`
	DueDate  time.Time       `json:"due_date"`
}

func (r *CreateBillRequest) Validate() error {
	validator := validation.NewValidator()

	validator.Field("tenant_id", r.TenantID).MinInt(1, errors.ErrCodeValidationFailed)
	validator.Field("amount", r.Amount).PositiveDecimal(errors.ErrCodeInvalidAmount)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}

	if !billTypes[r.BillType] {
		return errors.NewValidationError(
			fmt.Sprintf("unknown bill type %q", r.BillType), errors.ErrCodeValidationFailed)
	}
	return nil
}

type BillView struct {
	ID       int64     `json:"id"`
	TenantID int64     `json:"tenant_id"`
	BillType string    `json:"bill_type"`
	Amount   string    `json:"amount"`
	Status   string    `json:"status"`
	DueDate  time.Time `json:"due_date"`
}

func ToView(b *billmodel.Bill) *BillView {
	return &BillView{
		ID:       b.ID,
		TenantID: b.TenantID,
		BillType: b.BillType,
		Amount:   b.Amount.StringFixed(2),
		Status:   b.Status,
		DueDate:  b.DueDate,
	}
}

func ToViews(bills []*billmodel.Bill) []*BillView {
	views := make([]*BillView, len(bills))
	for i, b := range bills {
		views[i] = ToView(b)
	}
	return views
}
