package tenant

import (
	"regexp"
	"time"

	tenantmodel "github.com/Ngechemoris1/payup/internal/core/datamodel/tenant"

	errors "github.com/Ngechemoris1/payup/internal"
	"github.com/Ngechemoris1/payup/internal/core/common/validation"
)

var phonePattern = regexp.MustCompile(`^254[17]\d{8}$`)

type CreateTenantRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	RoomID *int64 `json:"room_id,omitempty"`
}

func (r *CreateTenantRequest) Validate() error {
	validator := validation.NewValidator()

	validator.Field("name", r.Name).Required().MaxLength(120)
	validator.Field("phone", r.Phone).Required().
		Matches(phonePattern, "a valid Safaricom number (2547XXXXXXXX)", errors.ErrCodeInvalidPhone)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type UpdateTenantRequest struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Phone  *string `json:"phone,omitempty"`
	RoomID *int64  `json:"room_id,omitempty"`
}

func (r *UpdateTenantRequest) Validate() error {
	validator := validation.NewValidator()

	if r.Phone != nil {
		validator.Field("phone", *r.Phone).
			Matches(phonePattern, "a valid Safaricom number (2547XXXXXXXX)", errors.ErrCodeInvalidPhone)
	}
	if r.Name != nil {
		validator.Field("name", *r.Name).Required().MaxLength(120)
	}

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type TenantView struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone"`
	RoomID    *int64     `json:"room_id,omitempty"`
	Balance   string     `json:"balance"`
	MovedInAt *time.Time `json:"moved_in_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func ToView(t *tenantmodel.Tenant) *TenantView {
	return &TenantView{
		ID:        t.ID,
		Name:      t.Name,
		Email:     t.Email,
		Phone:     t.Phone,
		RoomID:    t.RoomID,
		Balance:   t.Balance.StringFixed(2),
		MovedInAt: t.MovedInAt,
		CreatedAt: t.CreatedAt,
	}
}

func ToViews(tenants []*tenantmodel.Tenant) []*TenantView {
	views := make([]*TenantView, len(tenants))
	for i, t := range tenants {
		views[i] = ToView(t)
	}
	return views
}
