package tenant

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	errors "github.com/Ngechemoris1/payup/internal"
	tenantmodel "github.com/Ngechemoris1/payup/internal/core/datamodel/tenant"
)

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) CreateTenant(req *CreateTenantRequest) (*tenantmodel.Tenant, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	t := &tenantmodel.Tenant{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		RoomID:    req.RoomID,
		Balance:   decimal.Zero,
		MovedInAt: &now,
	}

	if err := s.repo.Create(t); err != nil {
		s.logger.Error("failed to create tenant", "error", err, "name", req.Name)
		return nil, errors.NewInternalError("failed to create tenant", err)
	}

	s.logger.Info("tenant created", "tenant_id", t.ID, "name", t.Name)
	return t, nil
}

func (s *Service) GetTenant(id int64) (*tenantmodel.Tenant, error) {
	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, errors.ErrTenantNotFound
	}
	return t, nil
}

func (s *Service) ListTenants(offset, limit int) ([]*tenantmodel.Tenant, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.GetAll(offset, limit)
}

func (s *Service) UpdateTenant(id int64, req *UpdateTenantRequest) (*tenantmodel.Tenant, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, errors.ErrTenantNotFound
	}

	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Email != nil {
		t.Email = *req.Email
	}
	if req.Phone != nil {
		t.Phone = *req.Phone
	}
	if req.RoomID != nil {
		t.RoomID = req.RoomID
	}

	if err := s.repo.Update(t); err != nil {
		s.logger.Error("failed to update tenant", "error", err, "tenant_id", id)
		return nil, errors.NewInternalError("failed to update tenant", err)
	}

	return t, nil
}

func (s *Service) DeleteTenant(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return errors.ErrTenantNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete tenant", "error", err, "tenant_id", id)
		return errors.NewInternalError("failed to delete tenant", err)
	}

	s.logger.Info("tenant deleted", "tenant_id", id)
	return nil
}
