package bill

import (
	"log/slog"
	"time"

	errors "github.com/Ngechemoris1/payup/internal"
	billmodel "github.com/Ngechemoris1/payup/internal/core/datamodel/bill"
)

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

func (s *Service) CreateBill(req *CreateBillRequest) (*billmodel.Bill, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	b := &billmodel.Bill{
		TenantID: req.TenantID,
		BillType: req.BillType,
		Amount:   req.Amount,
		Status:   billmodel.StatusOpen,
		DueDate:  req.DueDate,
	}

	if err := s.repo.Create(b); err != nil {
		s.logger.Error("failed to create bill", "error", err, "tenant_id", req.TenantID)
		return nil, errors.NewInternalError("failed to create bill", err)
	}

	s.logger.Info("bill created",
		"bill_id", b.ID,
		"tenant_id", b.TenantID,
		"bill_type", b.BillType,
		"amount", b.Amount.StringFixed(2))
	return b, nil
}

func (s *Service) GetBill(id int64) (*billmodel.Bill, error) {
	b, err := s.repo.GetByID(id)
	if err != nil {
		return nil, errors.ErrBillNotFound
	}
	return b, nil
}

func (s *Service) ListTenantBills(tenantID int64) ([]*billmodel.Bill, error) {
	return s.repo.GetByTenantID(tenantID)
}

func (s *Service) MarkBillPaid(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return errors.ErrBillNotFound
	}
	if err := s.repo.UpdateStatus(id, billmodel.StatusPaid); err != nil {
		s.logger.Error("failed to mark bill paid", "error", err, "bill_id", id)
		return errors.NewInternalError("failed to mark bill paid", err)
	}
	return nil
}

// MarkOverdueBills flips every OPEN bill past its due date to OVERDUE and
// returns how many were updated. Run periodically by the worker command.
func (s *Service) MarkOverdueBills() (int, error) {
	bills, err := s.repo.GetOpenPastDue()
	if err != nil {
		return 0, errors.NewInternalError("failed to load past-due bills", err)
	}

	updated := 0
	for _, b := range bills {
		if !b.IsOverdue(s.now()) {
			continue
		}
		if err := s.repo.UpdateStatus(b.ID, billmodel.StatusOverdue); err != nil {
			s.logger.Error("failed to mark bill overdue", "error", err, "bill_id", b.ID)
			continue
		}
		updated++
	}

	if updated > 0 {
		s.logger.Info("marked bills overdue", "count", updated)
	}
	return updated, nil
}

func (s *Service) DeleteBill(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return errors.ErrBillNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		return errors.NewInternalError("failed to delete bill", err)
	}
	return nil
}
