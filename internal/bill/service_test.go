package bill_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	apperrors "github.com/Ngechemoris1/payup/internal"
	billpkg "github.com/Ngechemoris1/payup/internal/bill"
	billmodel "github.com/Ngechemoris1/payup/internal/core/datamodel/bill"
)

func TestBill(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Bill Module Suite")
}

// Mock bill repository
type mockBillRepository struct {
	bills             map[int64]*billmodel.Bill
	nextID            int64
	updateStatusError error
}

func newMockBillRepository() *mockBillRepository {
	return &mockBillRepository{
		bills:  make(map[int64]*billmodel.Bill),
		nextID: 1,
	}
}

func (m *mockBillRepository) Create(b *billmodel.Bill) error {
	b.ID = m.nextID
	m.nextID++
	m.bills[b.ID] = b
	return nil
}

func (m *mockBillRepository) GetByID(id int64) (*billmodel.Bill, error) {
	b, exists := m.bills[id]
	if !exists {
		return nil, errors.New("bill not found")
	}
	return b, nil
}

func (m *mockBillRepository) GetByTenantID(tenantID int64) ([]*billmodel.Bill, error) {
	var out []*billmodel.Bill
	for _, b := range m.bills {
		if b.TenantID == tenantID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBillRepository) GetOpenPastDue() ([]*billmodel.Bill, error) {
	var out []*billmodel.Bill
	for _, b := range m.bills {
		if b.Status == billmodel.StatusOpen && time.Now().After(b.DueDate) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBillRepository) UpdateStatus(id int64, status string) error {
	if m.updateStatusError != nil {
		return m.updateStatusError
	}
	b, exists := m.bills[id]
	if !exists {
		return errors.New("bill not found")
	}
	b.Status = status
	return nil
}

func (m *mockBillRepository) Delete(id int64) error {
	if _, exists := m.bills[id]; !exists {
		return errors.New("bill not found")
	}
	delete(m.bills, id)
	return nil
}

var _ = Describe("BillService", func() {
	var (
		service *billpkg.Service
		repo    *mockBillRepository
	)

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newMockBillRepository()
		service = billpkg.NewService(repo, lg)
	})

	Describe("CreateBill", func() {
		Context("with a valid request", func() {
			It("creates an OPEN bill", func() {
				created, err := service.CreateBill(&billpkg.CreateBillRequest{
					TenantID: 1,
					BillType: billmodel.TypeWater,
					Amount:   decimal.NewFromInt(800),
					DueDate:  time.Now().Add(7 * 24 * time.Hour),
				})

				Expect(err).ToNot(HaveOccurred())
				Expect(created.ID).To(BeNumerically(">", 0))
				Expect(created.Status).To(Equal(billmodel.StatusOpen))
			})
		})

		Context("with an unknown bill type", func() {
			It("rejects the request", func() {
				_, err := service.CreateBill(&billpkg.CreateBillRequest{
					TenantID: 1,
					BillType: "PARKING",
					Amount:   decimal.NewFromInt(500),
					DueDate:  time.Now().Add(24 * time.Hour),
				})

				Expect(err).To(HaveOccurred())
				appErr, ok := apperrors.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(apperrors.ErrorTypeValidation))
			})
		})

		Context("with a non-positive amount", func() {
			It("rejects the request", func() {
				_, err := service.CreateBill(&billpkg.CreateBillRequest{
					TenantID: 1,
					BillType: billmodel.TypeRent,
					Amount:   decimal.Zero,
					DueDate:  time.Now().Add(24 * time.Hour),
				})

				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("MarkBillPaid", func() {
		It("transitions an existing bill to PAID", func() {
			created, err := service.CreateBill(&billpkg.CreateBillRequest{
				TenantID: 1,
				BillType: billmodel.TypeRent,
				Amount:   decimal.NewFromInt(15000),
				DueDate:  time.Now().Add(24 * time.Hour),
			})
			Expect(err).ToNot(HaveOccurred())

			Expect(service.MarkBillPaid(created.ID)).To(Succeed())

			updated, err := service.GetBill(created.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Status).To(Equal(billmodel.StatusPaid))
		})

		It("returns not found for an unknown bill", func() {
			Expect(service.MarkBillPaid(999)).To(Equal(apperrors.ErrBillNotFound))
		})
	})

	Describe("MarkOverdueBills", func() {
		BeforeEach(func() {
			pastDue := &billmodel.Bill{
				TenantID: 1,
				BillType: billmodel.TypeRent,
				Amount:   decimal.NewFromInt(15000),
				Status:   billmodel.StatusOpen,
				DueDate:  time.Now().Add(-48 * time.Hour),
			}
			current := &billmodel.Bill{
				TenantID: 1,
				BillType: billmodel.TypeWater,
				Amount:   decimal.NewFromInt(800),
				Status:   billmodel.StatusOpen,
				DueDate:  time.Now().Add(48 * time.Hour),
			}
			alreadyPaid := &billmodel.Bill{
				TenantID: 2,
				BillType: billmodel.TypeRent,
				Amount:   decimal.NewFromInt(12000),
				Status:   billmodel.StatusPaid,
				DueDate:  time.Now().Add(-48 * time.Hour),
			}

			for _, b := range []*billmodel.Bill{pastDue, current, alreadyPaid} {
				Expect(repo.Create(b)).To(Succeed())
			}
		})

		It("flips only open past-due bills to OVERDUE", func() {
			count, err := service.MarkOverdueBills()

			Expect(err).ToNot(HaveOccurred())
			Expect(count).To(Equal(1))

			overdue, err := service.GetBill(1)
			Expect(err).ToNot(HaveOccurred())
			Expect(overdue.Status).To(Equal(billmodel.StatusOverdue))

			untouched, err := service.GetBill(2)
			Expect(err).ToNot(HaveOccurred())
			Expect(untouched.Status).To(Equal(billmodel.StatusOpen))
		})

		It("counts nothing when the sweep finds no past-due bills", func() {
			_, err := service.MarkOverdueBills()
			Expect(err).ToNot(HaveOccurred())

			count, err := service.MarkOverdueBills()
			Expect(err).ToNot(HaveOccurred())
			Expect(count).To(Equal(0))
		})
	})
})
