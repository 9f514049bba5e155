package tenant_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	apperrors "github.com/Ngechemoris1/payup/internal"
	tenantmodel "github.com/Ngechemoris1/payup/internal/core/datamodel/tenant"
	tenantpkg "github.com/Ngechemoris1/payup/internal/tenant"
)

func TestTenant(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Tenant Module Suite")
}

// Mock tenant repository
type mockTenantRepository struct {
	tenants     map[int64]*tenantmodel.Tenant
	nextID      int64
	createError error
}

func newMockTenantRepository() *mockTenantRepository {
	return &mockTenantRepository{
		tenants: make(map[int64]*tenantmodel.Tenant),
		nextID:  1,
	}
}

func (m *mockTenantRepository) Create(t *tenantmodel.Tenant) error {
	if m.createError != nil {
		return m.createError
	}
	t.ID = m.nextID
	m.nextID++
	m.tenants[t.ID] = t
	return nil
}

func (m *mockTenantRepository) GetByID(id int64) (*tenantmodel.Tenant, error) {
	t, exists := m.tenants[id]
	if !exists {
		return nil, errors.New("tenant not found")
	}
	return t, nil
}

func (m *mockTenantRepository) GetByIDForUpdate(id int64) (*tenantmodel.Tenant, error) {
	return m.GetByID(id)
}

func (m *mockTenantRepository) GetAll(offset, limit int) ([]*tenantmodel.Tenant, error) {
	var out []*tenantmodel.Tenant
	for _, t := range m.tenants {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockTenantRepository) GetByRoomID(roomID int64) (*tenantmodel.Tenant, error) {
	for _, t := range m.tenants {
		if t.RoomID != nil && *t.RoomID == roomID {
			return t, nil
		}
	}
	return nil, errors.New("tenant not found")
}

func (m *mockTenantRepository) Update(t *tenantmodel.Tenant) error {
	if _, exists := m.tenants[t.ID]; !exists {
		return errors.New("tenant not found")
	}
	m.tenants[t.ID] = t
	return nil
}

func (m *mockTenantRepository) UpdateBalance(id int64, balance decimal.Decimal) error {
	t, exists := m.tenants[id]
	if !exists {
		return errors.New("tenant not found")
	}
	t.Balance = balance
	return nil
}

func (m *mockTenantRepository) Delete(id int64) error {
	if _, exists := m.tenants[id]; !exists {
		return errors.New("tenant not found")
	}
	delete(m.tenants, id)
	return nil
}

var _ = Describe("TenantService", func() {
	var (
		service *tenantpkg.Service
		repo    *mockTenantRepository
	)

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newMockTenantRepository()
		service = tenantpkg.NewService(repo, lg)
	})

	Describe("CreateTenant", func() {
		Context("with a valid request", func() {
			It("creates the tenant with a zero balance and move-in date", func() {
				created, err := service.CreateTenant(&tenantpkg.CreateTenantRequest{
					Name:  "Wanjiku Kamau",
					Email: "wanjiku@example.com",
					Phone: "254712345678",
				})

				Expect(err).ToNot(HaveOccurred())
				Expect(created.ID).To(BeNumerically(">", 0))
				Expect(created.Balance.IsZero()).To(BeTrue())
				Expect(created.MovedInAt).ToNot(BeNil())
			})
		})

		Context("with a missing name", func() {
			It("rejects the request", func() {
				_, err := service.CreateTenant(&tenantpkg.CreateTenantRequest{
					Phone: "254712345678",
				})

				Expect(err).To(HaveOccurred())
				appErr, ok := apperrors.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(apperrors.ErrorTypeValidation))
			})
		})

		Context("with an invalid phone number", func() {
			It("rejects the request", func() {
				_, err := service.CreateTenant(&tenantpkg.CreateTenantRequest{
					Name:  "Wanjiku Kamau",
					Phone: "0712345678",
				})

				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("GetTenant", func() {
		Context("when the tenant does not exist", func() {
			It("maps the repository miss to the domain not-found error", func() {
				_, err := service.GetTenant(42)

				Expect(err).To(Equal(apperrors.ErrTenantNotFound))
			})
		})
	})

	Describe("UpdateTenant", func() {
		var existing *tenantmodel.Tenant

		BeforeEach(func() {
			var err error
			existing, err = service.CreateTenant(&tenantpkg.CreateTenantRequest{
				Name:  "Brian Otieno",
				Phone: "254701234567",
			})
			Expect(err).ToNot(HaveOccurred())
		})

		It("applies only the provided fields", func() {
			newPhone := "254711111111"

			updated, err := service.UpdateTenant(existing.ID, &tenantpkg.UpdateTenantRequest{
				Phone: &newPhone,
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Phone).To(Equal("254711111111"))
			Expect(updated.Name).To(Equal("Brian Otieno"))
		})

		It("returns not found for an unknown tenant", func() {
			name := "Nobody"

			_, err := service.UpdateTenant(999, &tenantpkg.UpdateTenantRequest{Name: &name})

			Expect(err).To(Equal(apperrors.ErrTenantNotFound))
		})
	})

	Describe("DeleteTenant", func() {
		It("removes an existing tenant", func() {
			created, err := service.CreateTenant(&tenantpkg.CreateTenantRequest{
				Name:  "Brian Otieno",
				Phone: "254701234567",
			})
			Expect(err).ToNot(HaveOccurred())

			Expect(service.DeleteTenant(created.ID)).To(Succeed())

			_, err = service.GetTenant(created.ID)
			Expect(err).To(Equal(apperrors.ErrTenantNotFound))
		})

		It("returns not found for an unknown tenant", func() {
			Expect(service.DeleteTenant(999)).To(Equal(apperrors.ErrTenantNotFound))
		})
	})
})
