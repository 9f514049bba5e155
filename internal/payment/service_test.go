package payment_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	apperrors "github.com/Ngechemoris1/payup/internal"
	paymentmodel "github.com/Ngechemoris1/payup/internal/core/datamodel/payment"
	tenantmodel "github.com/Ngechemoris1/payup/internal/core/datamodel/tenant"
	"github.com/Ngechemoris1/payup/internal/core/events"
	"github.com/Ngechemoris1/payup/internal/mpesa"
	paymentpkg "github.com/Ngechemoris1/payup/internal/payment"
)

func TestPayment(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Payment Module Suite")
}

// Mock payment repository
type mockPaymentRepository struct {
	payments    map[string]*paymentmodel.Payment
	nextID      int64
	createError error
}

func newMockPaymentRepository() *mockPaymentRepository {
	return &mockPaymentRepository{
		payments: make(map[string]*paymentmodel.Payment),
		nextID:   1,
	}
}

func (m *mockPaymentRepository) Create(p *paymentmodel.Payment) error {
	if m.createError != nil {
		return m.createError
	}
	p.ID = m.nextID
	m.nextID++
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.payments[p.TransactionID] = p
	return nil
}

func (m *mockPaymentRepository) GetByTransactionID(transactionID string) (*paymentmodel.Payment, error) {
	p, exists := m.payments[transactionID]
	if !exists {
		return nil, errors.New("payment not found")
	}
	return p, nil
}

func (m *mockPaymentRepository) GetByTransactionIDForUpdate(transactionID string) (*paymentmodel.Payment, error) {
	return m.GetByTransactionID(transactionID)
}

func (m *mockPaymentRepository) GetByTenantID(tenantID int64) ([]*paymentmodel.Payment, error) {
	var out []*paymentmodel.Payment
	for _, p := range m.payments {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPaymentRepository) MarkPaid(id int64, receiptNumber string, resultCode int, resultDesc string, paidAt time.Time) error {
	for _, p := range m.payments {
		if p.ID == id {
			p.Status = paymentmodel.StatusPaid
			p.MpesaReceiptNumber = &receiptNumber
			p.ResultCode = &resultCode
			p.ResultDescription = &resultDesc
			p.PaidAt = &paidAt
			return nil
		}
	}
	return errors.New("payment not found")
}

func (m *mockPaymentRepository) MarkFailed(id int64, resultCode int, resultDesc string) error {
	for _, p := range m.payments {
		if p.ID == id {
			p.Status = paymentmodel.StatusFailed
			p.ResultCode = &resultCode
			p.ResultDescription = &resultDesc
			return nil
		}
	}
	return errors.New("payment not found")
}

// Mock tenant store tracking balance writes
type mockTenantStore struct {
	tenants            map[int64]*tenantmodel.Tenant
	balanceWrites      int
	updateBalanceError error
}

func newMockTenantStore() *mockTenantStore {
	return &mockTenantStore{
		tenants: map[int64]*tenantmodel.Tenant{
			1: {
				ID:      1,
				Name:    "Wanjiku Kamau",
				Phone:   "254712345678",
				Email:   "wanjiku@example.com",
				Balance: decimal.NewFromInt(5000),
			},
		},
	}
}

func (m *mockTenantStore) GetByID(id int64) (*tenantmodel.Tenant, error) {
	t, exists := m.tenants[id]
	if !exists {
		return nil, errors.New("tenant not found")
	}
	return t, nil
}

func (m *mockTenantStore) GetByIDForUpdate(id int64) (*tenantmodel.Tenant, error) {
	return m.GetByID(id)
}

func (m *mockTenantStore) UpdateBalance(id int64, balance decimal.Decimal) error {
	if m.updateBalanceError != nil {
		return m.updateBalanceError
	}
	t, exists := m.tenants[id]
	if !exists {
		return errors.New("tenant not found")
	}
	t.Balance = balance
	m.balanceWrites++
	return nil
}

// Mock unit of work passing through the ambient mocks
type mockUnitOfWork struct {
	payments paymentpkg.RepositoryAPI
	tenants  paymentpkg.TenantStore
}

func (m *mockUnitOfWork) Do(fn func(payments paymentpkg.RepositoryAPI, tenants paymentpkg.TenantStore) error) error {
	return fn(m.payments, m.tenants)
}

// Mock push client
type mockPushClient struct {
	pushError error
	pushes    int
	result    *mpesa.STKPushResult
}

func (m *mockPushClient) STKPush(ctx context.Context, input mpesa.STKPushInput) (*mpesa.STKPushResult, error) {
	if m.pushError != nil {
		return nil, m.pushError
	}
	m.pushes++
	if m.result != nil {
		return m.result, nil
	}
	return &mpesa.STKPushResult{
		MerchantRequestID: "mr-1",
		CheckoutRequestID: "ws_CO_0001",
		CustomerMessage:   "Success. Request accepted for processing",
	}, nil
}

func successCallback(transactionID, receipt string) *mpesa.CallbackEnvelope {
	return &mpesa.CallbackEnvelope{
		Body: mpesa.CallbackBody{
			StkCallback: &mpesa.STKCallback{
				MerchantRequestID: "mr-1",
				CheckoutRequestID: transactionID,
				ResultCode:        0,
				ResultDesc:        "The service request is processed successfully.",
				CallbackMetadata: &mpesa.CallbackMetadata{
					Item: []mpesa.MetadataItem{
						{Name: "Amount", Value: 1500.0},
						{Name: "MpesaReceiptNumber", Value: receipt},
						{Name: "PhoneNumber", Value: "254712345678"},
					},
				},
			},
		},
	}
}

func failureCallback(transactionID string, resultCode int, resultDesc string) *mpesa.CallbackEnvelope {
	return &mpesa.CallbackEnvelope{
		Body: mpesa.CallbackBody{
			StkCallback: &mpesa.STKCallback{
				MerchantRequestID: "mr-1",
				CheckoutRequestID: transactionID,
				ResultCode:        resultCode,
				ResultDesc:        resultDesc,
			},
		},
	}
}

var _ = Describe("PaymentService", func() {
	var (
		service    *paymentpkg.PaymentService
		repo       *mockPaymentRepository
		tenants    *mockTenantStore
		pushClient *mockPushClient
		eventBus   *events.EventBus
		logger     *slog.Logger
		ctx        context.Context
	)

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newMockPaymentRepository()
		tenants = newMockTenantStore()
		pushClient = &mockPushClient{}
		eventBus = events.NewEventBus(logger)
		uow := &mockUnitOfWork{payments: repo, tenants: tenants}

		service = paymentpkg.NewPaymentService(
			pushClient, repo, tenants, uow,
			paymentpkg.NewLedgerUpdater(logger),
			eventBus, 1, 150000, logger,
		)
		ctx = context.Background()
	})

	Describe("InitiatePayment", func() {
		Context("with a valid request", func() {
			It("submits the push and records one PENDING payment", func() {
				resp, err := service.InitiatePayment(ctx, &paymentpkg.InitiatePaymentRequest{
					TenantID:    1,
					Amount:      decimal.NewFromInt(1500),
					PhoneNumber: "254712345678",
				})

				Expect(err).ToNot(HaveOccurred())
				Expect(resp.TransactionID).To(Equal("ws_CO_0001"))
				Expect(resp.Status).To(Equal(paymentmodel.StatusPending))
				Expect(pushClient.pushes).To(Equal(1))

				p, err := repo.GetByTransactionID("ws_CO_0001")
				Expect(err).ToNot(HaveOccurred())
				Expect(p.Status).To(Equal(paymentmodel.StatusPending))
				Expect(p.TenantID).To(Equal(int64(1)))
				Expect(p.IdempotencyKey).ToNot(BeEmpty())
			})

			It("accepts the maximum transactable amount", func() {
				_, err := service.InitiatePayment(ctx, &paymentpkg.InitiatePaymentRequest{
					TenantID:    1,
					Amount:      decimal.NewFromInt(150000),
					PhoneNumber: "254712345678",
				})

				Expect(err).ToNot(HaveOccurred())
			})
		})

		Context("with an invalid amount", func() {
			assertRejected := func(amount decimal.Decimal) {
				_, err := service.InitiatePayment(ctx, &paymentpkg.InitiatePaymentRequest{
					TenantID:    1,
					Amount:      amount,
					PhoneNumber: "254712345678",
				})

				Expect(err).To(HaveOccurred())
				appErr, ok := apperrors.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(apperrors.ErrCodeInvalidAmount))
				Expect(pushClient.pushes).To(Equal(0))
			}

			It("rejects zero", func() {
				assertRejected(decimal.Zero)
			})

			It("rejects negative amounts", func() {
				assertRejected(decimal.NewFromInt(-100))
			})

			It("rejects amounts above the transaction cap", func() {
				assertRejected(decimal.RequireFromString("150000.01"))
			})
		})

		Context("with an invalid phone number", func() {
			It("rejects numbers outside the Safaricom format", func() {
				_, err := service.InitiatePayment(ctx, &paymentpkg.InitiatePaymentRequest{
					TenantID:    1,
					Amount:      decimal.NewFromInt(1000),
					PhoneNumber: "0712345678",
				})

				Expect(err).To(HaveOccurred())
				appErr, ok := apperrors.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(apperrors.ErrCodeInvalidPhone))
			})
		})

		Context("when the tenant does not exist", func() {
			It("returns tenant not found without submitting a push", func() {
				_, err := service.InitiatePayment(ctx, &paymentpkg.InitiatePaymentRequest{
					TenantID:    42,
					Amount:      decimal.NewFromInt(1000),
					PhoneNumber: "254712345678",
				})

				Expect(err).To(Equal(apperrors.ErrTenantNotFound))
				Expect(pushClient.pushes).To(Equal(0))
			})
		})

		Context("when the provider rejects the push", func() {
			It("returns the provider error and records nothing", func() {
				pushClient.pushError = apperrors.NewExternalError(
					"provider unavailable", apperrors.ErrCodeProviderUnavailable, errors.New("boom"))

				_, err := service.InitiatePayment(ctx, &paymentpkg.InitiatePaymentRequest{
					TenantID:    1,
					Amount:      decimal.NewFromInt(1000),
					PhoneNumber: "254712345678",
				})

				Expect(err).To(HaveOccurred())
				Expect(repo.payments).To(BeEmpty())
			})
		})
	})

	Describe("ReconcileCallback", func() {
		var initiate = func(amount int64) string {
			resp, err := service.InitiatePayment(ctx, &paymentpkg.InitiatePaymentRequest{
				TenantID:    1,
				Amount:      decimal.NewFromInt(amount),
				PhoneNumber: "254712345678",
			})
			Expect(err).ToNot(HaveOccurred())
			return resp.TransactionID
		}

		Context("when the provider reports success", func() {
			It("marks the payment PAID, stores the receipt and debits the balance", func() {
				txID := initiate(1500)

				err := service.ReconcileCallback(ctx, successCallback(txID, "QWE123XYZ"))
				Expect(err).ToNot(HaveOccurred())

				p, _ := repo.GetByTransactionID(txID)
				Expect(p.Status).To(Equal(paymentmodel.StatusPaid))
				Expect(*p.MpesaReceiptNumber).To(Equal("QWE123XYZ"))
				Expect(p.PaidAt).ToNot(BeNil())

				tenant, _ := tenants.GetByID(1)
				Expect(tenant.Balance.Equal(decimal.NewFromInt(3500))).To(BeTrue())
				Expect(tenants.balanceWrites).To(Equal(1))
			})

			It("stores a placeholder when the receipt is missing", func() {
				txID := initiate(1500)

				envelope := successCallback(txID, "ignored")
				envelope.Body.StkCallback.CallbackMetadata = nil

				err := service.ReconcileCallback(ctx, envelope)
				Expect(err).ToNot(HaveOccurred())

				p, _ := repo.GetByTransactionID(txID)
				Expect(p.Status).To(Equal(paymentmodel.StatusPaid))
				Expect(*p.MpesaReceiptNumber).To(Equal(mpesa.ReceiptNotAvailable))
			})
		})

		Context("when the provider reports failure", func() {
			It("marks the payment FAILED and leaves the balance untouched", func() {
				txID := initiate(1500)

				err := service.ReconcileCallback(ctx, failureCallback(txID, 1032, "Request cancelled by user"))
				Expect(err).ToNot(HaveOccurred())

				p, _ := repo.GetByTransactionID(txID)
				Expect(p.Status).To(Equal(paymentmodel.StatusFailed))
				Expect(*p.ResultCode).To(Equal(1032))

				tenant, _ := tenants.GetByID(1)
				Expect(tenant.Balance.Equal(decimal.NewFromInt(5000))).To(BeTrue())
				Expect(tenants.balanceWrites).To(Equal(0))
			})
		})

		Context("when the same callback is delivered twice", func() {
			It("debits the balance exactly once", func() {
				txID := initiate(1500)

				Expect(service.ReconcileCallback(ctx, successCallback(txID, "QWE123XYZ"))).To(Succeed())
				Expect(service.ReconcileCallback(ctx, successCallback(txID, "QWE123XYZ"))).To(Succeed())

				tenant, _ := tenants.GetByID(1)
				Expect(tenant.Balance.Equal(decimal.NewFromInt(3500))).To(BeTrue())
				Expect(tenants.balanceWrites).To(Equal(1))
			})
		})

		Context("when a conflicting outcome arrives for a settled payment", func() {
			It("preserves the recorded FAILED state", func() {
				txID := initiate(1500)

				Expect(service.ReconcileCallback(ctx, failureCallback(txID, 1032, "Request cancelled by user"))).To(Succeed())
				Expect(service.ReconcileCallback(ctx, successCallback(txID, "LATE999"))).To(Succeed())

				p, _ := repo.GetByTransactionID(txID)
				Expect(p.Status).To(Equal(paymentmodel.StatusFailed))

				tenant, _ := tenants.GetByID(1)
				Expect(tenant.Balance.Equal(decimal.NewFromInt(5000))).To(BeTrue())
			})
		})

		Context("when the callback references an unknown transaction", func() {
			It("returns payment not found", func() {
				err := service.ReconcileCallback(ctx, successCallback("ws_CO_unknown", "QWE123XYZ"))
				Expect(err).To(Equal(apperrors.ErrPaymentNotFound))
			})
		})

		Context("when the callback is malformed", func() {
			It("rejects an envelope without a callback body", func() {
				err := service.ReconcileCallback(ctx, &mpesa.CallbackEnvelope{})

				Expect(err).To(HaveOccurred())
				appErr, ok := apperrors.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(apperrors.ErrCodeMalformedCallback))
			})
		})

		Context("when the ledger write fails after a confirmed payment", func() {
			It("keeps the payment PAID and surfaces no error to the provider", func() {
				txID := initiate(1500)
				tenants.updateBalanceError = errors.New("connection reset")

				err := service.ReconcileCallback(ctx, successCallback(txID, "QWE123XYZ"))
				Expect(err).ToNot(HaveOccurred())

				p, _ := repo.GetByTransactionID(txID)
				Expect(p.Status).To(Equal(paymentmodel.StatusPaid))
			})
		})
	})
})
