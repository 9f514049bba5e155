package postgres

import (
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	paymentmodel "github.com/Ngechemoris1/payup/internal/core/datamodel/payment"
	paymentpkg "github.com/Ngechemoris1/payup/internal/payment"
)

func TestPaymentRepository(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Payment Repository Suite")
}

// PaymentSQLite mirrors the payments table without the postgres-only
// now() column defaults, for SQLite compatibility in tests.
type PaymentSQLite struct {
	ID                 int64           `gorm:"primaryKey"`
	TenantID           int64           `gorm:"column:tenant_id;not null"`
	BillID             *int64          `gorm:"column:bill_id"`
	Amount             decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	Method             string          `gorm:"column:method;not null;default:MPESA"`
	TransactionID      string          `gorm:"column:transaction_id;uniqueIndex;not null"`
	IdempotencyKey     string          `gorm:"column:idempotency_key;uniqueIndex;not null"`
	Status             string          `gorm:"column:status;not null;default:PENDING"`
	ResultCode         *int            `gorm:"column:result_code"`
	ResultDescription  *string         `gorm:"column:result_description"`
	MpesaReceiptNumber *string         `gorm:"column:mpesa_receipt_number"`
	PaymentDate        time.Time       `gorm:"column:payment_date"`
	PaidAt             *time.Time      `gorm:"column:paid_at"`
	CreatedAt          time.Time       `gorm:"column:created_at"`
	UpdatedAt          time.Time       `gorm:"column:updated_at"`
}

func (PaymentSQLite) TableName() string {
	return "payments"
}

var _ = ginkgo.Describe("PaymentRepository", func() {
	var (
		db   *gorm.DB
		repo paymentpkg.RepositoryAPI
	)

	newPayment := func(transactionID, idempotencyKey string, tenantID int64, paymentDate time.Time) *paymentmodel.Payment {
		return &paymentmodel.Payment{
			TenantID:       tenantID,
			Amount:         decimal.NewFromInt(1500),
			Method:         paymentmodel.MethodMpesa,
			TransactionID:  transactionID,
			IdempotencyKey: idempotencyKey,
			Status:         paymentmodel.StatusPending,
			PaymentDate:    paymentDate,
		}
	}

	ginkgo.BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			NowFunc: func() time.Time {
				return time.Now().UTC()
			},
		})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		err = db.AutoMigrate(&PaymentSQLite{})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		repo = NewPaymentRepository(db)
	})

	ginkgo.Describe("Create", func() {
		ginkgo.Context("when creating a payment successfully", func() {
			ginkgo.It("should insert the payment and set ID", func() {
				p := newPayment("ws_CO_0001", "idem-1", 1, time.Now())

				err := repo.Create(p)

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(p.ID).To(gomega.BeNumerically(">", 0))
			})
		})

		ginkgo.Context("when creating a payment with a duplicate transaction ID", func() {
			ginkgo.It("should return an error", func() {
				first := newPayment("ws_CO_0001", "idem-1", 1, time.Now())
				second := newPayment("ws_CO_0001", "idem-2", 2, time.Now())

				err1 := repo.Create(first)
				err2 := repo.Create(second)

				gomega.Expect(err1).ToNot(gomega.HaveOccurred())
				gomega.Expect(err2).To(gomega.HaveOccurred())
			})
		})
	})

	ginkgo.Describe("GetByTransactionID", func() {
		ginkgo.BeforeEach(func() {
			p := newPayment("ws_CO_0001", "idem-1", 1, time.Now())
			gomega.Expect(repo.Create(p)).To(gomega.Succeed())
		})

		ginkgo.Context("when the payment exists", func() {
			ginkgo.It("should return the payment", func() {
				result, err := repo.GetByTransactionID("ws_CO_0001")

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(result).ToNot(gomega.BeNil())
				gomega.Expect(result.TenantID).To(gomega.Equal(int64(1)))
				gomega.Expect(result.Status).To(gomega.Equal(paymentmodel.StatusPending))
				gomega.Expect(result.Amount.Equal(decimal.NewFromInt(1500))).To(gomega.BeTrue())
			})
		})

		ginkgo.Context("when the payment does not exist", func() {
			ginkgo.It("should return an error", func() {
				result, err := repo.GetByTransactionID("ws_CO_unknown")

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(result).To(gomega.BeNil())
			})
		})
	})

	ginkgo.Describe("GetByTenantID", func() {
		ginkgo.BeforeEach(func() {
			older := newPayment("ws_CO_0001", "idem-1", 1, time.Now().Add(-2*time.Hour))
			newer := newPayment("ws_CO_0002", "idem-2", 1, time.Now().Add(-1*time.Hour))
			other := newPayment("ws_CO_0003", "idem-3", 2, time.Now())

			for _, p := range []*paymentmodel.Payment{older, newer, other} {
				gomega.Expect(repo.Create(p)).To(gomega.Succeed())
			}
		})

		ginkgo.Context("when payments exist for the tenant", func() {
			ginkgo.It("should return them ordered by payment date, newest first", func() {
				results, err := repo.GetByTenantID(1)

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(results).To(gomega.HaveLen(2))
				gomega.Expect(results[0].TransactionID).To(gomega.Equal("ws_CO_0002"))
				gomega.Expect(results[1].TransactionID).To(gomega.Equal("ws_CO_0001"))
			})
		})

		ginkgo.Context("when the tenant has no payments", func() {
			ginkgo.It("should return an empty slice", func() {
				results, err := repo.GetByTenantID(999)

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(results).To(gomega.BeEmpty())
			})
		})
	})

	ginkgo.Describe("MarkPaid", func() {
		var testPayment *paymentmodel.Payment

		ginkgo.BeforeEach(func() {
			testPayment = newPayment("ws_CO_0001", "idem-1", 1, time.Now())
			gomega.Expect(repo.Create(testPayment)).To(gomega.Succeed())
		})

		ginkgo.It("should record the receipt, result and paid timestamp", func() {
			paidAt := time.Now().UTC()

			err := repo.MarkPaid(testPayment.ID, "QWE123XYZ", 0, "The service request is processed successfully.", paidAt)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			updated, err := repo.GetByTransactionID("ws_CO_0001")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(updated.Status).To(gomega.Equal(paymentmodel.StatusPaid))
			gomega.Expect(*updated.MpesaReceiptNumber).To(gomega.Equal("QWE123XYZ"))
			gomega.Expect(*updated.ResultCode).To(gomega.Equal(0))
			gomega.Expect(updated.PaidAt).ToNot(gomega.BeNil())
		})

		ginkgo.Context("when the payment does not exist", func() {
			ginkgo.It("should succeed without affecting any rows", func() {
				err := repo.MarkPaid(999, "QWE123XYZ", 0, "ok", time.Now())

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
			})
		})
	})

	ginkgo.Describe("MarkFailed", func() {
		var testPayment *paymentmodel.Payment

		ginkgo.BeforeEach(func() {
			testPayment = newPayment("ws_CO_0001", "idem-1", 1, time.Now())
			gomega.Expect(repo.Create(testPayment)).To(gomega.Succeed())
		})

		ginkgo.It("should record the failure result", func() {
			err := repo.MarkFailed(testPayment.ID, 1032, "Request cancelled by user")

			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			updated, err := repo.GetByTransactionID("ws_CO_0001")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(updated.Status).To(gomega.Equal(paymentmodel.StatusFailed))
			gomega.Expect(*updated.ResultCode).To(gomega.Equal(1032))
			gomega.Expect(*updated.ResultDescription).To(gomega.Equal("Request cancelled by user"))
			gomega.Expect(updated.PaidAt).To(gomega.BeNil())
		})
	})
})
