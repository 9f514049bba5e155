package payment_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/Ngechemoris1/payup/internal"
	paymentmodel "github.com/Ngechemoris1/payup/internal/core/datamodel/payment"
	"github.com/Ngechemoris1/payup/internal/mpesa"
	paymentpkg "github.com/Ngechemoris1/payup/internal/payment"
	"github.com/Ngechemoris1/payup/internal/transport"
)

// Mock payment service for webhook handler tests
type mockPaymentService struct {
	reconcileError error
	envelopes      []*mpesa.CallbackEnvelope
}

func (m *mockPaymentService) InitiatePayment(ctx context.Context, req *paymentpkg.InitiatePaymentRequest) (*paymentpkg.InitiatePaymentResponse, error) {
	return nil, nil
}

func (m *mockPaymentService) ReconcileCallback(ctx context.Context, envelope *mpesa.CallbackEnvelope) error {
	m.envelopes = append(m.envelopes, envelope)
	return m.reconcileError
}

func (m *mockPaymentService) GetPaymentsByTenant(tenantID int64) ([]*paymentmodel.Payment, error) {
	return nil, nil
}

var _ = Describe("WebhookHandler", func() {
	var (
		handler *paymentpkg.WebhookHandler
		service *mockPaymentService
	)

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = &mockPaymentService{}
		handler = paymentpkg.NewWebhookHandler(transport.NewBaseHandler(lg), service, lg)
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/mpesa/callback", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.HandleSTKCallback(rec, req)
		return rec
	}

	validBody := func() string {
		envelope := successCallback("ws_CO_0001", "QWE123XYZ")
		var buf bytes.Buffer
		Expect(json.NewEncoder(&buf).Encode(envelope)).To(Succeed())
		return buf.String()
	}

	decodeAck := func(rec *httptest.ResponseRecorder) map[string]interface{} {
		var ack map[string]interface{}
		Expect(json.NewDecoder(rec.Body).Decode(&ack)).To(Succeed())
		return ack
	}

	Context("with a well-formed callback", func() {
		It("acknowledges with ResultCode 0", func() {
			rec := post(validBody())

			Expect(rec.Code).To(Equal(http.StatusOK))
			ack := decodeAck(rec)
			Expect(ack["ResultCode"]).To(Equal(float64(0)))
			Expect(ack["ResultDesc"]).To(Equal("Accepted"))
			Expect(service.envelopes).To(HaveLen(1))
			Expect(service.envelopes[0].Body.StkCallback.CheckoutRequestID).To(Equal("ws_CO_0001"))
		})
	})

	Context("with an unparseable body", func() {
		It("rejects with 400 without reaching the service", func() {
			rec := post("not json at all {")

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			ack := decodeAck(rec)
			Expect(ack["ResultCode"]).To(Equal(float64(1)))
			Expect(service.envelopes).To(BeEmpty())
		})
	})

	Context("when the service rejects the payload", func() {
		It("maps validation errors to 400", func() {
			service.reconcileError = apperrors.NewValidationError(
				"callback missing stkCallback body", apperrors.ErrCodeMalformedCallback)

			rec := post(validBody())

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeAck(rec)["ResultCode"]).To(Equal(float64(1)))
		})
	})

	Context("when the transaction is unknown", func() {
		It("responds 404 so the provider may retry", func() {
			service.reconcileError = apperrors.ErrPaymentNotFound

			rec := post(validBody())

			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(decodeAck(rec)["ResultCode"]).To(Equal(float64(1)))
		})
	})

	Context("when reconciliation fails internally", func() {
		It("responds 500", func() {
			service.reconcileError = apperrors.NewInternalError("db down", nil)

			rec := post(validBody())

			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(decodeAck(rec)["ResultCode"]).To(Equal(float64(1)))
		})
	})
})
