package mpesa

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	apperrors "github.com/Ngechemoris1/payup/internal"
)

type staticTokenSource struct {
	token string
	err   error
}

func (s *staticTokenSource) GetCredential(ctx context.Context) (string, error) {
	return s.token, s.err
}

var _ = ginkgo.Describe("Client", func() {
	var (
		server   *httptest.Server
		client   *Client
		received *stkPushRequest
		ctx      context.Context
	)

	newClient := func(handler http.HandlerFunc) *Client {
		server = httptest.NewServer(handler)
		c := NewClient(Config{
			BaseURL:     server.URL,
			ShortCode:   "174379",
			Passkey:     "test-passkey",
			CallbackURL: "https://payup.example.com/api/v1/payments/mpesa/callback",
			Timeout:     5 * time.Second,
		}, &staticTokenSource{token: "test-token"}, testLogger())
		return c
	}

	acceptingHandler := func(w http.ResponseWriter, r *http.Request) {
		var req stkPushRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			received = &req
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"MerchantRequestID": "29115-34620561-1",
			"CheckoutRequestID": "ws_CO_191220191020363925",
			"ResponseCode": "0",
			"ResponseDescription": "Success. Request accepted for processing",
			"CustomerMessage": "Success. Request accepted for processing"
		}`))
	}

	ginkgo.BeforeEach(func() {
		received = nil
		ctx = context.Background()
	})

	ginkgo.AfterEach(func() {
		if server != nil {
			server.Close()
			server = nil
		}
	})

	ginkgo.Describe("STKPush", func() {
		ginkgo.Context("when the provider accepts the submission", func() {
			ginkgo.It("should return the CheckoutRequestID", func() {
				client = newClient(acceptingHandler)

				result, err := client.STKPush(ctx, STKPushInput{
					Amount:           decimal.NewFromInt(1500),
					PhoneNumber:      "254712345678",
					AccountReference: "TENANT-1",
					Description:      "Rent payment",
				})

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(result.CheckoutRequestID).To(gomega.Equal("ws_CO_191220191020363925"))
				gomega.Expect(result.MerchantRequestID).To(gomega.Equal("29115-34620561-1"))
			})

			ginkgo.It("should derive the password from shortcode, passkey and timestamp", func() {
				client = newClient(acceptingHandler)

				frozen := time.Date(2026, 8, 28, 14, 30, 45, 0, time.UTC)
				client.now = func() time.Time { return frozen }

				_, err := client.STKPush(ctx, STKPushInput{
					Amount:      decimal.NewFromInt(1500),
					PhoneNumber: "254712345678",
				})

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(received).ToNot(gomega.BeNil())
				gomega.Expect(received.Timestamp).To(gomega.Equal("20260828143045"))

				expected := base64.StdEncoding.EncodeToString([]byte("174379" + "test-passkey" + "20260828143045"))
				gomega.Expect(received.Password).To(gomega.Equal(expected))
			})

			ginkgo.It("should truncate the amount to whole shillings", func() {
				client = newClient(acceptingHandler)

				_, err := client.STKPush(ctx, STKPushInput{
					Amount:      decimal.RequireFromString("1500.75"),
					PhoneNumber: "254712345678",
				})

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(received.Amount).To(gomega.Equal(int64(1500)))
			})

			ginkgo.It("should send the bearer token and callback URL", func() {
				var authHeader string
				client = newClient(func(w http.ResponseWriter, r *http.Request) {
					authHeader = r.Header.Get("Authorization")
					acceptingHandler(w, r)
				})

				_, err := client.STKPush(ctx, STKPushInput{
					Amount:      decimal.NewFromInt(100),
					PhoneNumber: "254712345678",
				})

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(authHeader).To(gomega.Equal("Bearer test-token"))
				gomega.Expect(received.CallBackURL).To(gomega.Equal("https://payup.example.com/api/v1/payments/mpesa/callback"))
			})
		})

		ginkgo.Context("when the token source fails", func() {
			ginkgo.It("should return the credential error without calling the provider", func() {
				called := false
				client = newClient(func(w http.ResponseWriter, r *http.Request) {
					called = true
				})
				client.tokens = &staticTokenSource{
					err: apperrors.NewExternalError("payment provider credential unavailable",
						apperrors.ErrCodeCredentialUnavailable, nil),
				}

				_, err := client.STKPush(ctx, STKPushInput{
					Amount:      decimal.NewFromInt(100),
					PhoneNumber: "254712345678",
				})

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(called).To(gomega.BeFalse())
			})
		})

		ginkgo.Context("when the provider rejects the submission", func() {
			ginkgo.It("should surface an external error", func() {
				client = newClient(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusBadRequest)
				})

				_, err := client.STKPush(ctx, STKPushInput{
					Amount:      decimal.NewFromInt(100),
					PhoneNumber: "254712345678",
				})

				gomega.Expect(err).To(gomega.HaveOccurred())
				appErr, ok := apperrors.IsAppError(err)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(appErr.Code).To(gomega.Equal(apperrors.ErrCodeProviderUnavailable))
			})
		})

		ginkgo.Context("when the acknowledgement is missing the CheckoutRequestID", func() {
			ginkgo.It("should return an error", func() {
				client = newClient(func(w http.ResponseWriter, r *http.Request) {
					w.Write([]byte(`{"ResponseCode": "0"}`))
				})

				_, err := client.STKPush(ctx, STKPushInput{
					Amount:      decimal.NewFromInt(100),
					PhoneNumber: "254712345678",
				})

				gomega.Expect(err).To(gomega.HaveOccurred())
			})
		})
	})
})

var _ = ginkgo.Describe("CallbackEnvelope", func() {
	ginkgo.Describe("Validate", func() {
		ginkgo.It("should reject an envelope without a callback body", func() {
			envelope := &CallbackEnvelope{}

			gomega.Expect(envelope.Validate()).To(gomega.HaveOccurred())
		})

		ginkgo.It("should reject a callback without a CheckoutRequestID", func() {
			envelope := &CallbackEnvelope{
				Body: CallbackBody{StkCallback: &STKCallback{ResultCode: 0}},
			}

			gomega.Expect(envelope.Validate()).To(gomega.HaveOccurred())
		})

		ginkgo.It("should accept a well-formed callback", func() {
			envelope := &CallbackEnvelope{
				Body: CallbackBody{StkCallback: &STKCallback{
					CheckoutRequestID: "ws_CO_0001",
					ResultCode:        0,
				}},
			}

			gomega.Expect(envelope.Validate()).To(gomega.Succeed())
		})
	})

	ginkgo.Describe("ReceiptNumber", func() {
		ginkgo.It("should extract the receipt from the metadata items", func() {
			cb := &STKCallback{
				CheckoutRequestID: "ws_CO_0001",
				CallbackMetadata: &CallbackMetadata{
					Item: []MetadataItem{
						{Name: "Amount", Value: 1500.0},
						{Name: "MpesaReceiptNumber", Value: "NLJ7RT61SV"},
					},
				},
			}

			gomega.Expect(cb.ReceiptNumber()).To(gomega.Equal("NLJ7RT61SV"))
		})

		ginkgo.It("should fall back to the placeholder when metadata is absent", func() {
			cb := &STKCallback{CheckoutRequestID: "ws_CO_0001"}

			gomega.Expect(cb.ReceiptNumber()).To(gomega.Equal(ReceiptNotAvailable))
		})
	})
})
