package mpesa

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ResultCodeSuccess is the Daraja sentinel for a completed STK push.
const ResultCodeSuccess = 0

// ReceiptNotAvailable is stored when a successful callback carries no
// MpesaReceiptNumber item. The transition is the primary signal; the
// receipt is best-effort.
const ReceiptNotAvailable = "N/A"

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// STKPushInput is what callers provide to initiate a push payment.
type STKPushInput struct {
	Amount           decimal.Decimal
	PhoneNumber      string
	AccountReference string
	Description      string
}

// stkPushRequest is the Daraja wire format. Amount is truncated to whole
// shillings as the API rejects fractional amounts.
type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// STKPushResult is the acknowledged submission. CheckoutRequestID is the
// correlation key the asynchronous callback will echo back.
type STKPushResult struct {
	MerchantRequestID string
	CheckoutRequestID string
	CustomerMessage   string
}

// CallbackEnvelope is the provider's result notification as delivered to the
// webhook: Body.stkCallback{...}.
type CallbackEnvelope struct {
	Body CallbackBody `json:"Body"`
}

type CallbackBody struct {
	StkCallback *STKCallback `json:"stkCallback"`
}

type STKCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        int               `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

type CallbackMetadata struct {
	Item []MetadataItem `json:"Item"`
}

type MetadataItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value,omitempty"`
}

// Validate rejects envelopes that lack the expected nested structure before
// any state is touched.
func (e *CallbackEnvelope) Validate() error {
	if e.Body.StkCallback == nil {
		return fmt.Errorf("callback missing Body.stkCallback")
	}
	if e.Body.StkCallback.CheckoutRequestID == "" {
		return fmt.Errorf("callback missing CheckoutRequestID")
	}
	return nil
}

func (c *STKCallback) Succeeded() bool {
	return c.ResultCode == ResultCodeSuccess
}

// ReceiptNumber extracts the MpesaReceiptNumber metadata item, falling back
// to ReceiptNotAvailable when the item is missing or not a string.
func (c *STKCallback) ReceiptNumber() string {
	if c.CallbackMetadata == nil {
		return ReceiptNotAvailable
	}
	for _, item := range c.CallbackMetadata.Item {
		if item.Name != "MpesaReceiptNumber" {
			continue
		}
		if s, ok := item.Value.(string); ok && s != "" {
			return s
		}
		return ReceiptNotAvailable
	}
	return ReceiptNotAvailable
}
