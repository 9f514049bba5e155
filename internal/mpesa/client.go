package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	errors "github.com/Ngechemoris1/payup/internal"
)

const (
	transactionTypePayBill = "CustomerPayBillOnline"
	timestampLayout        = "20060102150405"
)

// Config carries the merchant identity and endpoints for the Daraja API.
type Config struct {
	BaseURL     string
	ShortCode   string
	Passkey     string
	CallbackURL string
	Timeout     time.Duration
}

// Client submits STK push requests. A single submission attempt is made per
// call; retrying initiation is a caller decision, not a transport one.
type Client struct {
	cfg        Config
	tokens     TokenSource
	httpClient *http.Client
	logger     *slog.Logger

	now func() time.Time
}

func NewClient(cfg Config, tokens TokenSource, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		cfg:        cfg,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		now:        time.Now,
	}
}

// STKPush submits a push-payment prompt to the subscriber's handset and
// returns the provider-issued CheckoutRequestID. No payment state is
// persisted here; the caller records the pending payment on success.
func (c *Client) STKPush(ctx context.Context, input STKPushInput) (*STKPushResult, error) {
	token, err := c.tokens.GetCredential(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := c.now().Format(timestampLayout)
	password := base64.StdEncoding.EncodeToString([]byte(c.cfg.ShortCode + c.cfg.Passkey + timestamp))

	payload := stkPushRequest{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   transactionTypePayBill,
		Amount:            input.Amount.IntPart(),
		PartyA:            input.PhoneNumber,
		PartyB:            c.cfg.ShortCode,
		PhoneNumber:       input.PhoneNumber,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  input.AccountReference,
		TransactionDesc:   input.Description,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.NewInternalError("failed to marshal STK push request", err)
	}

	url := c.cfg.BaseURL + "/mpesa/stkpush/v1/processrequest"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, errors.NewInternalError("failed to create STK push request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("submitting STK push",
		"phone", input.PhoneNumber,
		"amount", input.Amount.String(),
		"account_reference", input.AccountReference)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("STK push submission failed", "error", err)
		return nil, errors.NewExternalError("payment provider unreachable",
			errors.ErrCodeProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("STK push rejected", "status", resp.StatusCode)
		return nil, errors.NewExternalError(
			fmt.Sprintf("payment provider returned status %d", resp.StatusCode),
			errors.ErrCodeProviderUnavailable, nil)
	}

	var pushResp stkPushResponse
	if err := json.NewDecoder(resp.Body).Decode(&pushResp); err != nil {
		return nil, errors.NewExternalError("malformed provider response",
			errors.ErrCodeProviderUnavailable, err)
	}

	if pushResp.CheckoutRequestID == "" {
		return nil, errors.NewExternalError("provider response missing CheckoutRequestID",
			errors.ErrCodeProviderUnavailable, nil)
	}

	c.logger.Info("STK push accepted",
		"checkout_request_id", pushResp.CheckoutRequestID,
		"merchant_request_id", pushResp.MerchantRequestID)

	return &STKPushResult{
		MerchantRequestID: pushResp.MerchantRequestID,
		CheckoutRequestID: pushResp.CheckoutRequestID,
		CustomerMessage:   pushResp.CustomerMessage,
	}, nil
}
