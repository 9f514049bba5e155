package mpesa

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	errors "github.com/Ngechemoris1/payup/internal"
)

const (
	// expirySafetyMargin absorbs clock skew and in-flight latency so a token
	// handed out near its declared expiry is still accepted upstream.
	expirySafetyMargin = 60 * time.Second

	credentialMaxAttempts   = 3
	credentialInitialDelay  = 1 * time.Second
	credentialExchangeLimit = 30 * time.Second
)

// TokenSource yields a valid bearer token for the provider API.
type TokenSource interface {
	GetCredential(ctx context.Context) (string, error)
}

// CredentialCache caches the Daraja OAuth bearer token until shortly before
// its declared expiry. The whole refresh path is serialized behind a mutex:
// only one exchange is ever in flight, and concurrent callers blocked on the
// lock observe the freshly cached value instead of triggering their own.
type CredentialCache struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	httpClient     *http.Client
	logger         *slog.Logger

	mu        sync.Mutex
	token     string
	expiresAt time.Time

	now          func() time.Time
	initialDelay time.Duration
}

func NewCredentialCache(baseURL, consumerKey, consumerSecret string, logger *slog.Logger) *CredentialCache {
	return &CredentialCache{
		baseURL:        baseURL,
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		httpClient:     &http.Client{Timeout: credentialExchangeLimit},
		logger:         logger,
		now:            time.Now,
		initialDelay:   credentialInitialDelay,
	}
}

// GetCredential returns the cached token while it is fresh, otherwise runs
// the client-credentials exchange with bounded retry. Exhausting all attempts
// is a hard failure of the payment attempt (CREDENTIAL_UNAVAILABLE).
func (c *CredentialCache) GetCredential(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expiresAt) {
		return c.token, nil
	}

	resp, err := c.exchangeWithRetry(ctx)
	if err != nil {
		c.logger.Error("credential exchange exhausted", "error", err)
		return "", errors.NewExternalError("payment provider credential unavailable",
			errors.ErrCodeCredentialUnavailable, err)
	}

	c.token = resp.AccessToken
	c.expiresAt = c.now().Add(time.Duration(resp.ExpiresIn)*time.Second - expirySafetyMargin)

	c.logger.Info("provider credential refreshed", "expires_at", c.expiresAt)
	return c.token, nil
}

func (c *CredentialCache) exchangeWithRetry(ctx context.Context) (*tokenResponse, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, credentialMaxAttempts-1), ctx)

	return backoff.RetryWithData(func() (*tokenResponse, error) {
		resp, err := c.exchange(ctx)
		if err != nil {
			return nil, err
		}
		return resp, nil
	}, policy)
}

// exchange performs one client-credentials call. Transport and 5xx failures
// are retryable; a rejected or malformed response is permanent.
func (c *CredentialCache) exchange(ctx context.Context) (*tokenResponse, error) {
	url := c.baseURL + "/oauth/v1/generate?grant_type=client_credentials"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create token request: %w", err))
	}

	basic := base64.StdEncoding.EncodeToString([]byte(c.consumerKey + ":" + c.consumerSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("credential exchange transport failure, will retry", "error", err)
		return nil, fmt.Errorf("token endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		c.logger.Warn("credential exchange transient error, will retry", "status", resp.StatusCode)
		return nil, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, backoff.Permanent(fmt.Errorf("credential exchange rejected with status %d", resp.StatusCode))
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("malformed token response: %w", err))
	}

	if token.AccessToken == "" || token.ExpiresIn <= 0 {
		return nil, backoff.Permanent(fmt.Errorf("token response missing access_token or expires_in"))
	}

	return &token, nil
}
