// Package gateway holds the outbound payment provider clients. Transient
// failures (network errors, 5xx) are retried with exponential backoff up to
// a fixed cap; 4xx responses are the caller's fault and surface immediately
// as a rejection.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/habtedev/AfriMart-sub000/apperrors"

	"go.uber.org/zap"
)

// InitiationRequest is the provider-independent shape of a payment
// initiation. Amount is copied from the order at intent-creation time and
// never recomputed.
type InitiationRequest struct {
	OrderID      string
	TxRef        string
	Amount       float64
	Currency     string
	PayerContact string
	CallbackURL  string
	ReturnURL    string
	CancelURL    string
	Description  string
}

type InitiationResponse struct {
	CheckoutURL       string
	ProviderSessionID string
}

type VerificationResult struct {
	// Status is one of models.StatusPending/StatusPaid/StatusFailed.
	Status       string
	ProviderTxID string
}

// Provider abstracts one upstream payment gateway.
type Provider interface {
	Name() string
	Initiate(ctx context.Context, req InitiationRequest) (*InitiationResponse, error)
	// VerifyStatus polls the provider's status endpoint for the given
	// correlation reference (tx_ref for Chapa, session id for ArifPay).
	VerifyStatus(ctx context.Context, ref string) (*VerificationResult, error)
}

// httpClient wraps net/http with the retry policy shared by all providers.
type httpClient struct {
	client      *http.Client
	maxRetries  int
	backoffBase time.Duration
	logger      *zap.Logger
}

func newHTTPClient(timeout time.Duration, maxRetries int, backoffBase time.Duration, logger *zap.Logger) *httpClient {
	return &httpClient{
		client:      &http.Client{Timeout: timeout},
		maxRetries:  maxRetries,
		backoffBase: backoffBase,
		logger:      logger,
	}
}

// doJSON issues the request up to maxRetries+1 times and decodes a 2xx
// response body into out. The request body is marshaled once and replayed
// per attempt.
func (c *httpClient) doJSON(ctx context.Context, method, url string, headers map[string]string, body interface{}, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.backoffBase << (attempt - 1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return apperrors.Wrap(apperrors.ErrGatewayUnavailable, ctx.Err())
			}
		}

		err := c.doOnce(ctx, method, url, headers, payload, out)
		if err == nil {
			return nil
		}
		if errors.Is(err, apperrors.ErrGatewayRejected) {
			return err
		}
		lastErr = err
		c.logger.Warn("Gateway call failed",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	return apperrors.Wrap(apperrors.ErrGatewayUnavailable, lastErr)
}

func (c *httpClient) doOnce(ctx context.Context, method, url string, headers map[string]string, payload []byte, out interface{}) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out != nil {
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("decode gateway response: %w", err)
			}
		}
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// Caller error: pass the provider's message through for diagnosis,
		// never retry.
		return apperrors.Wrap(apperrors.ErrGatewayRejected,
			fmt.Errorf("gateway returned %d: %s", resp.StatusCode, string(respBody)))
	default:
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, string(respBody))
	}
}
