package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/habtedev/AfriMart-sub000/models"

	"go.uber.org/zap"
)

// ArifPayClient talks to ArifPay's checkout session API. ArifPay is the
// sync-poll provider: the session id is assigned by the provider on the
// initiation response, and callers normally learn the outcome by polling
// VerifyStatus.
type ArifPayClient struct {
	baseURL string
	apiKey  string
	http    *httpClient
	logger  *zap.Logger
}

func NewArifPayClient(baseURL, apiKey string, timeout time.Duration, maxRetries int, backoffBase time.Duration, logger *zap.Logger) *ArifPayClient {
	return &ArifPayClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    newHTTPClient(timeout, maxRetries, backoffBase, logger),
		logger:  logger,
	}
}

func (a *ArifPayClient) Name() string { return models.ProviderArifPay }

type arifpayCheckoutRequest struct {
	Phone          string            `json:"phone"`
	Nonce          string            `json:"nonce"`
	CancelURL      string            `json:"cancelUrl"`
	SuccessURL     string            `json:"successUrl"`
	ErrorURL       string            `json:"errorUrl"`
	NotifyURL      string            `json:"notifyUrl"`
	ExpireDate     string            `json:"expireDate"`
	PaymentMethods []string          `json:"paymentMethods"`
	Items          []arifpayItem     `json:"items"`
	Beneficiaries  []arifpayBenefact `json:"beneficiaries"`
}

type arifpayItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type arifpayBenefact struct {
	AccountNumber string  `json:"accountNumber"`
	Bank          string  `json:"bank"`
	Amount        float64 `json:"amount"`
}

type arifpayCheckoutResponse struct {
	Error bool   `json:"error"`
	Msg   string `json:"msg"`
	Data  struct {
		SessionID  string `json:"sessionId"`
		PaymentURL string `json:"paymentUrl"`
	} `json:"data"`
}

func (a *ArifPayClient) Initiate(ctx context.Context, req InitiationRequest) (*InitiationResponse, error) {
	body := arifpayCheckoutRequest{
		Phone:          req.PayerContact,
		Nonce:          req.TxRef,
		CancelURL:      req.CancelURL,
		SuccessURL:     req.ReturnURL,
		ErrorURL:       req.CancelURL,
		NotifyURL:      req.CallbackURL,
		ExpireDate:     time.Now().Add(1 * time.Hour).UTC().Format(time.RFC3339),
		PaymentMethods: []string{"TELEBIRR", "CBE", "AWASH"},
		Items: []arifpayItem{{
			Name:     req.Description,
			Quantity: 1,
			Price:    req.Amount,
		}},
	}

	var out arifpayCheckoutResponse
	url := a.baseURL + "/checkout/session"
	if err := a.http.doJSON(ctx, http.MethodPost, url, a.authHeaders(), body, &out); err != nil {
		a.logger.Error("ArifPay checkout session failed",
			zap.String("provider", a.Name()),
			zap.String("tx_ref", req.TxRef),
			zap.Error(err),
		)
		return nil, err
	}

	a.logger.Info("ArifPay checkout session created",
		zap.String("session_id", out.Data.SessionID),
		zap.String("order_id", req.OrderID),
	)
	return &InitiationResponse{
		CheckoutURL:       out.Data.PaymentURL,
		ProviderSessionID: out.Data.SessionID,
	}, nil
}

type arifpaySessionResponse struct {
	Error bool `json:"error"`
	Data  struct {
		SessionID   string `json:"sessionId"`
		Transaction struct {
			TransactionID     string `json:"transactionId"`
			TransactionStatus string `json:"transactionStatus"`
		} `json:"transaction"`
	} `json:"data"`
}

func (a *ArifPayClient) VerifyStatus(ctx context.Context, ref string) (*VerificationResult, error) {
	var out arifpaySessionResponse
	url := fmt.Sprintf("%s/checkout/session/%s", a.baseURL, ref)
	if err := a.http.doJSON(ctx, http.MethodGet, url, a.authHeaders(), nil, &out); err != nil {
		a.logger.Error("ArifPay session fetch failed",
			zap.String("provider", a.Name()),
			zap.String("session_id", ref),
			zap.Error(err),
		)
		return nil, err
	}

	return &VerificationResult{
		Status:       MapArifPayStatus(out.Data.Transaction.TransactionStatus),
		ProviderTxID: out.Data.Transaction.TransactionID,
	}, nil
}

func (a *ArifPayClient) authHeaders() map[string]string {
	return map[string]string{"x-arifpay-key": a.apiKey}
}

// MapArifPayStatus translates ArifPay transaction statuses into ours.
func MapArifPayStatus(status string) string {
	switch status {
	case "SUCCESS":
		return models.StatusPaid
	case "FAILED", "CANCELLED", "EXPIRED":
		return models.StatusFailed
	default:
		return models.StatusPending
	}
}
