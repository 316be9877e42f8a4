package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/habtedev/AfriMart-sub000/models"

	"go.uber.org/zap"
)

// ChapaClient talks to Chapa's transaction API. Chapa is the async
// provider: the tx_ref is ours, generated before the outbound call, and the
// terminal outcome normally arrives on the webhook.
type ChapaClient struct {
	baseURL   string
	secretKey string
	http      *httpClient
	logger    *zap.Logger
}

func NewChapaClient(baseURL, secretKey string, timeout time.Duration, maxRetries int, backoffBase time.Duration, logger *zap.Logger) *ChapaClient {
	return &ChapaClient{
		baseURL:   baseURL,
		secretKey: secretKey,
		http:      newHTTPClient(timeout, maxRetries, backoffBase, logger),
		logger:    logger,
	}
}

func (c *ChapaClient) Name() string { return models.ProviderChapa }

type chapaInitializeRequest struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	TxRef       string `json:"tx_ref"`
	CallbackURL string `json:"callback_url"`
	ReturnURL   string `json:"return_url"`
	Description string `json:"customization[description],omitempty"`
}

type chapaInitializeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		CheckoutURL string `json:"checkout_url"`
	} `json:"data"`
}

func (c *ChapaClient) Initiate(ctx context.Context, req InitiationRequest) (*InitiationResponse, error) {
	body := chapaInitializeRequest{
		Amount:      strconv.FormatFloat(req.Amount, 'f', 2, 64),
		Currency:    req.Currency,
		Email:       req.PayerContact,
		TxRef:       req.TxRef,
		CallbackURL: req.CallbackURL,
		ReturnURL:   req.ReturnURL,
		Description: req.Description,
	}

	var out chapaInitializeResponse
	url := c.baseURL + "/v1/transaction/initialize"
	if err := c.http.doJSON(ctx, http.MethodPost, url, c.authHeaders(), body, &out); err != nil {
		c.logger.Error("Chapa initialize failed",
			zap.String("provider", c.Name()),
			zap.String("tx_ref", req.TxRef),
			zap.Error(err),
		)
		return nil, err
	}

	c.logger.Info("Chapa transaction initialized",
		zap.String("tx_ref", req.TxRef),
		zap.String("order_id", req.OrderID),
	)
	return &InitiationResponse{CheckoutURL: out.Data.CheckoutURL}, nil
}

type chapaVerifyResponse struct {
	Status string `json:"status"`
	Data   struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
	} `json:"data"`
}

func (c *ChapaClient) VerifyStatus(ctx context.Context, ref string) (*VerificationResult, error) {
	var out chapaVerifyResponse
	url := fmt.Sprintf("%s/v1/transaction/verify/%s", c.baseURL, ref)
	if err := c.http.doJSON(ctx, http.MethodGet, url, c.authHeaders(), nil, &out); err != nil {
		c.logger.Error("Chapa verify failed",
			zap.String("provider", c.Name()),
			zap.String("tx_ref", ref),
			zap.Error(err),
		)
		return nil, err
	}

	return &VerificationResult{
		Status:       MapChapaStatus(out.Data.Status),
		ProviderTxID: out.Data.Reference,
	}, nil
}

func (c *ChapaClient) authHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.secretKey}
}

// MapChapaStatus translates Chapa transaction statuses into ours. Unknown
// statuses stay PENDING: a webhook with a status we do not recognize must
// not flip an intent to a terminal state.
func MapChapaStatus(status string) string {
	switch status {
	case "success":
		return models.StatusPaid
	case "failed", "cancelled":
		return models.StatusFailed
	default:
		return models.StatusPending
	}
}
