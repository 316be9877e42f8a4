package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/habtedev/AfriMart-sub000/apperrors"
	"github.com/habtedev/AfriMart-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestChapa(t *testing.T, serverURL string, maxRetries int) *ChapaClient {
	t.Helper()
	return NewChapaClient(serverURL, "test-key", 2*time.Second, maxRetries, time.Millisecond, zap.NewNop())
}

func TestRetryBound_AlwaysFailingGateway(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	const maxRetries = 3
	client := newTestChapa(t, srv.URL, maxRetries)

	_, err := client.Initiate(context.Background(), InitiationRequest{TxRef: "tx-1", Amount: 100})
	assert.True(t, errors.Is(err, apperrors.ErrGatewayUnavailable))
	assert.Equal(t, int32(maxRetries+1), atomic.LoadInt32(&calls))
}

func TestRejection_NotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"invalid currency"}`))
	}))
	defer srv.Close()

	client := newTestChapa(t, srv.URL, 3)

	_, err := client.Initiate(context.Background(), InitiationRequest{TxRef: "tx-1", Amount: 100})
	assert.True(t, errors.Is(err, apperrors.ErrGatewayRejected))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx must not be retried")
}

func TestTransientFailureThenSuccess(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"status":"success","data":{"checkout_url":"https://checkout.chapa.co/pay/abc"}}`))
	}))
	defer srv.Close()

	client := newTestChapa(t, srv.URL, 3)

	resp, err := client.Initiate(context.Background(), InitiationRequest{TxRef: "tx-1", Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.chapa.co/pay/abc", resp.CheckoutURL)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestChapaInitiate_SendsAuthAndTxRef(t *testing.T) {
	var gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.Write([]byte(`{"status":"success","data":{"checkout_url":"https://checkout.chapa.co/pay/abc"}}`))
	}))
	defer srv.Close()

	client := newTestChapa(t, srv.URL, 0)
	_, err := client.Initiate(context.Background(), InitiationRequest{
		TxRef:       "tx-42",
		Amount:      250.5,
		Currency:    "ETB",
		CallbackURL: "https://shop.example.com/payments/chapa/webhook",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Contains(t, gotBody, `"tx_ref":"tx-42"`)
	assert.Contains(t, gotBody, `"amount":"250.50"`)
}

func TestChapaVerifyStatus_MapsProviderStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"status":"success","reference":"APq123"}}`))
	}))
	defer srv.Close()

	client := newTestChapa(t, srv.URL, 0)
	result, err := client.VerifyStatus(context.Background(), "tx-42")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, result.Status)
	assert.Equal(t, "APq123", result.ProviderTxID)
}

func TestArifPayInitiate_ReturnsSessionID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "arif-key", r.Header.Get("x-arifpay-key"))
		w.Write([]byte(`{"error":false,"data":{"sessionId":"ARIF-1","paymentUrl":"https://checkout.arifpay.net/s/ARIF-1"}}`))
	}))
	defer srv.Close()

	client := NewArifPayClient(srv.URL, "arif-key", 2*time.Second, 0, time.Millisecond, zap.NewNop())
	resp, err := client.Initiate(context.Background(), InitiationRequest{TxRef: "tx-9", Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, "ARIF-1", resp.ProviderSessionID)
	assert.Equal(t, "https://checkout.arifpay.net/s/ARIF-1", resp.CheckoutURL)
}

func TestStatusMappings(t *testing.T) {
	assert.Equal(t, models.StatusPaid, MapChapaStatus("success"))
	assert.Equal(t, models.StatusFailed, MapChapaStatus("failed"))
	assert.Equal(t, models.StatusPending, MapChapaStatus("created"))

	assert.Equal(t, models.StatusPaid, MapArifPayStatus("SUCCESS"))
	assert.Equal(t, models.StatusFailed, MapArifPayStatus("CANCELLED"))
	assert.Equal(t, models.StatusPending, MapArifPayStatus("PENDING"))
}
