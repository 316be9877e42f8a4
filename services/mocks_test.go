package services

import (
	"context"
	"sync"

	"github.com/habtedev/AfriMart-sub000/apperrors"
	"github.com/habtedev/AfriMart-sub000/gateway"
	"github.com/habtedev/AfriMart-sub000/models"

	"go.uber.org/zap"
)

func testLogger() *zap.Logger { return zap.NewNop() }

// In-memory stores mirroring the mongo repositories' conditional-write
// semantics, guarded by a mutex so the race tests exercise real
// interleavings.

type memOrderRepo struct {
	mu     sync.Mutex
	orders map[string]models.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]models.Order)}
}

func (m *memOrderRepo) Insert(_ context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.orders[order.OrderID]; exists {
		return apperrors.ErrDuplicateOrder
	}
	m.orders[order.OrderID] = *order
	return nil
}

func (m *memOrderRepo) FindByID(_ context.Context, orderID string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return nil, apperrors.ErrOrderNotFound
	}
	return &order, nil
}

func (m *memOrderRepo) SetPaymentStatus(_ context.Context, orderID, status, expected string) (bool, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return false, "", apperrors.ErrOrderNotFound
	}
	if order.PaymentStatus != expected {
		return false, order.PaymentStatus, nil
	}
	order.PaymentStatus = status
	m.orders[orderID] = order
	return true, status, nil
}

type memIntentRepo struct {
	mu      sync.Mutex
	intents map[string]models.PaymentIntent
}

func newMemIntentRepo() *memIntentRepo {
	return &memIntentRepo{intents: make(map[string]models.PaymentIntent)}
}

func (m *memIntentRepo) Create(_ context.Context, intent *models.PaymentIntent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.intents {
		if existing.OrderID == intent.OrderID && existing.Status != models.StatusFailed {
			return apperrors.ErrAlreadyInitiated
		}
	}
	if _, exists := m.intents[intent.TxRef]; exists {
		return apperrors.ErrAlreadyInitiated
	}
	m.intents[intent.TxRef] = *intent
	return nil
}

func (m *memIntentRepo) FindByTxRef(_ context.Context, txRef string) (*models.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	intent, ok := m.intents[txRef]
	if !ok {
		return nil, apperrors.ErrIntentNotFound
	}
	return &intent, nil
}

func (m *memIntentRepo) FindByProviderTxID(_ context.Context, providerTxID string) (*models.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, intent := range m.intents {
		if intent.ProviderTxID == providerTxID {
			out := intent
			return &out, nil
		}
	}
	return nil, apperrors.ErrIntentNotFound
}

func (m *memIntentRepo) FindLatestByOrderID(_ context.Context, orderID string) (*models.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *models.PaymentIntent
	for _, intent := range m.intents {
		if intent.OrderID != orderID {
			continue
		}
		if latest == nil || intent.CreatedAt.After(latest.CreatedAt) {
			out := intent
			latest = &out
		}
	}
	if latest == nil {
		return nil, apperrors.ErrIntentNotFound
	}
	return latest, nil
}

func (m *memIntentRepo) SetStatus(_ context.Context, txRef, status, expected string) (bool, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	intent, ok := m.intents[txRef]
	if !ok {
		return false, "", apperrors.ErrIntentNotFound
	}
	if intent.Status != expected {
		return false, intent.Status, nil
	}
	intent.Status = status
	m.intents[txRef] = intent
	return true, status, nil
}

func (m *memIntentRepo) SetProviderSession(_ context.Context, txRef, providerTxID, checkoutURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	intent, ok := m.intents[txRef]
	if !ok {
		return apperrors.ErrIntentNotFound
	}
	intent.ProviderTxID = providerTxID
	intent.CheckoutURL = checkoutURL
	m.intents[txRef] = intent
	return nil
}

func (m *memIntentRepo) EnsureIndexes(_ context.Context) error { return nil }

// fakeProvider lets tests script initiation and verification outcomes.
type fakeProvider struct {
	name string

	mu            sync.Mutex
	initiateErr   error
	initiateCalls int
	lastRequest   gateway.InitiationRequest
	verifyResult  *gateway.VerificationResult
	verifyErr     error
	verifyCalls   int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Initiate(_ context.Context, req gateway.InitiationRequest) (*gateway.InitiationResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initiateCalls++
	f.lastRequest = req
	if f.initiateErr != nil {
		return nil, f.initiateErr
	}
	return &gateway.InitiationResponse{
		CheckoutURL:       "https://checkout.test/" + req.TxRef,
		ProviderSessionID: "SESSION-" + req.TxRef,
	}, nil
}

func (f *fakeProvider) VerifyStatus(_ context.Context, _ string) (*gateway.VerificationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.verifyResult, nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []models.PaymentEvent
}

func (f *fakePublisher) SendPaymentEvent(event models.PaymentEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}
