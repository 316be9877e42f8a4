package services

import (
	"context"
	"errors"
	"testing"

	"github.com/habtedev/AfriMart-sub000/apperrors"
	"github.com/habtedev/AfriMart-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder() *models.Order {
	return &models.Order{
		OrderID: "O1",
		UserID:  "U1",
		Items: []models.OrderItem{
			{ProductID: "p1", Quantity: 2, UnitPrice: 50},
		},
		ShippingAddress: models.ShippingAddress{City: "Addis Ababa", Phone: "251911000000"},
		TotalAmount:     100,
	}
}

func newOrderServiceForTest() (*OrderService, *memOrderRepo, *memIntentRepo) {
	orderRepo := newMemOrderRepo()
	intentRepo := newMemIntentRepo()
	return NewOrderService(orderRepo, intentRepo, testLogger()), orderRepo, intentRepo
}

func TestCreateOrder_IdempotentReplay(t *testing.T) {
	svc, repo, _ := newOrderServiceForTest()
	ctx := context.Background()

	first, err := svc.CreateOrder(ctx, testOrder())
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, first.PaymentStatus)

	// Identical resend must succeed without a second record.
	again, err := svc.CreateOrder(ctx, testOrder())
	require.NoError(t, err)
	assert.Equal(t, first.OrderID, again.OrderID)
	assert.Len(t, repo.orders, 1)
}

func TestCreateOrder_ConflictOnDifferentPayload(t *testing.T) {
	svc, _, _ := newOrderServiceForTest()
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, testOrder())
	require.NoError(t, err)

	changed := testOrder()
	changed.TotalAmount = 200
	changed.Items[0].UnitPrice = 100

	_, err = svc.CreateOrder(ctx, changed)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
}

func TestCreateOrder_Validation(t *testing.T) {
	svc, _, _ := newOrderServiceForTest()
	ctx := context.Background()

	empty := testOrder()
	empty.Items = nil
	_, err := svc.CreateOrder(ctx, empty)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidOrder))

	badQty := testOrder()
	badQty.Items[0].Quantity = 0
	_, err = svc.CreateOrder(ctx, badQty)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidOrder))

	badTotal := testOrder()
	badTotal.TotalAmount = 99
	_, err = svc.CreateOrder(ctx, badTotal)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidOrder))
}

func TestCreateOrder_TotalWithinEpsilonAccepted(t *testing.T) {
	svc, _, _ := newOrderServiceForTest()

	order := testOrder()
	order.TotalAmount = 100.005
	_, err := svc.CreateOrder(context.Background(), order)
	assert.NoError(t, err)
}

func TestGetOrder_DerivesStatusFromIntent(t *testing.T) {
	svc, _, intentRepo := newOrderServiceForTest()
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, testOrder())
	require.NoError(t, err)

	// Simulate the intent transition landing before the order write.
	require.NoError(t, intentRepo.Create(ctx, &models.PaymentIntent{
		TxRef:   "tx-1",
		OrderID: "O1",
		Status:  models.StatusPaid,
	}))

	order, err := svc.GetOrder(ctx, "O1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, order.PaymentStatus)
}

func TestGetOrder_NotFound(t *testing.T) {
	svc, _, _ := newOrderServiceForTest()

	_, err := svc.GetOrder(context.Background(), "missing")
	assert.True(t, errors.Is(err, apperrors.ErrOrderNotFound))
}
