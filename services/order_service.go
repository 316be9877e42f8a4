package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/habtedev/AfriMart-sub000/apperrors"
	"github.com/habtedev/AfriMart-sub000/models"
	"github.com/habtedev/AfriMart-sub000/repository"

	"go.uber.org/zap"
)

// amountEpsilon bounds the allowed drift between the submitted total and
// the item sum (one santim).
const amountEpsilon = 0.01

type OrderService struct {
	orderRepo  repository.OrderRepository
	intentRepo repository.PaymentIntentRepository
	logger     *zap.Logger
}

func NewOrderService(orderRepo repository.OrderRepository, intentRepo repository.PaymentIntentRepository, logger *zap.Logger) *OrderService {
	return &OrderService{orderRepo: orderRepo, intentRepo: intentRepo, logger: logger}
}

// CreateOrder validates and persists a new order in PENDING state. Creation
// is idempotent on orderId: a retry with an identical payload returns the
// stored order, a retry with a different payload is a conflict.
func (s *OrderService) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order.PaymentStatus = models.StatusPending
	order.CreatedAt = now
	order.UpdatedAt = now

	err := s.orderRepo.Insert(ctx, order)
	if err == nil {
		s.logger.Info("Order created",
			zap.String("order_id", order.OrderID),
			zap.String("user_id", order.UserID),
			zap.Float64("total_amount", order.TotalAmount),
		)
		return order, nil
	}
	if !errors.Is(err, apperrors.ErrDuplicateOrder) {
		return nil, err
	}

	existing, findErr := s.orderRepo.FindByID(ctx, order.OrderID)
	if findErr != nil {
		return nil, findErr
	}
	if existing.SamePayload(order) {
		// Safe resend of the same creation request.
		return existing, nil
	}
	return nil, apperrors.ErrConflict
}

// GetOrder returns the order with its payment status. When the separate
// order write lost a race with the intent transition, the intent is the
// source of truth, so callers never observe a stale PENDING after payment.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == models.StatusPending {
		intent, err := s.intentRepo.FindLatestByOrderID(ctx, orderID)
		if err == nil && models.TerminalStatuses[intent.Status] {
			order.PaymentStatus = intent.Status
		}
	}
	return order, nil
}

func validateOrder(order *models.Order) error {
	if order.OrderID == "" || order.UserID == "" {
		return apperrors.ErrInvalidOrder
	}
	if len(order.Items) == 0 {
		return apperrors.Wrap(apperrors.ErrInvalidOrder, errors.New("order has no items"))
	}

	var sum float64
	for _, item := range order.Items {
		if item.Quantity <= 0 {
			return apperrors.Wrap(apperrors.ErrInvalidOrder, errors.New("item quantity must be positive"))
		}
		if item.UnitPrice < 0 {
			return apperrors.Wrap(apperrors.ErrInvalidOrder, errors.New("item price must not be negative"))
		}
		sum += float64(item.Quantity) * item.UnitPrice
	}
	if math.Abs(sum-order.TotalAmount) > amountEpsilon {
		return apperrors.Wrap(apperrors.ErrInvalidOrder, errors.New("total amount does not match item sum"))
	}
	return nil
}
