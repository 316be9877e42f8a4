package services

import (
	"context"
	"strings"
	"time"

	"github.com/habtedev/AfriMart-sub000/apperrors"
	"github.com/habtedev/AfriMart-sub000/gateway"
	"github.com/habtedev/AfriMart-sub000/kafka"
	"github.com/habtedev/AfriMart-sub000/models"
	"github.com/habtedev/AfriMart-sub000/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReconciliationService owns every transition of an order's payment state.
// Both the webhook path and the verify-poll path converge here; the
// compare-and-swap writes in the repositories make each transition safe to
// replay, so duplicate deliveries and concurrent polls degrade to no-ops.
type ReconciliationService struct {
	orderRepo  repository.OrderRepository
	intentRepo repository.PaymentIntentRepository
	providers  map[string]gateway.Provider
	publisher  kafka.EventPublisher

	callbackBaseURL string
	returnURL       string
	cancelURL       string

	logger *zap.Logger
}

func NewReconciliationService(
	orderRepo repository.OrderRepository,
	intentRepo repository.PaymentIntentRepository,
	providers []gateway.Provider,
	publisher kafka.EventPublisher,
	callbackBaseURL, returnURL, cancelURL string,
	logger *zap.Logger,
) *ReconciliationService {
	byName := make(map[string]gateway.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &ReconciliationService{
		orderRepo:       orderRepo,
		intentRepo:      intentRepo,
		providers:       byName,
		publisher:       publisher,
		callbackBaseURL: callbackBaseURL,
		returnURL:       returnURL,
		cancelURL:       cancelURL,
		logger:          logger,
	}
}

// Provider resolves a provider by its route name (case-insensitive).
func (s *ReconciliationService) Provider(name string) (gateway.Provider, error) {
	p, ok := s.providers[strings.ToUpper(name)]
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrInvalidRequest, errUnknownProvider(name))
	}
	return p, nil
}

type errUnknownProvider string

func (e errUnknownProvider) Error() string { return "unknown payment provider: " + string(e) }

// InitiatePayment opens a payment attempt for an order. The intent row is
// written before the outbound gateway call so the provider cannot call back
// before the local record exists. A gateway failure leaves the intent
// FAILED and the order PENDING, so the caller may retry with a fresh
// initiation.
func (s *ReconciliationService) InitiatePayment(ctx context.Context, providerName, orderID, payerContact, description string) (*models.PaymentIntent, error) {
	provider, err := s.Provider(providerName)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	intent := &models.PaymentIntent{
		TxRef:     uuid.NewString(),
		OrderID:   order.OrderID,
		Provider:  provider.Name(),
		Amount:    order.TotalAmount,
		Currency:  "ETB",
		Status:    models.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.intentRepo.Create(ctx, intent); err != nil {
		return nil, err
	}

	resp, err := provider.Initiate(ctx, gateway.InitiationRequest{
		OrderID:      order.OrderID,
		TxRef:        intent.TxRef,
		Amount:       intent.Amount,
		Currency:     intent.Currency,
		PayerContact: payerContact,
		CallbackURL:  s.webhookURL(providerName),
		ReturnURL:    s.returnURL,
		CancelURL:    s.cancelURL,
		Description:  description,
	})
	if err != nil {
		// Free the order for a new attempt; the failed intent stays as an
		// audit record.
		if _, _, casErr := s.intentRepo.SetStatus(ctx, intent.TxRef, models.StatusFailed, models.StatusPending); casErr != nil {
			s.logger.Error("Failed to mark intent failed after gateway error",
				zap.String("tx_ref", intent.TxRef),
				zap.Error(casErr),
			)
		}
		return nil, err
	}

	if err := s.intentRepo.SetProviderSession(ctx, intent.TxRef, resp.ProviderSessionID, resp.CheckoutURL); err != nil {
		s.logger.Error("Failed to record provider session",
			zap.String("tx_ref", intent.TxRef),
			zap.String("provider", provider.Name()),
			zap.Error(err),
		)
	}
	intent.ProviderTxID = resp.ProviderSessionID
	intent.CheckoutURL = resp.CheckoutURL
	return intent, nil
}

// HandleChapaWebhook applies a verified Chapa callback. The caller has
// already checked the signature.
func (s *ReconciliationService) HandleChapaWebhook(ctx context.Context, payload models.ChapaWebhook) error {
	intent, err := s.intentRepo.FindByTxRef(ctx, payload.TxRef)
	if err != nil {
		// An unknown tx_ref must not create state; 404 tells the provider
		// to stop redelivering.
		return err
	}
	return s.applyTransition(ctx, intent, gateway.MapChapaStatus(payload.Status), payload.RefID)
}

// HandleArifPayNotification applies a verified ArifPay callback, correlated
// by the provider-assigned session id.
func (s *ReconciliationService) HandleArifPayNotification(ctx context.Context, payload models.ArifPayNotification) error {
	intent, err := s.intentRepo.FindByProviderTxID(ctx, payload.SessionID)
	if err != nil {
		return err
	}
	return s.applyTransition(ctx, intent, gateway.MapArifPayStatus(payload.TransactionStatus), payload.TransactionID)
}

// VerifyAndReconcile is the sync path: poll the provider for the order's
// latest intent and apply the result through the same transition logic the
// webhook path uses.
func (s *ReconciliationService) VerifyAndReconcile(ctx context.Context, providerName, orderID string) (*models.PaymentIntent, error) {
	provider, err := s.Provider(providerName)
	if err != nil {
		return nil, err
	}

	intent, err := s.intentRepo.FindLatestByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if intent.Provider != provider.Name() {
		// The order's payment lives with a different provider; never send
		// its reference to this one.
		return nil, apperrors.ErrIntentNotFound
	}
	if models.TerminalStatuses[intent.Status] {
		return intent, nil
	}

	ref := intent.TxRef
	if provider.Name() == models.ProviderArifPay {
		if intent.ProviderTxID == "" {
			// Session never got recorded; nothing to poll yet.
			return intent, nil
		}
		ref = intent.ProviderTxID
	}

	result, err := provider.VerifyStatus(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.applyTransition(ctx, intent, result.Status, result.ProviderTxID); err != nil {
		return nil, err
	}
	return s.intentRepo.FindByTxRef(ctx, intent.TxRef)
}

// applyTransition moves an intent (and its order) to a terminal state at
// most once. The intent CAS decides the winner; the order write replays the
// intent's outcome and is itself conditional, so whichever of two racing
// paths loses changes nothing.
func (s *ReconciliationService) applyTransition(ctx context.Context, intent *models.PaymentIntent, status, providerTxID string) error {
	if !models.TerminalStatuses[status] {
		// Still pending at the provider; nothing to record.
		return nil
	}

	applied, current, err := s.intentRepo.SetStatus(ctx, intent.TxRef, status, models.StatusPending)
	if err != nil {
		return err
	}
	if !applied {
		s.logger.Info("Skipping duplicate reconciliation",
			zap.String("tx_ref", intent.TxRef),
			zap.String("status", current),
		)
		return nil
	}

	if providerTxID != "" && intent.ProviderTxID == "" {
		if err := s.intentRepo.SetProviderSession(ctx, intent.TxRef, providerTxID, intent.CheckoutURL); err != nil {
			s.logger.Error("Failed to record provider transaction id",
				zap.String("tx_ref", intent.TxRef),
				zap.Error(err),
			)
		}
	}

	orderApplied, orderStatus, err := s.orderRepo.SetPaymentStatus(ctx, intent.OrderID, status, models.StatusPending)
	if err != nil {
		// The intent already carries the terminal state; order reads derive
		// from it until a later replay lands this write.
		s.logger.Error("Order status write failed after intent transition",
			zap.String("order_id", intent.OrderID),
			zap.String("tx_ref", intent.TxRef),
			zap.String("status", status),
			zap.Error(err),
		)
	} else if !orderApplied && orderStatus != status {
		s.logger.Warn("Order already in a different terminal state",
			zap.String("order_id", intent.OrderID),
			zap.String("order_status", orderStatus),
			zap.String("intent_status", status),
		)
	}

	s.logger.Info("Payment reconciled",
		zap.String("order_id", intent.OrderID),
		zap.String("tx_ref", intent.TxRef),
		zap.String("provider", intent.Provider),
		zap.String("status", status),
	)

	s.publishEvent(ctx, intent, status)
	return nil
}

func (s *ReconciliationService) publishEvent(ctx context.Context, intent *models.PaymentIntent, status string) {
	userID := ""
	if order, err := s.orderRepo.FindByID(ctx, intent.OrderID); err == nil {
		userID = order.UserID
	}

	event := models.PaymentEvent{
		Type:      "payment_" + strings.ToLower(status),
		OrderID:   intent.OrderID,
		UserID:    userID,
		TxRef:     intent.TxRef,
		Provider:  intent.Provider,
		Amount:    intent.Amount,
		Currency:  intent.Currency,
		Timestamp: time.Now().UTC(),
	}
	if err := s.publisher.SendPaymentEvent(event); err != nil {
		// Logging only; a publish failure must not fail the webhook.
		s.logger.Error("Failed to publish payment event",
			zap.String("event_type", event.Type),
			zap.String("order_id", event.OrderID),
			zap.Error(err),
		)
	}
}

func (s *ReconciliationService) webhookURL(providerName string) string {
	return s.callbackBaseURL + "/payments/" + strings.ToLower(providerName) + "/webhook"
}
