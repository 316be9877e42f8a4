package repository

import (
	"context"
	"errors"
	"time"

	"github.com/habtedev/AfriMart-sub000/apperrors"
	"github.com/habtedev/AfriMart-sub000/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PaymentIntentRepository defines the payment intent store. Create is a
// single conditional write: the one-active-intent-per-order invariant is
// enforced by a partial unique index, not by a read-then-insert.
type PaymentIntentRepository interface {
	Create(ctx context.Context, intent *models.PaymentIntent) error
	FindByTxRef(ctx context.Context, txRef string) (*models.PaymentIntent, error)
	FindByProviderTxID(ctx context.Context, providerTxID string) (*models.PaymentIntent, error)
	// FindLatestByOrderID returns the most recently created intent for the
	// order, regardless of status.
	FindLatestByOrderID(ctx context.Context, orderID string) (*models.PaymentIntent, error)
	// SetStatus has the same compare-and-swap contract as
	// OrderRepository.SetPaymentStatus.
	SetStatus(ctx context.Context, txRef, status, expected string) (applied bool, current string, err error)
	// SetProviderSession records the provider-assigned session id and
	// checkout URL once the initiation response arrives.
	SetProviderSession(ctx context.Context, txRef, providerTxID, checkoutURL string) error
	EnsureIndexes(ctx context.Context) error
}

type mongoPaymentIntentRepo struct {
	collection *mongo.Collection
}

func NewMongoPaymentIntentRepository(db *mongo.Database) PaymentIntentRepository {
	return &mongoPaymentIntentRepo{collection: db.Collection("payment_intents")}
}

// EnsureIndexes creates the partial unique index backing the
// one-active-intent invariant: order_id must be unique among intents that
// are not FAILED. A FAILED intent falls out of the index and stops blocking
// retries.
func (r *mongoPaymentIntentRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, paymentIntentIndexModels())
	return err
}

// paymentIntentIndexModels enumerates the non-FAILED statuses with $in
// because partialFilterExpression rejects $ne at index build time.
func paymentIntentIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "order_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"status": bson.M{"$in": []string{models.StatusPending, models.StatusPaid}},
				}),
		},
		{
			Keys:    bson.D{{Key: "provider_tx_id", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
}

func (r *mongoPaymentIntentRepo) Create(ctx context.Context, intent *models.PaymentIntent) error {
	_, err := r.collection.InsertOne(ctx, intent)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.Wrap(apperrors.ErrAlreadyInitiated, err)
	}
	return err
}

func (r *mongoPaymentIntentRepo) FindByTxRef(ctx context.Context, txRef string) (*models.PaymentIntent, error) {
	return r.findOne(ctx, bson.M{"_id": txRef})
}

func (r *mongoPaymentIntentRepo) FindByProviderTxID(ctx context.Context, providerTxID string) (*models.PaymentIntent, error) {
	return r.findOne(ctx, bson.M{"provider_tx_id": providerTxID})
}

func (r *mongoPaymentIntentRepo) FindLatestByOrderID(ctx context.Context, orderID string) (*models.PaymentIntent, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var intent models.PaymentIntent
	err := r.collection.FindOne(ctx, bson.M{"order_id": orderID}, opts).Decode(&intent)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrIntentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

func (r *mongoPaymentIntentRepo) findOne(ctx context.Context, filter bson.M) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	err := r.collection.FindOne(ctx, filter).Decode(&intent)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrIntentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

func (r *mongoPaymentIntentRepo) SetStatus(ctx context.Context, txRef, status, expected string) (bool, string, error) {
	filter := bson.M{"_id": txRef, "status": expected}
	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, "", err
	}
	if res.MatchedCount == 1 {
		return true, status, nil
	}
	intent, err := r.FindByTxRef(ctx, txRef)
	if err != nil {
		return false, "", err
	}
	return false, intent.Status, nil
}

func (r *mongoPaymentIntentRepo) SetProviderSession(ctx context.Context, txRef, providerTxID, checkoutURL string) error {
	update := bson.M{"$set": bson.M{
		"provider_tx_id": providerTxID,
		"checkout_url":   checkoutURL,
		"updated_at":     time.Now().UTC(),
	}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": txRef}, update)
	return err
}
