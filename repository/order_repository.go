package repository

import (
	"context"
	"errors"
	"time"

	"github.com/habtedev/AfriMart-sub000/apperrors"
	"github.com/habtedev/AfriMart-sub000/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// OrderRepository defines the operations the order store supports. Plain Go
// types on the interface keep mongo out of the service layer.
type OrderRepository interface {
	Insert(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, orderID string) (*models.Order, error)
	// SetPaymentStatus applies the transition only if the order's current
	// status equals expected. When the condition fails it reports
	// applied=false and the status actually stored, so duplicate
	// reconciliation attempts degrade to no-ops.
	SetPaymentStatus(ctx context.Context, orderID, status, expected string) (applied bool, current string, err error)
}

type mongoOrderRepo struct {
	collection *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) OrderRepository {
	return &mongoOrderRepo{collection: db.Collection("orders")}
}

func (r *mongoOrderRepo) Insert(ctx context.Context, order *models.Order) error {
	_, err := r.collection.InsertOne(ctx, order)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.Wrap(apperrors.ErrDuplicateOrder, err)
	}
	return err
}

func (r *mongoOrderRepo) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *mongoOrderRepo) SetPaymentStatus(ctx context.Context, orderID, status, expected string) (bool, string, error) {
	filter := bson.M{"_id": orderID, "payment_status": expected}
	update := bson.M{"$set": bson.M{
		"payment_status": status,
		"updated_at":     time.Now().UTC(),
	}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, "", err
	}
	if res.MatchedCount == 1 {
		return true, status, nil
	}
	// Condition failed; report what is actually stored.
	order, err := r.FindByID(ctx, orderID)
	if err != nil {
		return false, "", err
	}
	return false, order.PaymentStatus, nil
}
