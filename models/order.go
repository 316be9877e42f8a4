package models

import "time"

// Payment status values shared by orders and payment intents.
// PAID and FAILED are terminal: the reconciliation engine never
// transitions a record out of them.
const (
	StatusPending = "PENDING"
	StatusPaid    = "PAID"
	StatusFailed  = "FAILED"
)

// TerminalStatuses marks the statuses no transition may leave.
var TerminalStatuses = map[string]bool{
	StatusPaid:   true,
	StatusFailed: true,
}

type OrderItem struct {
	ProductID string  `bson:"product_id" json:"productId" binding:"required"`
	Quantity  int     `bson:"quantity" json:"quantity" binding:"required,min=1"`
	UnitPrice float64 `bson:"unit_price" json:"unitPrice" binding:"min=0"`
}

type ShippingAddress struct {
	FullName string `bson:"full_name" json:"fullName"`
	Phone    string `bson:"phone" json:"phone"`
	City     string `bson:"city" json:"city"`
	SubCity  string `bson:"sub_city" json:"subCity"`
	Street   string `bson:"street" json:"street"`
	Notes    string `bson:"notes" json:"notes"`
}

// Order is the durable record of a checkout. OrderID is caller-generated
// and doubles as the idempotency key for creation. The record is only ever
// mutated by the reconciliation engine and never deleted.
type Order struct {
	OrderID         string          `bson:"_id" json:"orderId"`
	UserID          string          `bson:"user_id" json:"userId"`
	Items           []OrderItem     `bson:"items" json:"items"`
	ShippingAddress ShippingAddress `bson:"shipping_address" json:"shippingAddress"`
	TotalAmount     float64         `bson:"total_amount" json:"totalAmount"`
	PaymentStatus   string          `bson:"payment_status" json:"paymentStatus"`
	CreatedAt       time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `bson:"updated_at" json:"updatedAt"`
}

// SamePayload reports whether a creation retry carries the same order body.
// Status and timestamps are excluded: a retry arrives before the caller has
// seen either.
func (o *Order) SamePayload(other *Order) bool {
	if o.UserID != other.UserID || o.TotalAmount != other.TotalAmount {
		return false
	}
	if o.ShippingAddress != other.ShippingAddress {
		return false
	}
	if len(o.Items) != len(other.Items) {
		return false
	}
	for i := range o.Items {
		if o.Items[i] != other.Items[i] {
			return false
		}
	}
	return true
}
