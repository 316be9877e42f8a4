package models

import "time"

// Payment providers.
const (
	ProviderChapa   = "CHAPA"
	ProviderArifPay = "ARIFPAY"
)

// PaymentIntent records one attempt to collect payment for an order.
//
// TxRef is the correlation id linking the initiation to its webhook or
// verification result. For Chapa it is generated locally before the
// outbound call so the record exists by the time the provider can call
// back; for ArifPay the provider assigns a session id on the initiation
// response, stored in ProviderTxID.
//
// At most one non-FAILED intent may exist per order; the repository
// enforces this with a conditional insert.
type PaymentIntent struct {
	TxRef        string    `bson:"_id" json:"txRef"`
	OrderID      string    `bson:"order_id" json:"orderId"`
	Provider     string    `bson:"provider" json:"provider"`
	Amount       float64   `bson:"amount" json:"amount"`
	Currency     string    `bson:"currency" json:"currency"`
	ProviderTxID string    `bson:"provider_tx_id,omitempty" json:"providerTxId,omitempty"`
	CheckoutURL  string    `bson:"checkout_url,omitempty" json:"checkoutUrl,omitempty"`
	Status       string    `bson:"status" json:"status"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}
