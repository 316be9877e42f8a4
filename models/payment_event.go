package models

import "time"

// PaymentEvent is the message published to Kafka after a terminal
// reconciliation transition.
type PaymentEvent struct {
	Type      string    `json:"type"` // "payment_paid" or "payment_failed"
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	TxRef     string    `json:"tx_ref"`
	Provider  string    `json:"provider"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"` // UTC event time
}
