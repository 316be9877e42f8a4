package models

import "encoding/json"

// ChapaWebhook is the body Chapa posts to the webhook endpoint. The
// signature travels in the Chapa-Signature header, computed over the raw
// request body, so the struct carries no signature field. Amount is a
// json.Number because deliveries have carried it both quoted and bare.
type ChapaWebhook struct {
	Event       string      `json:"event"`
	TxRef       string      `json:"tx_ref" binding:"required"`
	RefID       string      `json:"ref_id"`
	Status      string      `json:"status" binding:"required"`
	Amount      json.Number `json:"amount"`
	Currency    string      `json:"currency"`
	ChargedAt   string      `json:"charged_at"`
	PaymentType string      `json:"payment_method"`
}

// ArifPayNotification is the body ArifPay posts on session completion.
// The signature field signs the canonical form of the remaining fields.
type ArifPayNotification struct {
	SessionID         string  `json:"sessionId" binding:"required"`
	TransactionID     string  `json:"transactionId"`
	TransactionStatus string  `json:"transactionStatus" binding:"required"`
	TotalAmount       float64 `json:"totalAmount"`
	Phone             string  `json:"phone"`
	NotificationURL   string  `json:"notificationUrl"`
	Signature         string  `json:"signature"`
}
