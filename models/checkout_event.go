package models

import "time"

// CheckoutLineItem is one purchased line as reported by the payment
// provider. UnitAmount is in minor units (cents).
type CheckoutLineItem struct {
	PriceID     string `json:"price_id"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitAmount  int64  `json:"unit_amount"`
	Currency    string `json:"currency"`
}

// CheckoutEvent is a verified "checkout session completed" payload handed to
// the reconciler. Signature verification happens in the webhook controller;
// by the time a CheckoutEvent exists it is trusted.
type CheckoutEvent struct {
	SessionID     string             `json:"session_id"`
	UserID        string             `json:"user_id,omitempty"`
	CustomerEmail string             `json:"customer_email,omitempty"`
	Items         []CheckoutLineItem `json:"items"`
	AmountTotal   int64              `json:"amount_total"`
	Currency      string             `json:"currency"`
	PaymentStatus string             `json:"payment_status,omitempty"`
}

// OrderEvent is published after a checkout session is reconciled for the
// first time, for downstream consumers (notifications, analytics).
type OrderEvent struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id,omitempty"`
	Total     float64   `json:"total"`
	Currency  string    `json:"currency"`
	ItemCount int       `json:"item_count"`
	Timestamp time.Time `json:"timestamp"`
}
