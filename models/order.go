package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is a point-in-time snapshot of a purchased product. Title and
// price are copied from the catalog at reconciliation time so later catalog
// edits never rewrite order history.
type OrderItem struct {
	ProductID     uuid.UUID `json:"product_id" bson:"product_id"`
	Title         string    `json:"title" bson:"title"`
	Quantity      int       `json:"quantity" bson:"quantity"`
	Price         float64   `json:"price" bson:"price"`
	Currency      string    `json:"currency" bson:"currency"`
	StripePriceID string    `json:"stripe_price_id" bson:"stripe_price_id"`
}

// Order is created exactly once per checkout session. The session ID doubles
// as the document key, which is what makes re-delivered webhooks a no-op.
type Order struct {
	SessionID string      `json:"session_id" bson:"_id"`
	UserID    string      `json:"user_id,omitempty" bson:"user_id,omitempty"`
	UserEmail string      `json:"user_email,omitempty" bson:"user_email,omitempty"`
	Items     []OrderItem `json:"items" bson:"items"`
	Total     float64     `json:"total" bson:"total"`
	Currency  string      `json:"currency" bson:"currency"`
	Status    string      `json:"status" bson:"status"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
}
