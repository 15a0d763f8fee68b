package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry. Stock is only ever decremented by the order
// reconciler; all other mutations go through the admin product endpoints.
type Product struct {
	ID              uuid.UUID `json:"id" bson:"_id"`
	Title           string    `json:"title" bson:"title"`
	Description     string    `json:"description,omitempty" bson:"description,omitempty"`
	Price           float64   `json:"price" bson:"price"`
	Currency        string    `json:"currency" bson:"currency"`
	Images          []string  `json:"images,omitempty" bson:"images,omitempty"`
	Stock           int       `json:"stock" bson:"stock"`
	StripeProductID string    `json:"stripeProductId,omitempty" bson:"stripe_product_id,omitempty"`
	StripePriceID   string    `json:"stripePriceId,omitempty" bson:"stripe_price_id,omitempty"`
	CreatedAt       time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updated_at"`
}
