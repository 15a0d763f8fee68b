package repository

import (
	"context"
	"errors"

	"github.com/agusmuss/Ecom-Next/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("not found")

// Tx exposes the capabilities available inside one atomic transaction. The
// reconciler only ever needs these five operations, so the interface stays
// independent of the underlying store's query language.
type Tx interface {
	// GetOrder reads the order keyed by session ID, or ErrNotFound.
	GetOrder(ctx context.Context, sessionID string) (*models.Order, error)
	// FindProductByPriceID resolves a Stripe price ID to at most one
	// product, or ErrNotFound.
	FindProductByPriceID(ctx context.Context, priceID string) (*models.Product, error)
	// SetProductStock stages a stock write for the given product.
	SetProductStock(ctx context.Context, productID uuid.UUID, stock int) error
	// PutOrder writes the order into the global ledger.
	PutOrder(ctx context.Context, order *models.Order) error
	// PutUserOrder writes a copy of the order into the user's history.
	PutUserOrder(ctx context.Context, userID string, order *models.Order) error
}

// Store supplies the transaction primitive the reconciler relies on.
// Implementations must give fn snapshot reads and abort the commit when a
// concurrent writer touched a document fn read; transient conflicts are
// retried by the implementation, so a non-nil error from RunTransaction is
// either fn's own error or an exhausted/unavailable store.
type Store interface {
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// ProductRepo defines the catalog operations used by the product API.
// Plain Go types only, so adapters can be swapped.
type ProductRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindAll(ctx context.Context, limit, skip int64) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderRepo is the read side of order history.
type OrderRepo interface {
	FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
	FindByUser(ctx context.Context, userID string) ([]models.Order, error)
}
