package services

import (
	"context"
	"errors"
	"time"

	"github.com/agusmuss/Ecom-Next/models"
	"github.com/agusmuss/Ecom-Next/repository"

	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

var (
	// ErrCartEmpty means there is nothing to check out.
	ErrCartEmpty = errors.New("cart is empty")
	// ErrNothingPurchasable means no cart item maps to a sellable price.
	ErrNothingPurchasable = errors.New("no purchasable items in cart")
)

const idempotencyTTL = 24 * time.Hour

// SessionCreator is the slice of StripeService checkout needs.
type SessionCreator interface {
	CreateCheckoutSession(items []CheckoutItem, userID, appURL string) (*stripe.CheckoutSession, error)
}

// CartStore is the slice of the cart repository checkout needs.
type CartStore interface {
	GetCart(ctx context.Context, userID string) (*models.Cart, error)
	GetIdempotency(ctx context.Context, key string) (string, error)
	SetIdempotency(ctx context.Context, key, value string, ttl time.Duration) error
}

// CheckoutService turns a user's cart into a hosted checkout session.
type CheckoutService struct {
	carts    CartStore
	products repository.ProductRepo
	stripe   SessionCreator
	appURL   string
	logger   *zap.Logger
}

func NewCheckoutService(carts CartStore, products repository.ProductRepo, stripe SessionCreator, appURL string, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{carts: carts, products: products, stripe: stripe, appURL: appURL, logger: logger}
}

// Checkout builds a checkout session from the user's cart and returns the
// hosted payment URL. A non-empty idempotencyKey makes retried requests
// return the URL of the session already created.
func (s *CheckoutService) Checkout(ctx context.Context, userID, idempotencyKey string) (string, error) {
	if idempotencyKey != "" {
		if url, err := s.carts.GetIdempotency(ctx, idempotencyKey); err == nil && url != "" {
			return url, nil
		}
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return "", err
	}
	if cart == nil || len(cart.Items) == 0 {
		return "", ErrCartEmpty
	}

	var items []CheckoutItem
	for _, item := range cart.Items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.logger.Warn("Cart references unknown product, skipping",
					zap.String("user_id", userID),
					zap.String("product_id", item.ProductID.String()),
				)
				continue
			}
			return "", err
		}
		if product.StripePriceID == "" {
			s.logger.Warn("Product has no price, skipping",
				zap.String("product_id", product.ID.String()),
			)
			continue
		}
		items = append(items, CheckoutItem{
			PriceID:  product.StripePriceID,
			Quantity: int64(item.Quantity),
		})
	}
	if len(items) == 0 {
		return "", ErrNothingPurchasable
	}

	session, err := s.stripe.CreateCheckoutSession(items, userID, s.appURL)
	if err != nil {
		return "", err
	}

	if idempotencyKey != "" {
		if err := s.carts.SetIdempotency(ctx, idempotencyKey, session.URL, idempotencyTTL); err != nil {
			s.logger.Warn("Failed to record checkout idempotency key", zap.Error(err))
		}
	}

	s.logger.Info("Checkout session created",
		zap.String("user_id", userID),
		zap.String("session_id", session.ID),
	)
	return session.URL, nil
}
