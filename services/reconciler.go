package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agusmuss/Ecom-Next/models"
	"github.com/agusmuss/Ecom-Next/repository"

	"go.uber.org/zap"
)

// ErrStoreUnavailable signals a transient store failure. The webhook
// controller answers 5xx on it so Stripe redelivers the event.
var ErrStoreUnavailable = errors.New("store unavailable")

// OrderReconciler turns a completed checkout session into an order and the
// matching stock decrements, inside one atomic store transaction.
type OrderReconciler struct {
	store  repository.Store
	logger *zap.Logger
}

func NewOrderReconciler(store repository.Store, logger *zap.Logger) *OrderReconciler {
	return &OrderReconciler{store: store, logger: logger}
}

// Reconcile processes a verified checkout-completion event. It is safe to
// call any number of times for the same session: only the first successful
// run creates the order and decrements stock. The returned bool reports
// whether this call created the order.
//
// The transaction body has no side effects outside the store, so the store
// may re-run it freely on write conflicts.
func (r *OrderReconciler) Reconcile(ctx context.Context, event models.CheckoutEvent) (bool, error) {
	created := false

	err := r.store.RunTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		created = false

		_, err := tx.GetOrder(ctx, event.SessionID)
		if err == nil {
			r.logger.Info("Order already reconciled, skipping",
				zap.String("session_id", event.SessionID),
			)
			return nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		var items []models.OrderItem
		for _, line := range event.Items {
			if line.PriceID == "" {
				continue
			}

			product, err := tx.FindProductByPriceID(ctx, line.PriceID)
			if errors.Is(err, repository.ErrNotFound) {
				// A catalog/price mismatch must not block payment
				// settlement; drop the line and leave stock untouched.
				r.logger.Warn("No product for price, dropping line item",
					zap.String("session_id", event.SessionID),
					zap.String("price_id", line.PriceID),
				)
				continue
			}
			if err != nil {
				return err
			}

			nextStock := product.Stock - line.Quantity
			if nextStock < 0 {
				nextStock = 0
			}
			if err := tx.SetProductStock(ctx, product.ID, nextStock); err != nil {
				return err
			}

			title := product.Title
			if title == "" {
				title = line.ProductName
			}
			if title == "" {
				title = "Product"
			}

			items = append(items, models.OrderItem{
				ProductID:     product.ID,
				Title:         title,
				Quantity:      line.Quantity,
				Price:         float64(line.UnitAmount) / 100,
				Currency:      normalizeCurrency(line.Currency),
				StripePriceID: line.PriceID,
			})
		}

		status := event.PaymentStatus
		if status == "" {
			status = "paid"
		}

		order := &models.Order{
			SessionID: event.SessionID,
			UserID:    event.UserID,
			UserEmail: event.CustomerEmail,
			Items:     items,
			Total:     float64(event.AmountTotal) / 100,
			Currency:  normalizeCurrency(event.Currency),
			Status:    status,
			CreatedAt: time.Now().UTC(),
		}

		if err := tx.PutOrder(ctx, order); err != nil {
			return err
		}
		if event.UserID != "" {
			if err := tx.PutUserOrder(ctx, event.UserID, order); err != nil {
				return err
			}
		}

		created = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: reconcile session %s: %v", ErrStoreUnavailable, event.SessionID, err)
	}
	return created, nil
}

// normalizeCurrency upper-cases an ISO currency code, falling back to EUR
// when the provider omitted it.
func normalizeCurrency(code string) string {
	if code == "" {
		code = "eur"
	}
	return strings.ToUpper(code)
}
