package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/agusmuss/Ecom-Next/models"
	"github.com/agusmuss/Ecom-Next/services"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

// StripeWebhookAPI is the slice of StripeService the webhook needs.
type StripeWebhookAPI interface {
	ParseWebhook(r *http.Request) (stripe.Event, error)
	ListSessionItems(sessionID string) ([]*stripe.LineItem, error)
}

// Reconciler processes verified checkout events.
type Reconciler interface {
	Reconcile(ctx context.Context, event models.CheckoutEvent) (bool, error)
}

// WebhookController receives Stripe webhook deliveries, verifies them and
// hands completed checkout sessions to the reconciler. Any reconciliation
// failure answers 5xx so Stripe redelivers the event.
type WebhookController struct {
	Stripe     StripeWebhookAPI
	Reconciler Reconciler
	Publisher  services.Publisher // optional
	Logger     *zap.Logger
}

// StripeWebhook receives and dispatches Stripe webhook events.
func (wc *WebhookController) StripeWebhook(c *gin.Context) {
	event, err := wc.Stripe.ParseWebhook(c.Request)
	if err != nil {
		wc.Logger.Warn("Stripe webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook"})
		return
	}

	wc.Logger.Info("Processing Stripe webhook",
		zap.String("event_type", string(event.Type)),
		zap.String("event_id", event.ID),
	)

	switch event.Type {
	case "checkout.session.completed":
		wc.handleCheckoutCompleted(c, event)
	default:
		wc.Logger.Info("Unhandled webhook event type", zap.String("event_type", string(event.Type)))
		c.JSON(http.StatusOK, gin.H{"status": "received"})
	}
}

func (wc *WebhookController) handleCheckoutCompleted(c *gin.Context, event stripe.Event) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		wc.Logger.Error("Failed to unmarshal checkout session", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "received"})
		return
	}

	lineItems, err := wc.Stripe.ListSessionItems(sess.ID)
	if err != nil {
		wc.Logger.Error("Failed to list session line items",
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "line item lookup failed"})
		return
	}

	checkoutEvent := buildCheckoutEvent(&sess, lineItems)

	created, err := wc.Reconciler.Reconcile(c.Request.Context(), checkoutEvent)
	if err != nil {
		wc.Logger.Error("Reconciliation failed",
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reconciliation failed"})
		return
	}

	if created {
		wc.publishOrderEvent(checkoutEvent)
	}
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

// buildCheckoutEvent maps a Stripe session plus its line items to the
// reconciler's input, mirroring the provider's optional fields.
func buildCheckoutEvent(sess *stripe.CheckoutSession, lineItems []*stripe.LineItem) models.CheckoutEvent {
	userID := sess.Metadata["userId"]
	if userID == "" {
		userID = sess.ClientReferenceID
	}

	email := sess.CustomerEmail
	if sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
		email = sess.CustomerDetails.Email
	}

	var items []models.CheckoutLineItem
	for _, li := range lineItems {
		if li.Price == nil {
			continue
		}
		quantity := int(li.Quantity)
		if quantity < 1 {
			quantity = 1
		}
		item := models.CheckoutLineItem{
			PriceID:    li.Price.ID,
			Quantity:   quantity,
			UnitAmount: li.Price.UnitAmount,
			Currency:   string(li.Price.Currency),
		}
		if li.Price.Product != nil {
			item.ProductName = li.Price.Product.Name
		}
		items = append(items, item)
	}

	return models.CheckoutEvent{
		SessionID:     sess.ID,
		UserID:        userID,
		CustomerEmail: email,
		Items:         items,
		AmountTotal:   sess.AmountTotal,
		Currency:      string(sess.Currency),
		PaymentStatus: string(sess.PaymentStatus),
	}
}

// publishOrderEvent notifies downstream consumers about a freshly created
// order. Failures are logged only; the webhook response never depends on
// the event bus.
func (wc *WebhookController) publishOrderEvent(event models.CheckoutEvent) {
	if wc.Publisher == nil {
		return
	}

	orderEvent := models.OrderEvent{
		Type:      "order_created",
		SessionID: event.SessionID,
		UserID:    event.UserID,
		Total:     float64(event.AmountTotal) / 100,
		Currency:  event.Currency,
		ItemCount: len(event.Items),
		Timestamp: time.Now().UTC(),
	}
	data, err := json.Marshal(orderEvent)
	if err != nil {
		wc.Logger.Error("Failed to marshal order event", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wc.Publisher.Publish(ctx, event.SessionID, data); err != nil {
		wc.Logger.Error("Failed to publish order event",
			zap.String("session_id", event.SessionID),
			zap.Error(err),
		)
	}
}
