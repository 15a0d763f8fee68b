package services

import (
	"bytes"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/price"
	"github.com/stripe/stripe-go/v80/product"
	"github.com/stripe/stripe-go/v80/webhook"
)

type StripeService struct {
	SecretKey  string
	WebhookKey string
}

func NewStripeService(secretKey, webhookKey string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{SecretKey: secretKey, WebhookKey: webhookKey}
}

// ParseWebhook verifies the Stripe-Signature header against the shared
// signing secret and returns the decoded event.
func (s *StripeService) ParseWebhook(r *http.Request) (stripe.Event, error) {
	var event stripe.Event
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return event, err
	}
	r.Body = io.NopCloser(bytes.NewBuffer(payload))
	sigHeader := r.Header.Get("Stripe-Signature")
	return webhook.ConstructEvent(payload, sigHeader, s.WebhookKey)
}

// ListSessionItems fetches the line items of a checkout session with the
// price's product expanded, so the reconciler has a fallback title.
func (s *StripeService) ListSessionItems(sessionID string) ([]*stripe.LineItem, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(sessionID),
	}
	params.AddExpand("data.price.product")

	var items []*stripe.LineItem
	iter := session.ListLineItems(params)
	for iter.Next() {
		items = append(items, iter.LineItem())
	}
	return items, iter.Err()
}

// CheckoutItem is one cart line passed to CreateCheckoutSession.
type CheckoutItem struct {
	PriceID  string
	Quantity int64
}

// CreateCheckoutSession creates a hosted payment-mode checkout session. The
// user ID travels as the client reference so the webhook can attribute the
// order.
func (s *StripeService) CreateCheckoutSession(items []CheckoutItem, userID, appURL string) (*stripe.CheckoutSession, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, item := range items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(item.PriceID),
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(appURL + "/cart?success=true"),
		CancelURL:  stripe.String(appURL + "/cart?canceled=true"),
	}
	if userID != "" {
		params.ClientReferenceID = stripe.String(userID)
		params.AddMetadata("userId", userID)
	}
	return session.New(params)
}

// CreateProductPrice provisions a Stripe product plus a price in minor
// units and returns both IDs.
func (s *StripeService) CreateProductPrice(title, description string, amount float64, currency string, images []string) (string, string, error) {
	productParams := &stripe.ProductParams{
		Name: stripe.String(title),
	}
	if description != "" {
		productParams.Description = stripe.String(description)
	}
	if len(images) > 0 {
		productParams.Images = stripe.StringSlice(images)
	}
	prod, err := product.New(productParams)
	if err != nil {
		return "", "", err
	}

	priceID, err := s.createPrice(prod.ID, amount, currency)
	if err != nil {
		return "", "", err
	}
	return prod.ID, priceID, nil
}

// UpdateProductPrice updates the Stripe product and, when the amount
// changed, creates a fresh price (Stripe prices are immutable). Returns the
// new price ID, or "" when no new price was needed.
func (s *StripeService) UpdateProductPrice(stripeProductID, title, description string, amount *float64, currency string, images []string) (string, error) {
	productParams := &stripe.ProductParams{}
	if title != "" {
		productParams.Name = stripe.String(title)
	}
	if description != "" {
		productParams.Description = stripe.String(description)
	}
	if len(images) > 0 {
		productParams.Images = stripe.StringSlice(images)
	}
	if _, err := product.Update(stripeProductID, productParams); err != nil {
		return "", err
	}

	if amount == nil {
		return "", nil
	}
	return s.createPrice(stripeProductID, *amount, currency)
}

func (s *StripeService) createPrice(stripeProductID string, amount float64, currency string) (string, error) {
	p, err := price.New(&stripe.PriceParams{
		Product:    stripe.String(stripeProductID),
		UnitAmount: stripe.Int64(int64(math.Round(amount * 100))),
		Currency:   stripe.String(strings.ToLower(currency)),
	})
	if err != nil {
		return "", err
	}
	return p.ID, nil
}
