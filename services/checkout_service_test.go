package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/agusmuss/Ecom-Next/models"
	"github.com/agusmuss/Ecom-Next/repository"
	"github.com/agusmuss/Ecom-Next/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

// --- mocks ---

type mockCartStore struct {
	carts map[string]*models.Cart
	idem  map[string]string
}

func newMockCartStore() *mockCartStore {
	return &mockCartStore{carts: map[string]*models.Cart{}, idem: map[string]string{}}
}

func (m *mockCartStore) GetCart(_ context.Context, userID string) (*models.Cart, error) {
	return m.carts[userID], nil
}

func (m *mockCartStore) GetIdempotency(_ context.Context, key string) (string, error) {
	return m.idem[key], nil
}

func (m *mockCartStore) SetIdempotency(_ context.Context, key, value string, _ time.Duration) error {
	m.idem[key] = value
	return nil
}

type mockProductRepo struct {
	products map[uuid.UUID]*models.Product
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: map[uuid.UUID]*models.Product{}}
}

func (m *mockProductRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) FindAll(_ context.Context, _, _ int64) ([]models.Product, error) {
	var out []models.Product
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockProductRepo) Create(_ context.Context, p *models.Product) error {
	m.products[p.ID] = p
	return nil
}

func (m *mockProductRepo) Update(_ context.Context, id uuid.UUID, _ map[string]interface{}) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (m *mockProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.products, id)
	return nil
}

type fakeSessionCreator struct {
	items  []services.CheckoutItem
	userID string
	calls  int
}

func (f *fakeSessionCreator) CreateCheckoutSession(items []services.CheckoutItem, userID, _ string) (*stripe.CheckoutSession, error) {
	f.items = items
	f.userID = userID
	f.calls++
	return &stripe.CheckoutSession{ID: "cs_9", URL: "https://checkout.example.com/cs_9"}, nil
}

// --- tests ---

func TestCheckout_BuildsSessionFromCart(t *testing.T) {
	carts := newMockCartStore()
	products := newMockProductRepo()
	creator := &fakeSessionCreator{}
	svc := services.NewCheckoutService(carts, products, creator, "http://localhost:3000", zap.NewNop())

	productID := uuid.New()
	products.products[productID] = &models.Product{ID: productID, StripePriceID: "price_A"}
	carts.carts["user-1"] = &models.Cart{
		UserID: "user-1",
		Items:  []models.CartItem{{ProductID: productID, Quantity: 3}},
	}

	url, err := svc.Checkout(context.Background(), "user-1", "")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example.com/cs_9", url)
	assert.Equal(t, "user-1", creator.userID)
	require.Len(t, creator.items, 1)
	assert.Equal(t, "price_A", creator.items[0].PriceID)
	assert.Equal(t, int64(3), creator.items[0].Quantity)
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc := services.NewCheckoutService(newMockCartStore(), newMockProductRepo(), &fakeSessionCreator{}, "", zap.NewNop())

	_, err := svc.Checkout(context.Background(), "user-1", "")
	assert.ErrorIs(t, err, services.ErrCartEmpty)
}

func TestCheckout_SkipsUnknownAndUnpricedProducts(t *testing.T) {
	carts := newMockCartStore()
	products := newMockProductRepo()
	svc := services.NewCheckoutService(carts, products, &fakeSessionCreator{}, "", zap.NewNop())

	unpriced := uuid.New()
	products.products[unpriced] = &models.Product{ID: unpriced}
	carts.carts["user-1"] = &models.Cart{
		UserID: "user-1",
		Items: []models.CartItem{
			{ProductID: uuid.New(), Quantity: 1},
			{ProductID: unpriced, Quantity: 1},
		},
	}

	_, err := svc.Checkout(context.Background(), "user-1", "")
	assert.ErrorIs(t, err, services.ErrNothingPurchasable)
}

func TestCheckout_IdempotencyKeyReturnsExistingSession(t *testing.T) {
	carts := newMockCartStore()
	products := newMockProductRepo()
	creator := &fakeSessionCreator{}
	svc := services.NewCheckoutService(carts, products, creator, "", zap.NewNop())

	productID := uuid.New()
	products.products[productID] = &models.Product{ID: productID, StripePriceID: "price_A"}
	carts.carts["user-1"] = &models.Cart{
		UserID: "user-1",
		Items:  []models.CartItem{{ProductID: productID, Quantity: 1}},
	}

	first, err := svc.Checkout(context.Background(), "user-1", "idem-1")
	require.NoError(t, err)
	second, err := svc.Checkout(context.Background(), "user-1", "idem-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, creator.calls, "retried checkout must not create a second session")
}
