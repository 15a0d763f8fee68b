package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/agusmuss/Ecom-Next/models"
	"github.com/agusmuss/Ecom-Next/repository"
	"github.com/agusmuss/Ecom-Next/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newReconciler(t *testing.T) (*services.OrderReconciler, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	return services.NewOrderReconciler(store, zap.NewNop()), store
}

func seedWidget(store *repository.MemoryStore, stock int) uuid.UUID {
	id := uuid.New()
	store.SeedProduct(models.Product{
		ID:            id,
		Title:         "Widget",
		Price:         15,
		Currency:      "EUR",
		Stock:         stock,
		StripePriceID: "price_A",
	})
	return id
}

func widgetEvent(qty int) models.CheckoutEvent {
	return models.CheckoutEvent{
		SessionID: "cs_1",
		Items: []models.CheckoutLineItem{
			{PriceID: "price_A", Quantity: qty, UnitAmount: 1500, Currency: "eur"},
		},
		AmountTotal:   int64(qty) * 1500,
		Currency:      "eur",
		PaymentStatus: "paid",
	}
}

func TestReconcile_CreatesOrderAndDecrementsStock(t *testing.T) {
	reconciler, store := newReconciler(t)
	productID := seedWidget(store, 10)

	created, err := reconciler.Reconcile(context.Background(), widgetEvent(2))
	require.NoError(t, err)
	assert.True(t, created)

	order, ok := store.Order("cs_1")
	require.True(t, ok)
	assert.Equal(t, "cs_1", order.SessionID)
	assert.Equal(t, 30.0, order.Total)
	assert.Equal(t, "EUR", order.Currency)
	assert.Equal(t, "paid", order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, productID, order.Items[0].ProductID)
	assert.Equal(t, "Widget", order.Items[0].Title)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, 15.0, order.Items[0].Price)
	assert.Equal(t, "EUR", order.Items[0].Currency)

	product, _ := store.Product(productID)
	assert.Equal(t, 8, product.Stock)
}

func TestReconcile_SecondDeliveryIsNoOp(t *testing.T) {
	reconciler, store := newReconciler(t)
	productID := seedWidget(store, 10)

	created, err := reconciler.Reconcile(context.Background(), widgetEvent(2))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = reconciler.Reconcile(context.Background(), widgetEvent(2))
	require.NoError(t, err)
	assert.False(t, created)

	assert.Equal(t, 1, store.OrderCount())
	product, _ := store.Product(productID)
	assert.Equal(t, 8, product.Stock, "stock must only be decremented once")
}

func TestReconcile_StockFloorsAtZero(t *testing.T) {
	reconciler, store := newReconciler(t)
	productID := seedWidget(store, 2)

	_, err := reconciler.Reconcile(context.Background(), widgetEvent(5))
	require.NoError(t, err)

	product, _ := store.Product(productID)
	assert.Equal(t, 0, product.Stock, "oversold stock floors at zero, never negative")
}

func TestReconcile_DropsUnresolvableLineItems(t *testing.T) {
	reconciler, store := newReconciler(t)
	productID := seedWidget(store, 10)

	event := models.CheckoutEvent{
		SessionID: "cs_2",
		Items: []models.CheckoutLineItem{
			{PriceID: "price_A", Quantity: 1, UnitAmount: 1500, Currency: "eur"},
			{PriceID: "price_missing", Quantity: 3, UnitAmount: 900, Currency: "eur"},
		},
		AmountTotal: 4200,
		Currency:    "eur",
	}

	created, err := reconciler.Reconcile(context.Background(), event)
	require.NoError(t, err)
	assert.True(t, created)

	order, ok := store.Order("cs_2")
	require.True(t, ok)
	require.Len(t, order.Items, 1, "unresolvable price is silently omitted")
	assert.Equal(t, productID, order.Items[0].ProductID)

	product, _ := store.Product(productID)
	assert.Equal(t, 9, product.Stock)
}

func TestReconcile_DualWriteForKnownUser(t *testing.T) {
	reconciler, store := newReconciler(t)
	seedWidget(store, 10)

	event := widgetEvent(1)
	event.UserID = "user-42"
	event.CustomerEmail = "buyer@example.com"

	_, err := reconciler.Reconcile(context.Background(), event)
	require.NoError(t, err)

	global, ok := store.Order("cs_1")
	require.True(t, ok)
	personal, ok := store.UserOrder("user-42", "cs_1")
	require.True(t, ok)
	assert.Equal(t, global, personal, "ledger and user history must hold the same order")
	assert.Equal(t, "buyer@example.com", global.UserEmail)
}

func TestReconcile_GuestCheckoutWritesGlobalOnly(t *testing.T) {
	reconciler, store := newReconciler(t)
	seedWidget(store, 10)

	_, err := reconciler.Reconcile(context.Background(), widgetEvent(1))
	require.NoError(t, err)

	assert.Equal(t, 1, store.OrderCount())
	assert.Equal(t, 0, store.UserOrderCount(), "no per-user write without a user id")
}

func TestReconcile_DefaultsStatusToPaid(t *testing.T) {
	reconciler, store := newReconciler(t)
	seedWidget(store, 10)

	event := widgetEvent(1)
	event.PaymentStatus = ""

	_, err := reconciler.Reconcile(context.Background(), event)
	require.NoError(t, err)

	order, _ := store.Order("cs_1")
	assert.Equal(t, "paid", order.Status)
}

func TestReconcile_TitleFallbacks(t *testing.T) {
	reconciler, store := newReconciler(t)

	untitled := uuid.New()
	store.SeedProduct(models.Product{ID: untitled, Stock: 5, StripePriceID: "price_untitled"})
	nameless := uuid.New()
	store.SeedProduct(models.Product{ID: nameless, Stock: 5, StripePriceID: "price_nameless"})

	event := models.CheckoutEvent{
		SessionID: "cs_3",
		Items: []models.CheckoutLineItem{
			{PriceID: "price_untitled", ProductName: "Provider Name", Quantity: 1, UnitAmount: 100, Currency: "eur"},
			{PriceID: "price_nameless", Quantity: 1, UnitAmount: 100, Currency: "eur"},
		},
		AmountTotal: 200,
		Currency:    "eur",
	}

	_, err := reconciler.Reconcile(context.Background(), event)
	require.NoError(t, err)

	order, _ := store.Order("cs_3")
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Provider Name", order.Items[0].Title)
	assert.Equal(t, "Product", order.Items[1].Title)
}

func TestReconcile_MissingCurrencyDefaultsToEUR(t *testing.T) {
	reconciler, store := newReconciler(t)
	seedWidget(store, 10)

	event := widgetEvent(1)
	event.Currency = ""
	event.Items[0].Currency = ""

	_, err := reconciler.Reconcile(context.Background(), event)
	require.NoError(t, err)

	order, _ := store.Order("cs_1")
	assert.Equal(t, "EUR", order.Currency)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "EUR", order.Items[0].Currency)
}

func TestReconcile_ConcurrentDeliveriesCreateOneOrder(t *testing.T) {
	reconciler, store := newReconciler(t)
	productID := seedWidget(store, 10)

	const deliveries = 8
	results := make([]bool, deliveries)

	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			created, err := reconciler.Reconcile(context.Background(), widgetEvent(2))
			assert.NoError(t, err)
			results[i] = created
		}(i)
	}
	wg.Wait()

	createdCount := 0
	for _, created := range results {
		if created {
			createdCount++
		}
	}
	assert.Equal(t, 1, createdCount, "exactly one delivery creates the order")
	assert.Equal(t, 1, store.OrderCount())

	product, _ := store.Product(productID)
	assert.Equal(t, 8, product.Stock, "racing deliveries must not double-decrement")
}
