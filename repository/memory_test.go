package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/agusmuss/Ecom-Next/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunTransaction_AppliesStagedWrites(t *testing.T) {
	store := NewMemoryStore()
	productID := uuid.New()
	store.SeedProduct(models.Product{ID: productID, Stock: 5, StripePriceID: "price_X"})

	err := store.RunTransaction(context.Background(), func(ctx context.Context, tx Tx) error {
		product, err := tx.FindProductByPriceID(ctx, "price_X")
		if err != nil {
			return err
		}
		if err := tx.SetProductStock(ctx, product.ID, 4); err != nil {
			return err
		}
		return tx.PutOrder(ctx, &models.Order{SessionID: "cs_t", Status: "paid"})
	})
	require.NoError(t, err)

	product, _ := store.Product(productID)
	assert.Equal(t, 4, product.Stock)
	_, ok := store.Order("cs_t")
	assert.True(t, ok)
}

func TestRunTransaction_ErrorDiscardsStagedWrites(t *testing.T) {
	store := NewMemoryStore()
	productID := uuid.New()
	store.SeedProduct(models.Product{ID: productID, Stock: 5})

	boom := errors.New("boom")
	err := store.RunTransaction(context.Background(), func(ctx context.Context, tx Tx) error {
		if err := tx.SetProductStock(ctx, productID, 0); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	product, _ := store.Product(productID)
	assert.Equal(t, 5, product.Stock, "failed transaction must leave no trace")
}

func TestRunTransaction_RetriesOnStaleReadSet(t *testing.T) {
	store := NewMemoryStore()
	productID := uuid.New()
	store.SeedProduct(models.Product{ID: productID, Stock: 5, StripePriceID: "price_X"})

	attempts := 0
	err := store.RunTransaction(context.Background(), func(ctx context.Context, tx Tx) error {
		attempts++
		product, err := tx.FindProductByPriceID(ctx, "price_X")
		if err != nil {
			return err
		}
		if attempts == 1 {
			// Simulate a concurrent catalog edit between read and commit.
			store.SeedProduct(models.Product{ID: productID, Stock: 10, StripePriceID: "price_X"})
		}
		return tx.SetProductStock(ctx, product.ID, product.Stock-1)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts, "stale read set must re-run the transaction body")

	product, _ := store.Product(productID)
	assert.Equal(t, 9, product.Stock, "retry must see the concurrent write")
}
