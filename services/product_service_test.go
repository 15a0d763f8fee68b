package services_test

import (
	"context"
	"testing"

	"github.com/agusmuss/Ecom-Next/services"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvisioner struct {
	created       bool
	updated       bool
	newPriceID    string
	lastAmount    *float64
	lastCurrency  string
	lastProductID string
}

func (f *fakeProvisioner) CreateProductPrice(_, _ string, _ float64, currency string, _ []string) (string, string, error) {
	f.created = true
	f.lastCurrency = currency
	return "prod_1", "price_1", nil
}

func (f *fakeProvisioner) UpdateProductPrice(stripeProductID, _, _ string, amount *float64, currency string, _ []string) (string, error) {
	f.updated = true
	f.lastProductID = stripeProductID
	f.lastAmount = amount
	f.lastCurrency = currency
	return f.newPriceID, nil
}

func TestCreateProduct_ProvisionsStripeObjects(t *testing.T) {
	repo := newMockProductRepo()
	provisioner := &fakeProvisioner{}
	svc := services.NewProductService(repo, provisioner, sdkaws.Config{}, "", zap.NewNop())

	product, err := svc.CreateProduct(context.Background(), services.CreateProductInput{
		Title: "Widget",
		Price: 15,
		Stock: 10,
	})
	require.NoError(t, err)

	assert.True(t, provisioner.created)
	assert.Equal(t, "EUR", provisioner.lastCurrency, "currency defaults to EUR")
	assert.Equal(t, "prod_1", product.StripeProductID)
	assert.Equal(t, "price_1", product.StripePriceID)
	assert.Equal(t, 10, product.Stock)

	stored, err := repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, "price_1", stored.StripePriceID)
}

func TestUpdateProduct_NewPriceOnAmountChange(t *testing.T) {
	repo := newMockProductRepo()
	provisioner := &fakeProvisioner{newPriceID: "price_2"}
	svc := services.NewProductService(repo, provisioner, sdkaws.Config{}, "", zap.NewNop())

	product, err := svc.CreateProduct(context.Background(), services.CreateProductInput{Title: "Widget", Price: 15})
	require.NoError(t, err)

	newPrice := 20.0
	_, err = svc.UpdateProduct(context.Background(), product.ID, services.UpdateProductInput{Price: &newPrice})
	require.NoError(t, err)

	assert.True(t, provisioner.updated)
	assert.Equal(t, "prod_1", provisioner.lastProductID)
	require.NotNil(t, provisioner.lastAmount)
	assert.Equal(t, 20.0, *provisioner.lastAmount)
}
