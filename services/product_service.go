package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agusmuss/Ecom-Next/models"
	aws_pkg "github.com/agusmuss/Ecom-Next/pkg/aws"
	"github.com/agusmuss/Ecom-Next/repository"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StripeProvisioner is the slice of StripeService the catalog needs:
// keeping provider products/prices in step with catalog entries.
type StripeProvisioner interface {
	CreateProductPrice(title, description string, amount float64, currency string, images []string) (string, string, error)
	UpdateProductPrice(stripeProductID, title, description string, amount *float64, currency string, images []string) (string, error)
}

type CreateProductInput struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Price       float64  `json:"price" binding:"required,gt=0"`
	Currency    string   `json:"currency"`
	Images      []string `json:"images"`
	Stock       int      `json:"stock" binding:"gte=0"`
}

type UpdateProductInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Currency    string   `json:"currency"`
	Images      []string `json:"images"`
	Stock       *int     `json:"stock"`
}

// ProductService owns catalog CRUD and keeps the payment provider's product
// and price objects in sync with the catalog.
type ProductService struct {
	repo   repository.ProductRepo
	stripe StripeProvisioner
	awsCfg sdkaws.Config
	bucket string
	logger *zap.Logger
}

func NewProductService(repo repository.ProductRepo, stripe StripeProvisioner, awsCfg sdkaws.Config, bucket string, logger *zap.Logger) *ProductService {
	return &ProductService{repo: repo, stripe: stripe, awsCfg: awsCfg, bucket: bucket, logger: logger}
}

func (s *ProductService) ListProducts(ctx context.Context, limit, skip int64) ([]models.Product, error) {
	return s.repo.FindAll(ctx, limit, skip)
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ProductService) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	currency := input.Currency
	if currency == "" {
		currency = "EUR"
	}
	currency = strings.ToUpper(currency)

	stripeProductID, stripePriceID, err := s.stripe.CreateProductPrice(
		input.Title, input.Description, input.Price, currency, input.Images)
	if err != nil {
		return nil, fmt.Errorf("stripe product provisioning failed: %w", err)
	}

	now := time.Now().UTC()
	product := &models.Product{
		ID:              uuid.New(),
		Title:           input.Title,
		Description:     input.Description,
		Price:           input.Price,
		Currency:        currency,
		Images:          input.Images,
		Stock:           input.Stock,
		StripeProductID: stripeProductID,
		StripePriceID:   stripePriceID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("stripe_price_id", stripePriceID),
	)
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	currency := input.Currency
	if currency == "" {
		currency = existing.Currency
	}
	currency = strings.ToUpper(currency)

	updates := map[string]interface{}{}
	if input.Title != "" {
		updates["title"] = input.Title
	}
	if input.Description != "" {
		updates["description"] = input.Description
	}
	if len(input.Images) > 0 {
		updates["images"] = input.Images
	}
	if input.Stock != nil {
		updates["stock"] = *input.Stock
	}
	if input.Price != nil {
		updates["price"] = *input.Price
		updates["currency"] = currency
	}

	if existing.StripeProductID != "" {
		newPriceID, err := s.stripe.UpdateProductPrice(
			existing.StripeProductID, input.Title, input.Description, input.Price, currency, input.Images)
		if err != nil {
			return nil, fmt.Errorf("stripe product update failed: %w", err)
		}
		if newPriceID != "" {
			updates["stripe_price_id"] = newPriceID
		}
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, err
		}
	}
	return s.repo.FindByID(ctx, id)
}

func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// GeneratePresignedUpload returns a presigned S3 PUT URL for a product
// image, plus the object key the client should report back.
func (s *ProductService) GeneratePresignedUpload(ctx context.Context, productID uuid.UUID, filename, contentType string, expirySeconds int64) (string, string, error) {
	if s.bucket == "" {
		return "", "", fmt.Errorf("image uploads are not configured")
	}
	if _, err := s.repo.FindByID(ctx, productID); err != nil {
		return "", "", err
	}

	key := fmt.Sprintf("products/%s/%s-%s", productID, uuid.NewString(), filename)
	url, err := aws_pkg.GeneratePresignedPutURL(ctx, s.awsCfg, s.bucket, key, contentType, expirySeconds)
	if err != nil {
		return "", "", err
	}
	return url, key, nil
}
