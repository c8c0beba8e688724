package service

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/fuuti/storefront-api/internal/domain"
	"github.com/fuuti/storefront-api/internal/platform/postgres"
	"github.com/fuuti/storefront-api/internal/store"
)

// ProductService manages the catalog.
type ProductService struct {
	products *postgres.Repository[domain.Product]
}

// NewProductService creates a ProductService.
func NewProductService(db *sql.DB) *ProductService {
	return &ProductService{
		products: postgres.NewRepository[domain.Product](db, domain.ProductTable),
	}
}

// Create inserts a catalog row.
func (s *ProductService) Create(ctx context.Context, name string, price decimal.Decimal, description string, quantity int64, createdBy int64) (domain.Product, error) {
	return s.products.Save(ctx, store.Payload{
		"name":               name,
		"price":              price,
		"description":        description,
		"available_quantity": quantity,
		"created_by":         createdBy,
	}, nil)
}

// List returns products, optionally filtered by exact name, paged.
func (s *ProductService) List(ctx context.Context, name string, pageSize, page int) ([]domain.Product, error) {
	opts := postgres.FindOptions{PageSize: pageSize, Page: page}
	if name != "" {
		opts.Filter = &store.Query{Condition: "name = $1", Values: []any{name}}
	}
	return s.products.Find(ctx, opts, nil)
}
