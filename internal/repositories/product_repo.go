package repositories

import (
	"context"
	"errors"

	"productapi/internal/models"
)

// ErrNotFound is returned when no row matches the requested product id.
var ErrNotFound = errors.New("product not found")

// ProductPage bundles one page of products with its pagination metadata.
// Total always reflects the same predicates the page was drawn with.
type ProductPage struct {
	Products   []models.Product
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	List(ctx context.Context, filter models.ProductFilter) (*ProductPage, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	// Update performs an atomic read-then-write: it loads the current row,
	// merges the patch through the entity factory and persists the result,
	// all inside one transaction.
	Update(ctx context.Context, id int64, patch models.ProductInput) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
}
