package repositories

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"productapi/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
// It honors the same filter, ordering and not-found semantics as the GORM
// implementation, which makes it usable as a drop-in for tests.
type MockProductRepository struct {
	products map[int64]models.Product
	nextID   int64
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[int64]models.Product),
		nextID:   1,
	}
}

// Create adds a new product, assigning the next sequential id.
func (r *MockProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product.ID = r.nextID
	r.nextID++
	r.products[product.ID] = *product
	return nil
}

// List returns one page of products matching the filter, ordered by id.
func (r *MockProductRepository) List(_ context.Context, filter models.ProductFilter) (*ProductPage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if matchesFilter(p, filter) {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	page := &ProductPage{
		Products: []models.Product{},
		Total:    int64(len(matched)),
		Page:     filter.Page,
		Limit:    filter.Limit,
	}
	if page.Total > 0 {
		page.TotalPages = int(math.Ceil(float64(page.Total) / float64(filter.Limit)))
	}

	offset := filter.Offset()
	if offset < len(matched) {
		end := offset + filter.Limit
		if end > len(matched) {
			end = len(matched)
		}
		page.Products = matched[offset:end]
	}
	return page, nil
}

// GetByID returns a product by its id.
func (r *MockProductRepository) GetByID(_ context.Context, id int64) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &product, nil
}

// Update merges the patch onto the stored row under the write lock, mirroring
// the transactional read-then-write of the GORM implementation.
func (r *MockProductRepository) Update(_ context.Context, id int64, patch models.ProductInput) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}

	merged, err := models.MergeProduct(existing, patch)
	if err != nil {
		return nil, err
	}
	merged.UpdatedAt = time.Now()

	r.products[id] = *merged
	return merged, nil
}

// Delete removes a product by its id.
func (r *MockProductRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func matchesFilter(p models.Product, filter models.ProductFilter) bool {
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	if filter.MinPrice != nil && p.Price < *filter.MinPrice {
		return false
	}
	if filter.MaxPrice != nil && p.Price > *filter.MaxPrice {
		return false
	}
	return true
}
