package repositories

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"productapi/internal/models"
	"productapi/pkg/logging"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db  *gorm.DB
	log *logging.Logger
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB, log *logging.Logger) *GORMProductRepository {
	return &GORMProductRepository{
		db:  db,
		log: log,
	}
}

// applyFilter appends the WHERE fragments for the supplied filter in a fixed
// order: search, then minimum price, then maximum price. Both the count query
// and the row query go through this same chain, so the reported total always
// matches the population the page is drawn from. All values are bound
// parameters, never interpolated.
func applyFilter(tx *gorm.DB, filter models.ProductFilter) *gorm.DB {
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		// LOWER/LIKE instead of ILIKE so the query behaves the same on
		// sqlite and postgres.
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if filter.MinPrice != nil {
		tx = tx.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		tx = tx.Where("price <= ?", *filter.MaxPrice)
	}
	return tx
}

// Create inserts a new product row.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	start := time.Now()
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		r.log.Error("failed to insert product", logging.Fields{
			"operation":   "Create",
			"productName": product.Name,
			"error":       err.Error(),
		})
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.log.Info("product inserted", logging.Fields{
		"operation": "Create",
		"productId": product.ID,
		"duration":  time.Since(start).String(),
	})
	return nil
}

// List returns one page of products matching the filter, with pagination
// metadata. Count and row fetch run inside a single transaction so they see a
// consistent snapshot where the store provides one.
func (r *GORMProductRepository) List(ctx context.Context, filter models.ProductFilter) (*ProductPage, error) {
	start := time.Now()
	page := &ProductPage{
		Products: []models.Product{},
		Page:     filter.Page,
		Limit:    filter.Limit,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scoped := applyFilter(tx.Model(&models.Product{}), filter)

		if err := scoped.Count(&page.Total).Error; err != nil {
			return fmt.Errorf("failed to count products: %w", err)
		}
		// id ASC keeps pages stable across repeated calls.
		if err := scoped.Order("id ASC").Offset(filter.Offset()).Limit(filter.Limit).Find(&page.Products).Error; err != nil {
			return fmt.Errorf("failed to fetch product page: %w", err)
		}
		return nil
	})
	if err != nil {
		r.log.Error("failed to list products", logging.Fields{
			"operation": "List",
			"page":      filter.Page,
			"limit":     filter.Limit,
			"error":     err.Error(),
		})
		return nil, err
	}

	if page.Total > 0 {
		page.TotalPages = int(math.Ceil(float64(page.Total) / float64(filter.Limit)))
	}

	r.log.Info("products listed", logging.Fields{
		"operation": "List",
		"count":     len(page.Products),
		"total":     page.Total,
		"duration":  time.Since(start).String(),
	})
	return page, nil
}

// GetByID retrieves a single product by its id.
func (r *GORMProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.log.Warn("product not found", logging.Fields{
			"operation": "GetByID",
			"productId": id,
		})
		return nil, ErrNotFound
	}
	if err != nil {
		r.log.Error("failed to get product by id", logging.Fields{
			"operation": "GetByID",
			"productId": id,
			"error":     err.Error(),
		})
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return &product, nil
}

// Update loads the current row, merges the patch through the entity factory
// and writes the result, all inside one transaction. The write re-checks
// RowsAffected so a concurrent delete surfaces as ErrNotFound instead of a
// silent no-op.
func (r *GORMProductRepository) Update(ctx context.Context, id int64, patch models.ProductInput) (*models.Product, error) {
	start := time.Now()
	var updated models.Product

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Product
		if err := tx.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to read product %d: %w", id, err)
		}

		merged, err := models.MergeProduct(existing, patch)
		if err != nil {
			return err
		}
		merged.UpdatedAt = time.Now()

		res := tx.Model(&models.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
			"name":        merged.Name,
			"price":       merged.Price,
			"description": merged.Description,
			"image":       merged.Image,
			"category":    merged.Category,
			"quantity":    merged.Quantity,
			"updated_at":  merged.UpdatedAt,
		})
		if res.Error != nil {
			return fmt.Errorf("failed to update product %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		updated = *merged
		return nil
	})
	if err != nil {
		var ve *models.ValidationError
		switch {
		case errors.Is(err, ErrNotFound):
			r.log.Warn("product not found for update", logging.Fields{
				"operation": "Update",
				"productId": id,
			})
		case errors.As(err, &ve):
			r.log.Warn("product update rejected", logging.Fields{
				"operation": "Update",
				"productId": id,
				"field":     ve.Field,
			})
		default:
			r.log.Error("failed to update product", logging.Fields{
				"operation": "Update",
				"productId": id,
				"error":     err.Error(),
			})
		}
		return nil, err
	}

	r.log.Info("product updated", logging.Fields{
		"operation": "Update",
		"productId": id,
		"duration":  time.Since(start).String(),
	})
	return &updated, nil
}

// Delete removes a product by id. A missing row is reported as ErrNotFound,
// never as a storage error, so deleting an already-absent id stays idempotent.
func (r *GORMProductRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		r.log.Error("failed to delete product", logging.Fields{
			"operation": "Delete",
			"productId": id,
			"error":     res.Error.Error(),
		})
		return fmt.Errorf("failed to delete product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		r.log.Warn("product not found for deletion", logging.Fields{
			"operation": "Delete",
			"productId": id,
		})
		return ErrNotFound
	}

	r.log.Info("product deleted", logging.Fields{
		"operation": "Delete",
		"productId": id,
	})
	return nil
}
