package services

import (
	"context"

	"productapi/internal/models"
	"productapi/internal/repositories"
	"productapi/pkg/logging"
	"productapi/pkg/rabbitmq"
)

// ProductService handles business logic related to products. Validation runs
// before any storage call, so invalid input never produces a partial write.
type ProductService struct {
	repo     repositories.ProductRepository
	mqClient *rabbitmq.Client
	log      *logging.Logger
}

// NewProductService creates a new ProductService. mqClient may be nil, in
// which case product events are not published.
func NewProductService(repo repositories.ProductRepository, mqClient *rabbitmq.Client, log *logging.Logger) *ProductService {
	return &ProductService{
		repo:     repo,
		mqClient: mqClient,
		log:      log,
	}
}

// CreateProduct validates the input through the entity factory and persists
// the resulting product.
func (s *ProductService) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	product, err := models.NewProduct(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.publishEvent("product.created", product)
	return product, nil
}

// ListProducts normalizes and validates the raw filter, then fetches the
// matching page.
func (s *ProductService) ListProducts(ctx context.Context, in models.FilterInput) (*repositories.ProductPage, error) {
	filter, err := models.NewProductFilter(in)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, *filter)
}

// GetProductByID retrieves a single product by its id.
func (s *ProductService) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProduct applies the patch through the repository's atomic
// read-then-write and returns the post-update row.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, patch models.ProductInput) (*models.Product, error) {
	product, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.publishEvent("product.updated", product)
	return product, nil
}

// DeleteProduct deletes a product by its id.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publishEvent("product.deleted", &models.Product{ID: id})
	return nil
}

// publishEvent emits a product lifecycle event when a broker is configured.
// Publish failures are logged and never fail the request.
func (s *ProductService) publishEvent(event string, product *models.Product) {
	if s.mqClient == nil {
		return
	}

	payload := map[string]interface{}{
		"productId": product.ID,
	}
	if product.Name != "" {
		payload["productName"] = product.Name
	}

	if err := s.mqClient.PublishProductEvent(event, payload); err != nil {
		s.log.Warn("failed to publish product event", logging.Fields{
			"event":     event,
			"productId": product.ID,
			"error":     err.Error(),
		})
	}
}
