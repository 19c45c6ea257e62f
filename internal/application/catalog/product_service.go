package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ppm/backend/internal/domain/catalog"
	"github.com/ppm/backend/internal/domain/catmapping"
	"github.com/ppm/backend/internal/domain/shared"
)

// ProductService manages products and their per-target category mappings
type ProductService struct {
	products   catalog.ProductRepository
	categories catalog.CategoryReader
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(products catalog.ProductRepository, categories catalog.CategoryReader,
	publisher shared.EventPublisher, logger *zap.Logger) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		publisher:  publisher,
		logger:     logger,
	}
}

// CreateProduct creates a product and announces it to the sync pipeline
func (s *ProductService) CreateProduct(ctx context.Context, tenantID uuid.UUID, sku, name, description string,
	price decimal.Decimal) (*catalog.Product, error) {
	product, err := catalog.NewProduct(tenantID, sku, name, price)
	if err != nil {
		return nil, err
	}
	product.Description = description

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publish(ctx, catalog.NewProductCreatedEvent(product))

	s.logger.Info("product created",
		zap.String("tenant_id", tenantID.String()),
		zap.Int64("product_id", product.ID),
		zap.String("sku", sku),
	)
	return product, nil
}

// UpdateProduct changes a product's descriptive fields and announces the
// change
func (s *ProductService) UpdateProduct(ctx context.Context, tenantID uuid.UUID, id int64,
	name, description string, price decimal.Decimal) (*catalog.Product, error) {
	product, err := s.products.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := product.UpdateDetails(name, description, price); err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publish(ctx, catalog.NewProductUpdatedEvent(product))
	return product, nil
}

// GetProduct returns one product
func (s *ProductService) GetProduct(ctx context.Context, tenantID uuid.UUID, id int64) (*catalog.Product, error) {
	return s.products.FindByID(ctx, tenantID, id)
}

// GetCategoryMapping returns the canonical category mapping of a product for
// one target key. A product with no mapping recorded yet gets the canonical
// empty structure, without persisting anything.
func (s *ProductService) GetCategoryMapping(ctx context.Context, tenantID uuid.UUID, productID int64,
	targetKey string) (*catmapping.CategoryMapping, error) {
	product, err := s.products.FindByID(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if mapping, ok := product.CategoryMappings[targetKey]; ok && mapping != nil {
		return mapping.Clone(), nil
	}
	return catmapping.Empty(), nil
}

// SetCategorySelection replaces the category selection of a product for one
// target key. Every selected category must exist; external IDs already
// recorded for still-selected categories are kept.
func (s *ProductService) SetCategorySelection(ctx context.Context, tenantID uuid.UUID, productID int64,
	targetKey string, selected []int64, primary *int64) (*catmapping.CategoryMapping, error) {
	product, err := s.products.FindByID(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	for _, categoryID := range selected {
		if _, err := s.categories.FindByID(ctx, tenantID, categoryID); err != nil {
			return nil, err
		}
	}

	mapping := product.CategoryMappingFor(targetKey)
	if err := mapping.Select(selected, primary); err != nil {
		return nil, err
	}
	if err := product.SetCategoryMapping(targetKey, mapping); err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publish(ctx, catalog.NewProductUpdatedEvent(product))

	s.logger.Info("product category selection updated",
		zap.String("tenant_id", tenantID.String()),
		zap.Int64("product_id", productID),
		zap.String("target", targetKey),
		zap.Int("selected", len(selected)),
	)
	return mapping.Clone(), nil
}

// ResyncProduct re-announces a product so the dispatcher pushes it to all
// active targets again
func (s *ProductService) ResyncProduct(ctx context.Context, tenantID uuid.UUID, id int64) error {
	product, err := s.products.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	s.publish(ctx, catalog.NewProductUpdatedEvent(product))
	return nil
}

func (s *ProductService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish catalog events", zap.Error(err))
	}
}
