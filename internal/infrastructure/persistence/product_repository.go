package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ppm/backend/internal/domain/catalog"
	"github.com/ppm/backend/internal/infrastructure/persistence/models"
)

// GormProductRepository implements ProductRepository using GORM. Category
// mappings stored by older writers are normalized to the canonical structure
// on every read; unreadable mapping values degrade to the empty structure
// with a warning instead of failing the read.
type GormProductRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB, logger *zap.Logger) *GormProductRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormProductRepository{db: db, logger: logger}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, tenantID uuid.UUID, id int64) (*catalog.Product, error) {
	var model models.ProductModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, err
	}
	return r.toDomainProduct(&model), nil
}

// FindBySKU finds a product by its tenant-unique SKU
func (r *GormProductRepository) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*catalog.Product, error) {
	var model models.ProductModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND sku = ?", tenantID, sku).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, err
	}
	return r.toDomainProduct(&model), nil
}

// FindByCategory finds all products whose category mappings select the given
// internal category on any target. Selection lives inside the JSON mapping
// column, so the filter runs over decoded mappings rather than in SQL.
func (r *GormProductRepository) FindByCategory(ctx context.Context, tenantID uuid.UUID, categoryID int64) ([]catalog.Product, error) {
	var productModels []models.ProductModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("id ASC").
		Find(&productModels).Error
	if err != nil {
		return nil, err
	}

	var matched []catalog.Product
	for i := range productModels {
		product := r.toDomainProduct(&productModels[i])
		for _, mapping := range product.CategoryMappings {
			if mapping.IsSelected(categoryID) {
				matched = append(matched, *product)
				break
			}
		}
	}
	return matched, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	var model models.ProductModel
	if err := model.FromDomain(product); err != nil {
		return err
	}

	if model.ID == 0 {
		if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
			return err
		}
		product.ID = model.ID
		return nil
	}
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete deletes a product
func (r *GormProductRepository) Delete(ctx context.Context, tenantID uuid.UUID, id int64) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.ProductModel{}).Error
}

func (r *GormProductRepository) toDomainProduct(model *models.ProductModel) *catalog.Product {
	product := model.ToDomain()
	mappings, err := model.DecodeCategoryMappings()
	if err != nil {
		r.logger.Warn("degraded unreadable category mappings",
			zap.Int64("product_id", model.ID),
			zap.String("tenant_id", model.TenantID.String()),
			zap.Error(err))
	}
	product.CategoryMappings = mappings
	return product
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
