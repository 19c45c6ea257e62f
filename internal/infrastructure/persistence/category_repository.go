package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ppm/backend/internal/domain/catalog"
	"github.com/ppm/backend/internal/infrastructure/persistence/models"
)

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, tenantID uuid.UUID, id int64) (*catalog.Category, error) {
	var model models.CategoryModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrCategoryNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a category by its tenant-unique code
func (r *GormCategoryRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*catalog.Category, error) {
	var model models.CategoryModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrCategoryNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindChildren finds the direct children of a category
func (r *GormCategoryRepository) FindChildren(ctx context.Context, tenantID uuid.UUID, parentID int64) ([]catalog.Category, error) {
	var categoryModels []models.CategoryModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND parent_id = ?", tenantID, parentID).
		Order("position ASC, id ASC").
		Find(&categoryModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainCategories(categoryModels), nil
}

// FindSubtree finds a category and all its descendants. The result lists
// parents before children, one tree level per query, so callers can delete
// in reverse order without breaking parent references.
func (r *GormCategoryRepository) FindSubtree(ctx context.Context, tenantID uuid.UUID, rootID int64) ([]catalog.Category, error) {
	root, err := r.FindByID(ctx, tenantID, rootID)
	if err != nil {
		return nil, err
	}

	subtree := []catalog.Category{*root}
	frontier := []int64{rootID}

	for len(frontier) > 0 {
		var levelModels []models.CategoryModel
		err := r.db.WithContext(ctx).
			Where("tenant_id = ? AND parent_id IN ?", tenantID, frontier).
			Order("position ASC, id ASC").
			Find(&levelModels).Error
		if err != nil {
			return nil, err
		}

		frontier = frontier[:0]
		for i := range levelModels {
			subtree = append(subtree, *levelModels[i].ToDomain())
			frontier = append(frontier, levelModels[i].ID)
		}
	}
	return subtree, nil
}

// FindAll finds all categories for a tenant
func (r *GormCategoryRepository) FindAll(ctx context.Context, tenantID uuid.UUID) ([]catalog.Category, error) {
	var categoryModels []models.CategoryModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("position ASC, id ASC").
		Find(&categoryModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainCategories(categoryModels), nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	var model models.CategoryModel
	model.FromDomain(category)

	if model.ID == 0 {
		if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
			return err
		}
		category.ID = model.ID
		return nil
	}
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete deletes a single category
func (r *GormCategoryRepository) Delete(ctx context.Context, tenantID uuid.UUID, id int64) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.CategoryModel{}).Error
}

// toDomainCategories converts a slice of persistence models to domain aggregates
func toDomainCategories(categoryModels []models.CategoryModel) []catalog.Category {
	categories := make([]catalog.Category, len(categoryModels))
	for i := range categoryModels {
		categories[i] = *categoryModels[i].ToDomain()
	}
	return categories
}

var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
