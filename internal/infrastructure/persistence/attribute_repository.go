package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ppm/backend/internal/domain/catalog"
	"github.com/ppm/backend/internal/infrastructure/persistence/models"
)

// ---------------------------------------------------------------------------
// Attribute types
// ---------------------------------------------------------------------------

// GormAttributeTypeRepository implements AttributeTypeRepository using GORM
type GormAttributeTypeRepository struct {
	db *gorm.DB
}

// NewGormAttributeTypeRepository creates a new GormAttributeTypeRepository
func NewGormAttributeTypeRepository(db *gorm.DB) *GormAttributeTypeRepository {
	return &GormAttributeTypeRepository{db: db}
}

// FindByID finds an attribute type by its ID
func (r *GormAttributeTypeRepository) FindByID(ctx context.Context, tenantID uuid.UUID, id int64) (*catalog.AttributeType, error) {
	var model models.AttributeTypeModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrAttributeTypeNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds an attribute type by its tenant-unique code
func (r *GormAttributeTypeRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*catalog.AttributeType, error) {
	var model models.AttributeTypeModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrAttributeTypeNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all attribute types for a tenant
func (r *GormAttributeTypeRepository) FindAll(ctx context.Context, tenantID uuid.UUID) ([]catalog.AttributeType, error) {
	var typeModels []models.AttributeTypeModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("position ASC, id ASC").
		Find(&typeModels).Error
	if err != nil {
		return nil, err
	}

	types := make([]catalog.AttributeType, len(typeModels))
	for i := range typeModels {
		types[i] = *typeModels[i].ToDomain()
	}
	return types, nil
}

// Save creates or updates an attribute type
func (r *GormAttributeTypeRepository) Save(ctx context.Context, attributeType *catalog.AttributeType) error {
	var model models.AttributeTypeModel
	model.FromDomain(attributeType)

	if model.ID == 0 {
		if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
			return err
		}
		attributeType.ID = model.ID
		return nil
	}
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete deletes an attribute type
func (r *GormAttributeTypeRepository) Delete(ctx context.Context, tenantID uuid.UUID, id int64) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.AttributeTypeModel{}).Error
}

// ---------------------------------------------------------------------------
// Attribute values
// ---------------------------------------------------------------------------

// GormAttributeValueRepository implements AttributeValueRepository using GORM
type GormAttributeValueRepository struct {
	db *gorm.DB
}

// NewGormAttributeValueRepository creates a new GormAttributeValueRepository
func NewGormAttributeValueRepository(db *gorm.DB) *GormAttributeValueRepository {
	return &GormAttributeValueRepository{db: db}
}

// FindByID finds an attribute value by its ID
func (r *GormAttributeValueRepository) FindByID(ctx context.Context, tenantID uuid.UUID, id int64) (*catalog.AttributeValue, error) {
	var model models.AttributeValueModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrAttributeValueNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByType finds all values of an attribute type
func (r *GormAttributeValueRepository) FindByType(ctx context.Context, tenantID uuid.UUID, attributeTypeID int64) ([]catalog.AttributeValue, error) {
	var valueModels []models.AttributeValueModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND attribute_type_id = ?", tenantID, attributeTypeID).
		Order("position ASC, id ASC").
		Find(&valueModels).Error
	if err != nil {
		return nil, err
	}

	values := make([]catalog.AttributeValue, len(valueModels))
	for i := range valueModels {
		values[i] = *valueModels[i].ToDomain()
	}
	return values, nil
}

// Save creates or updates an attribute value
func (r *GormAttributeValueRepository) Save(ctx context.Context, value *catalog.AttributeValue) error {
	var model models.AttributeValueModel
	model.FromDomain(value)

	if model.ID == 0 {
		if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
			return err
		}
		value.ID = model.ID
		return nil
	}
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete deletes an attribute value
func (r *GormAttributeValueRepository) Delete(ctx context.Context, tenantID uuid.UUID, id int64) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.AttributeValueModel{}).Error
}

var (
	_ catalog.AttributeTypeRepository  = (*GormAttributeTypeRepository)(nil)
	_ catalog.AttributeValueRepository = (*GormAttributeValueRepository)(nil)
)
