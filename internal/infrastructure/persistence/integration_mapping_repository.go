package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ppm/backend/internal/domain/integration"
	"github.com/ppm/backend/internal/infrastructure/persistence/models"
)

// GormIntegrationMappingRepository implements IntegrationMappingRepository using GORM
type GormIntegrationMappingRepository struct {
	db *gorm.DB
}

// NewGormIntegrationMappingRepository creates a new GormIntegrationMappingRepository
func NewGormIntegrationMappingRepository(db *gorm.DB) *GormIntegrationMappingRepository {
	return &GormIntegrationMappingRepository{db: db}
}

// ---------------------------------------------------------------------------
// IntegrationMappingReader implementation
// ---------------------------------------------------------------------------

// FindByID finds a mapping by its database ID
func (r *GormIntegrationMappingRepository) FindByID(ctx context.Context, id int64) (*integration.IntegrationMapping, error) {
	var model models.IntegrationMappingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Find finds the mapping for one entity on one target instance
func (r *GormIntegrationMappingRepository) Find(ctx context.Context, tenantID uuid.UUID, mappableType integration.MappableType, mappableID int64, integrationType integration.IntegrationType, integrationIdentifier string) (*integration.IntegrationMapping, error) {
	var model models.IntegrationMappingModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND mappable_type = ? AND mappable_id = ? AND integration_type = ? AND integration_identifier = ?",
			tenantID, mappableType, mappableID, integrationType, integrationIdentifier).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByExternalID finds a mapping by the target-side identity
func (r *GormIntegrationMappingRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, integrationType integration.IntegrationType, integrationIdentifier string, externalID string) (*integration.IntegrationMapping, error) {
	var model models.IntegrationMappingModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND integration_type = ? AND integration_identifier = ? AND external_id = ?",
			tenantID, integrationType, integrationIdentifier, externalID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ---------------------------------------------------------------------------
// IntegrationMappingFinder implementation
// ---------------------------------------------------------------------------

// FindForMappable finds all target mappings of one catalog entity
func (r *GormIntegrationMappingRepository) FindForMappable(ctx context.Context, tenantID uuid.UUID, mappableType integration.MappableType, mappableID int64) ([]integration.IntegrationMapping, error) {
	var mappingModels []models.IntegrationMappingModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND mappable_type = ? AND mappable_id = ?", tenantID, mappableType, mappableID).
		Order("integration_type ASC, integration_identifier ASC").
		Find(&mappingModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainMappings(mappingModels), nil
}

// FindByStatus finds mappings in a given sync state for one target instance
func (r *GormIntegrationMappingRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, integrationType integration.IntegrationType, integrationIdentifier string, status integration.SyncStatus) ([]integration.IntegrationMapping, error) {
	var mappingModels []models.IntegrationMappingModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND integration_type = ? AND integration_identifier = ? AND sync_status = ?",
			tenantID, integrationType, integrationIdentifier, status).
		Find(&mappingModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainMappings(mappingModels), nil
}

// CountByStatus counts mappings per sync state for one target instance
func (r *GormIntegrationMappingRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, integrationType integration.IntegrationType, integrationIdentifier string) (map[integration.SyncStatus]int64, error) {
	type statusCount struct {
		SyncStatus integration.SyncStatus
		Count      int64
	}
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.IntegrationMappingModel{}).
		Select("sync_status, count(*) as count").
		Where("tenant_id = ? AND integration_type = ? AND integration_identifier = ?",
			tenantID, integrationType, integrationIdentifier).
		Group("sync_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[integration.SyncStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.SyncStatus] = row.Count
	}
	return counts, nil
}

// ---------------------------------------------------------------------------
// IntegrationMappingWriter implementation
// ---------------------------------------------------------------------------

// FindOrCreate returns the existing mapping for the entity/target pair or
// creates a pending one. The insert uses ON CONFLICT DO NOTHING against the
// composite unique index, then re-reads, so concurrent creators all end up
// with the same row.
func (r *GormIntegrationMappingRepository) FindOrCreate(ctx context.Context, mapping *integration.IntegrationMapping) (*integration.IntegrationMapping, error) {
	if err := mapping.Validate(); err != nil {
		return nil, err
	}

	model := models.IntegrationMappingModelFromDomain(mapping)
	model.ID = 0

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "mappable_type"}, {Name: "mappable_id"},
				{Name: "integration_type"}, {Name: "integration_identifier"},
			},
			DoNothing: true,
		}).
		Create(model).Error
	if err != nil {
		return nil, err
	}

	// Re-read regardless of whether this call inserted; on conflict the
	// model keeps a zero ID and the winner's row holds the truth.
	return r.Find(ctx, mapping.TenantID, mapping.MappableType, mapping.MappableID,
		mapping.IntegrationType, mapping.IntegrationIdentifier)
}

// Save updates an existing mapping
func (r *GormIntegrationMappingRepository) Save(ctx context.Context, mapping *integration.IntegrationMapping) error {
	if err := mapping.Validate(); err != nil {
		return err
	}
	if mapping.ID == 0 {
		return integration.ErrMappingNotFound
	}
	model := models.IntegrationMappingModelFromDomain(mapping)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a mapping
func (r *GormIntegrationMappingRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.IntegrationMappingModel{}, "id = ?", id).Error
}

// DeleteForMappable deletes all target mappings of one catalog entity
func (r *GormIntegrationMappingRepository) DeleteForMappable(ctx context.Context, tenantID uuid.UUID, mappableType integration.MappableType, mappableID int64) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND mappable_type = ? AND mappable_id = ?", tenantID, mappableType, mappableID).
		Delete(&models.IntegrationMappingModel{}).Error
}

// toDomainMappings converts a slice of persistence models to domain entities
func toDomainMappings(mappingModels []models.IntegrationMappingModel) []integration.IntegrationMapping {
	mappings := make([]integration.IntegrationMapping, len(mappingModels))
	for i, model := range mappingModels {
		mappings[i] = *model.ToDomain()
	}
	return mappings
}

var _ integration.IntegrationMappingRepository = (*GormIntegrationMappingRepository)(nil)
