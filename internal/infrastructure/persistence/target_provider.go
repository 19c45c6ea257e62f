package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ppm/backend/internal/domain/integration"
	"github.com/ppm/backend/internal/infrastructure/persistence/models"
)

// GormTargetProvider resolves configured integration targets from the
// integration_targets table
type GormTargetProvider struct {
	db *gorm.DB
}

// NewGormTargetProvider creates a new GormTargetProvider
func NewGormTargetProvider(db *gorm.DB) *GormTargetProvider {
	return &GormTargetProvider{db: db}
}

// ActiveTargets returns all active targets for a tenant
func (p *GormTargetProvider) ActiveTargets(ctx context.Context, tenantID uuid.UUID) ([]integration.Target, error) {
	var targetModels []models.TargetModel
	err := p.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Order("type ASC, identifier ASC").
		Find(&targetModels).Error
	if err != nil {
		return nil, err
	}

	targets := make([]integration.Target, len(targetModels))
	for i := range targetModels {
		targets[i] = targetModels[i].ToDomain()
	}
	return targets, nil
}

// FindTarget returns one configured target instance, active or not
func (p *GormTargetProvider) FindTarget(ctx context.Context, tenantID uuid.UUID, integrationType integration.IntegrationType, identifier string) (*integration.Target, error) {
	var model models.TargetModel
	err := p.db.WithContext(ctx).
		Where("tenant_id = ? AND type = ? AND identifier = ?", tenantID, integrationType, identifier).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrTargetNotFound
		}
		return nil, err
	}
	target := model.ToDomain()
	return &target, nil
}

// SaveTarget creates or updates a configured target
func (p *GormTargetProvider) SaveTarget(ctx context.Context, target integration.Target) error {
	var model models.TargetModel
	err := p.db.WithContext(ctx).
		Where("tenant_id = ? AND type = ? AND identifier = ?", target.TenantID, target.Type, target.Identifier).
		First(&model).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	model.TenantID = target.TenantID
	model.Type = target.Type
	model.Identifier = target.Identifier
	model.Name = target.Name
	model.Active = target.Active

	if model.ID == 0 {
		return p.db.WithContext(ctx).Create(&model).Error
	}
	return p.db.WithContext(ctx).Save(&model).Error
}

var _ integration.TargetProvider = (*GormTargetProvider)(nil)
