package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ppm/backend/internal/domain/bulk"
	"github.com/ppm/backend/internal/infrastructure/persistence/models"
)

// GormJobProgressRepository implements JobProgressRepository using GORM
type GormJobProgressRepository struct {
	db *gorm.DB
}

// NewGormJobProgressRepository creates a new GormJobProgressRepository
func NewGormJobProgressRepository(db *gorm.DB) *GormJobProgressRepository {
	return &GormJobProgressRepository{db: db}
}

// FindByJobID finds a progress record by the externally generated job ID
func (r *GormJobProgressRepository) FindByJobID(ctx context.Context, tenantID, jobID uuid.UUID) (*bulk.JobProgress, error) {
	var model models.JobProgressModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND job_id = ?", tenantID, jobID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bulk.ErrJobProgressNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindRunning finds all non-terminal progress records for a tenant
func (r *GormJobProgressRepository) FindRunning(ctx context.Context, tenantID uuid.UUID) ([]bulk.JobProgress, error) {
	var progressModels []models.JobProgressModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status IN ?", tenantID,
			[]bulk.JobStatus{bulk.JobStatusPending, bulk.JobStatusRunning}).
		Order("created_at ASC").
		Find(&progressModels).Error
	if err != nil {
		return nil, err
	}

	records := make([]bulk.JobProgress, 0, len(progressModels))
	for i := range progressModels {
		progress, err := progressModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, *progress)
	}
	return records, nil
}

// Save creates or updates a progress record
func (r *GormJobProgressRepository) Save(ctx context.Context, progress *bulk.JobProgress) error {
	var model models.JobProgressModel
	if err := model.FromDomain(progress); err != nil {
		return err
	}

	if model.ID == 0 {
		if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
			return err
		}
		progress.ID = model.ID
		return nil
	}
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete deletes a progress record
func (r *GormJobProgressRepository) Delete(ctx context.Context, tenantID, jobID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND job_id = ?", tenantID, jobID).
		Delete(&models.JobProgressModel{}).Error
}

var _ bulk.JobProgressRepository = (*GormJobProgressRepository)(nil)
