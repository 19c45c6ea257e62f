package sync

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppm/backend/internal/domain/bulk"
	"github.com/ppm/backend/internal/domain/catalog"
	"github.com/ppm/backend/internal/domain/shared"
)

// CategoryUnitOfWork runs category writes inside one database transaction
type CategoryUnitOfWork interface {
	// Execute invokes fn with a repository bound to a transaction; returning
	// an error rolls everything back
	Execute(ctx context.Context, fn func(repo catalog.CategoryRepository) error) error
}

// CategoryBulkService deletes whole category subtrees as one tracked bulk
// job. The deletes run in a single transaction; progress ticks are advisory
// and survive a rollback.
type CategoryBulkService struct {
	categories catalog.CategoryRepository
	uow        CategoryUnitOfWork
	progress   *ProgressService
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// NewCategoryBulkService creates a new CategoryBulkService
func NewCategoryBulkService(categories catalog.CategoryRepository, uow CategoryUnitOfWork,
	progress *ProgressService, publisher shared.EventPublisher, logger *zap.Logger) *CategoryBulkService {
	return &CategoryBulkService{
		categories: categories,
		uow:        uow,
		progress:   progress,
		publisher:  publisher,
		logger:     logger,
	}
}

// BulkDelete deletes a category and its whole subtree under the given job
// ID. The caller pre-generates jobID and can start polling immediately.
func (s *CategoryBulkService) BulkDelete(ctx context.Context, tenantID uuid.UUID, rootID int64, jobID uuid.UUID) error {
	scopeID := strconv.FormatInt(rootID, 10)
	if _, err := s.progress.CreateJobProgress(ctx, tenantID, jobID, bulk.JobKindCategoryBulkDelete, scopeID); err != nil {
		return err
	}

	subtree, err := s.categories.FindSubtree(ctx, tenantID, rootID)
	if err != nil {
		s.failJob(ctx, tenantID, jobID, err.Error(), nil)
		return err
	}

	if err := s.progress.StartPendingJob(ctx, tenantID, jobID, len(subtree)); err != nil {
		return err
	}

	deleteErr := s.uow.Execute(ctx, func(repo catalog.CategoryRepository) error {
		// Children first, so no delete ever orphans a live parent reference
		for i := len(subtree) - 1; i >= 0; i-- {
			node := subtree[i]
			if err := repo.Delete(ctx, tenantID, node.ID); err != nil {
				return fmt.Errorf("delete category %d: %w", node.ID, err)
			}
			processed := len(subtree) - i
			if err := s.progress.UpdateProgress(ctx, tenantID, jobID, processed, nil); err != nil {
				s.logger.Warn("failed to report bulk delete progress",
					zap.String("job_id", jobID.String()),
					zap.Int("processed", processed),
					zap.Error(err),
				)
			}
		}
		return nil
	})
	if deleteErr != nil {
		s.failJob(ctx, tenantID, jobID, deleteErr.Error(), []bulk.ProgressErrorDetail{{
			ItemID:  scopeID,
			Code:    "BULK_DELETE_FAILED",
			Message: deleteErr.Error(),
		}})
		return deleteErr
	}

	result := fmt.Sprintf(`{"deleted":%d}`, len(subtree))
	if err := s.progress.MarkCompleted(ctx, tenantID, jobID, result); err != nil {
		return err
	}

	// Deletion events go out only after the transaction committed
	events := make([]shared.DomainEvent, 0, len(subtree))
	for i := range subtree {
		events = append(events, catalog.NewCategoryDeletedEvent(tenantID, subtree[i].ID, &jobID))
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish category deleted events",
			zap.String("job_id", jobID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("category subtree deleted",
		zap.String("job_id", jobID.String()),
		zap.Int64("root_id", rootID),
		zap.Int("deleted", len(subtree)),
	)
	return nil
}

func (s *CategoryBulkService) failJob(ctx context.Context, tenantID, jobID uuid.UUID,
	message string, details []bulk.ProgressErrorDetail) {
	if err := s.progress.MarkFailed(ctx, tenantID, jobID, message, details); err != nil {
		s.logger.Error("failed to mark job failed",
			zap.String("job_id", jobID.String()),
			zap.Error(err),
		)
	}
}
