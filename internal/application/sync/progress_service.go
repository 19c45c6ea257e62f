package sync

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppm/backend/internal/domain/bulk"
)

// ProgressService tracks bulk job progress for polling clients. Progress
// writes are advisory: they run on their own connection so a failing job
// transaction cannot rewind ticks already reported.
type ProgressService struct {
	repo   bulk.JobProgressRepository
	logger *zap.Logger
}

// NewProgressService creates a new ProgressService
func NewProgressService(repo bulk.JobProgressRepository, logger *zap.Logger) *ProgressService {
	return &ProgressService{repo: repo, logger: logger}
}

// CreateJobProgress creates a pending progress record for a job about to be
// enqueued. The caller generates the job ID first so clients can poll before
// the job starts.
func (s *ProgressService) CreateJobProgress(ctx context.Context, tenantID, jobID uuid.UUID,
	kind bulk.JobKind, scopeID string) (*bulk.JobProgress, error) {
	progress, err := bulk.NewJobProgress(tenantID, jobID, kind, scopeID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, progress); err != nil {
		return nil, err
	}

	s.logger.Info("job progress created",
		zap.String("job_id", jobID.String()),
		zap.String("tenant_id", tenantID.String()),
		zap.String("kind", kind.String()),
		zap.String("scope_id", scopeID),
	)
	return progress, nil
}

// StartPendingJob transitions a pending job to running and fixes its total
// item count
func (s *ProgressService) StartPendingJob(ctx context.Context, tenantID, jobID uuid.UUID, totalCount int) error {
	progress, err := s.repo.FindByJobID(ctx, tenantID, jobID)
	if err != nil {
		return err
	}
	if err := progress.Start(totalCount); err != nil {
		return err
	}
	return s.repo.Save(ctx, progress)
}

// UpdateProgress advances the processed counter of a running job
func (s *ProgressService) UpdateProgress(ctx context.Context, tenantID, jobID uuid.UUID,
	processedCount int, errorDetails []bulk.ProgressErrorDetail) error {
	progress, err := s.repo.FindByJobID(ctx, tenantID, jobID)
	if err != nil {
		return err
	}
	if err := progress.UpdateProgress(processedCount, errorDetails); err != nil {
		return err
	}
	return s.repo.Save(ctx, progress)
}

// MarkCompleted finishes a running job with its result
func (s *ProgressService) MarkCompleted(ctx context.Context, tenantID, jobID uuid.UUID, result string) error {
	progress, err := s.repo.FindByJobID(ctx, tenantID, jobID)
	if err != nil {
		return err
	}
	if err := progress.Complete(result); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, progress); err != nil {
		return err
	}

	s.logger.Info("job completed",
		zap.String("job_id", jobID.String()),
		zap.Int("processed", progress.ProcessedCount),
		zap.Int("errors", len(progress.ErrorDetails)),
	)
	return nil
}

// MarkFailed fails a job, keeping already-reported progress
func (s *ProgressService) MarkFailed(ctx context.Context, tenantID, jobID uuid.UUID,
	message string, errorDetails []bulk.ProgressErrorDetail) error {
	progress, err := s.repo.FindByJobID(ctx, tenantID, jobID)
	if err != nil {
		return err
	}
	if err := progress.Fail(message, errorDetails); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, progress); err != nil {
		return err
	}

	s.logger.Warn("job failed",
		zap.String("job_id", jobID.String()),
		zap.String("message", message),
		zap.Int("processed", progress.ProcessedCount),
	)
	return nil
}

// GetProgress returns the progress record for a job
func (s *ProgressService) GetProgress(ctx context.Context, tenantID, jobID uuid.UUID) (*bulk.JobProgress, error) {
	return s.repo.FindByJobID(ctx, tenantID, jobID)
}
