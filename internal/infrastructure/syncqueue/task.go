package syncqueue

import (
	"time"

	"github.com/google/uuid"

	"github.com/ppm/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Sync Task Types
// ---------------------------------------------------------------------------

// TaskStatus represents the status of a sync task
type TaskStatus string

const (
	TaskStatusQueued    TaskStatus = "QUEUED"
	TaskStatusRunning   TaskStatus = "RUNNING"
	TaskStatusSucceeded TaskStatus = "SUCCEEDED"
	TaskStatusRetryable TaskStatus = "RETRYABLE"
	TaskStatusPermanent TaskStatus = "PERMANENT"
)

// SyncTask represents one push of one catalog entity to one integration
// target instance. Tasks are fanned out per active target, so a category
// created with three active targets produces three independent tasks.
type SyncTask struct {
	ID       uuid.UUID
	TenantID uuid.UUID

	// EventID is the domain event that caused this task, used for dedup
	EventID uuid.UUID

	// MappableType and MappableID identify the catalog entity to push
	MappableType integration.MappableType
	MappableID   int64

	// TargetType and TargetIdentifier select the target instance
	TargetType       integration.IntegrationType
	TargetIdentifier string

	// JobID links the task to a bulk job progress record, when it has one
	JobID *uuid.UUID

	Status      TaskStatus
	Error       string
	Attempt     int
	MaxAttempts int
	NextRetryAt *time.Time
	EnqueuedAt  time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// NewSyncTask creates a queued sync task
func NewSyncTask(tenantID, eventID uuid.UUID, mappableType integration.MappableType, mappableID int64,
	targetType integration.IntegrationType, targetIdentifier string, maxAttempts int) *SyncTask {
	return &SyncTask{
		ID:               uuid.New(),
		TenantID:         tenantID,
		EventID:          eventID,
		MappableType:     mappableType,
		MappableID:       mappableID,
		TargetType:       targetType,
		TargetIdentifier: targetIdentifier,
		Status:           TaskStatusQueued,
		MaxAttempts:      maxAttempts,
		EnqueuedAt:       time.Now(),
	}
}

// TargetKey returns the target instance key this task pushes to
func (t *SyncTask) TargetKey() string {
	return string(t.TargetType) + ":" + t.TargetIdentifier
}

// Start marks the task as running and counts the attempt
func (t *SyncTask) Start() {
	now := time.Now()
	t.Status = TaskStatusRunning
	t.StartedAt = &now
	t.Attempt++
	t.Error = ""
}

// Succeed marks the task as successfully completed
func (t *SyncTask) Succeed() {
	now := time.Now()
	t.Status = TaskStatusSucceeded
	t.CompletedAt = &now
}

// FailPermanent marks the task as permanently failed
func (t *SyncTask) FailPermanent(message string) {
	now := time.Now()
	t.Status = TaskStatusPermanent
	t.Error = message
	t.CompletedAt = &now
}

// FailRetryable marks the task for another attempt, or permanently when the
// attempt budget is spent
func (t *SyncTask) FailRetryable(message string) {
	if t.Attempt >= t.MaxAttempts {
		t.FailPermanent(message)
		return
	}
	t.Status = TaskStatusRetryable
	t.Error = message
}

// ScheduleRetry computes the next attempt time with exponential backoff. A
// target-supplied retry-after hint overrides the computed delay when longer,
// but maxDelay caps either value so a hostile hint cannot stall the task
// indefinitely.
func (t *SyncTask) ScheduleRetry(baseDelay, maxDelay time.Duration, retryAfter time.Duration) {
	delay := baseDelay * time.Duration(1<<(t.Attempt-1))
	if retryAfter > delay {
		delay = retryAfter
	}
	if delay > maxDelay {
		delay = maxDelay
	}
	next := time.Now().Add(delay)
	t.NextRetryAt = &next
}

// IsTerminal returns true if the task reached a terminal state
func (t *SyncTask) IsTerminal() bool {
	return t.Status == TaskStatusSucceeded || t.Status == TaskStatusPermanent
}
