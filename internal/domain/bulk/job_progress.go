package bulk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ppm/backend/internal/domain/shared"
)

// ErrJobProgressNotFound is returned when no progress record exists for a job
var ErrJobProgressNotFound = errors.New("bulk: job progress not found")

// ---------------------------------------------------------------------------
// Enums
// ---------------------------------------------------------------------------

// JobKind represents the type of bulk operation being tracked
type JobKind string

const (
	JobKindCategoryBulkDelete JobKind = "category_bulk_delete"
	JobKindProductImport      JobKind = "product_import"
	JobKindSyncBatch          JobKind = "sync_batch"
)

// IsValid checks if the job kind is valid
func (k JobKind) IsValid() bool {
	switch k {
	case JobKindCategoryBulkDelete, JobKindProductImport, JobKindSyncBatch:
		return true
	}
	return false
}

// String returns the string representation of JobKind
func (k JobKind) String() string {
	return string(k)
}

// JobStatus represents the status of a tracked bulk job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// IsValid checks if the status is valid
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusRunning, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// IsTerminal returns true if this is a terminal state
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// String returns the string representation of JobStatus
func (s JobStatus) String() string {
	return string(s)
}

// ProgressErrorDetail records one per-item failure inside a bulk job
type ProgressErrorDetail struct {
	ItemID  string `json:"item_id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ---------------------------------------------------------------------------
// JobProgress Aggregate
// ---------------------------------------------------------------------------

// JobProgress tracks the advisory progress of a long-running bulk job for
// polling clients. The JobID is generated by the caller before the job is
// enqueued, so clients can start polling immediately.
//
// ProcessedCount is monotonic and never exceeds TotalCount; terminal
// transitions happen exactly once.
type JobProgress struct {
	shared.TenantAggregateRoot
	// JobID is the externally generated job identity
	JobID uuid.UUID `json:"job_id"`
	// Kind is the type of bulk operation
	Kind JobKind `json:"kind"`
	// ScopeID identifies the subject of the job, such as the root category
	// of a bulk delete
	ScopeID string `json:"scope_id,omitempty"`
	// TotalCount is the number of items the job will process, known at start
	TotalCount int `json:"total_count"`
	// ProcessedCount is the number of items processed so far
	ProcessedCount int `json:"processed_count"`
	// ErrorDetails records per-item failures
	ErrorDetails []ProgressErrorDetail `json:"error_details,omitempty"`
	// Status is the job state
	Status JobStatus `json:"status"`
	// Result is the JSON-encoded outcome of a completed job
	Result string `json:"result,omitempty"`
	// ErrorMessage describes why a failed job failed
	ErrorMessage string `json:"error_message,omitempty"`
	// StartedAt is when the job started running
	StartedAt *time.Time `json:"started_at,omitempty"`
	// CompletedAt is when the job reached a terminal state
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewJobProgress creates a pending progress record for a job about to be
// enqueued
func NewJobProgress(tenantID, jobID uuid.UUID, kind JobKind, scopeID string) (*JobProgress, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if jobID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_JOB_ID", "Job ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_JOB_KIND", fmt.Sprintf("Invalid job kind: %s", kind))
	}

	return &JobProgress{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		JobID:               jobID,
		Kind:                kind,
		ScopeID:             scopeID,
		Status:              JobStatusPending,
		ErrorDetails:        make([]ProgressErrorDetail, 0),
	}, nil
}

// Start marks the job as running and fixes the total item count
func (p *JobProgress) Start(totalCount int) error {
	if p.Status != JobStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot start from state: %s", p.Status))
	}
	if totalCount < 0 {
		return shared.NewDomainError("INVALID_TOTAL_COUNT", "Total count cannot be negative")
	}

	p.Status = JobStatusRunning
	p.TotalCount = totalCount
	now := time.Now()
	p.StartedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	return nil
}

// UpdateProgress advances the processed counter. The counter never moves
// backwards and is capped at TotalCount, so stale or duplicate worker
// reports cannot make progress regress.
func (p *JobProgress) UpdateProgress(processedCount int, errors []ProgressErrorDetail) error {
	if p.Status != JobStatusRunning {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot update progress in state: %s", p.Status))
	}

	if processedCount > p.ProcessedCount {
		if processedCount > p.TotalCount {
			processedCount = p.TotalCount
		}
		p.ProcessedCount = processedCount
	}
	if len(errors) > 0 {
		p.ErrorDetails = append(p.ErrorDetails, errors...)
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// Complete marks the job as successfully finished. Calling it on a job that
// already reached a terminal state is an error.
func (p *JobProgress) Complete(result string) error {
	if p.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete from terminal state: %s", p.Status))
	}
	if p.Status != JobStatusRunning {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete from state: %s", p.Status))
	}

	p.Status = JobStatusCompleted
	p.ProcessedCount = p.TotalCount
	p.Result = result
	now := time.Now()
	p.CompletedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	return nil
}

// Fail marks the job as failed. Reported progress is kept as is; failed jobs
// do not rewind their counters.
func (p *JobProgress) Fail(message string, errors []ProgressErrorDetail) error {
	if p.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail from terminal state: %s", p.Status))
	}

	p.Status = JobStatusFailed
	p.ErrorMessage = message
	if len(errors) > 0 {
		p.ErrorDetails = append(p.ErrorDetails, errors...)
	}
	now := time.Now()
	p.CompletedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	return nil
}

// IsTerminal returns true if the job reached a terminal state
func (p *JobProgress) IsTerminal() bool {
	return p.Status.IsTerminal()
}

// Percentage returns the completion percentage (0-100)
func (p *JobProgress) Percentage() float64 {
	if p.TotalCount == 0 {
		if p.Status == JobStatusCompleted {
			return 100
		}
		return 0
	}
	return float64(p.ProcessedCount) / float64(p.TotalCount) * 100
}

// ErrorDetailsJSON returns the error details as a JSON string
func (p *JobProgress) ErrorDetailsJSON() (string, error) {
	if len(p.ErrorDetails) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(p.ErrorDetails)
	if err != nil {
		return "", fmt.Errorf("failed to marshal error details: %w", err)
	}
	return string(data), nil
}

// SetErrorDetailsFromJSON parses error details from a JSON string
func (p *JobProgress) SetErrorDetailsFromJSON(jsonStr string) error {
	if jsonStr == "" || jsonStr == "[]" {
		p.ErrorDetails = make([]ProgressErrorDetail, 0)
		return nil
	}
	var details []ProgressErrorDetail
	if err := json.Unmarshal([]byte(jsonStr), &details); err != nil {
		return fmt.Errorf("failed to unmarshal error details: %w", err)
	}
	p.ErrorDetails = details
	return nil
}

// ---------------------------------------------------------------------------
// JobProgressRepository Interface
// ---------------------------------------------------------------------------

// JobProgressRepository defines the interface for job progress persistence
type JobProgressRepository interface {
	// FindByJobID finds a progress record by the externally generated job ID
	FindByJobID(ctx context.Context, tenantID, jobID uuid.UUID) (*JobProgress, error)

	// FindRunning finds all non-terminal progress records for a tenant
	FindRunning(ctx context.Context, tenantID uuid.UUID) ([]JobProgress, error)

	// Save creates or updates a progress record
	Save(ctx context.Context, progress *JobProgress) error

	// Delete deletes a progress record
	Delete(ctx context.Context, tenantID, jobID uuid.UUID) error
}
