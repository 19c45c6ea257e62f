package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ppm/backend/internal/domain/bulk"
)

// JobProgressModel is the persistence model for the JobProgress aggregate
type JobProgressModel struct {
	ID               int64          `gorm:"primaryKey;autoIncrement"`
	TenantID         uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:ux_job_progress_job,priority:1"`
	JobID            uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:ux_job_progress_job,priority:2"`
	Kind             bulk.JobKind   `gorm:"type:varchar(40);not null"`
	ScopeID          string         `gorm:"type:varchar(100)"`
	TotalCount       int            `gorm:"not null;default:0"`
	ProcessedCount   int            `gorm:"not null;default:0"`
	ErrorDetailsJSON string         `gorm:"type:jsonb;column:error_details"`
	Status           bulk.JobStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	Result           string         `gorm:"type:jsonb"`
	ErrorMessage     string         `gorm:"type:text"`
	StartedAt        *time.Time
	CompletedAt      *time.Time
	Version          int       `gorm:"not null;default:1"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (JobProgressModel) TableName() string {
	return "job_progress"
}

// ToDomain converts the persistence model to a domain JobProgress aggregate
func (m *JobProgressModel) ToDomain() (*bulk.JobProgress, error) {
	p := &bulk.JobProgress{
		JobID:          m.JobID,
		Kind:           m.Kind,
		ScopeID:        m.ScopeID,
		TotalCount:     m.TotalCount,
		ProcessedCount: m.ProcessedCount,
		Status:         m.Status,
		Result:         m.Result,
		ErrorMessage:   m.ErrorMessage,
		StartedAt:      m.StartedAt,
		CompletedAt:    m.CompletedAt,
	}
	p.TenantAggregateRoot = rehydrateAggregate(m.TenantID, m.ID, m.Version, m.CreatedAt, m.UpdatedAt)
	if err := p.SetErrorDetailsFromJSON(m.ErrorDetailsJSON); err != nil {
		return nil, err
	}
	return p, nil
}

// FromDomain populates the persistence model from a domain aggregate
func (m *JobProgressModel) FromDomain(p *bulk.JobProgress) error {
	m.ID = p.ID
	m.TenantID = p.TenantID
	m.JobID = p.JobID
	m.Kind = p.Kind
	m.ScopeID = p.ScopeID
	m.TotalCount = p.TotalCount
	m.ProcessedCount = p.ProcessedCount
	m.Status = p.Status
	m.Result = p.Result
	m.ErrorMessage = p.ErrorMessage
	m.StartedAt = p.StartedAt
	m.CompletedAt = p.CompletedAt
	m.Version = p.Version
	m.CreatedAt = p.CreatedAt
	m.UpdatedAt = p.UpdatedAt

	encoded, err := p.ErrorDetailsJSON()
	if err != nil {
		return err
	}
	m.ErrorDetailsJSON = encoded
	return nil
}
