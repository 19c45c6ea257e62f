package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ppm/backend/internal/domain/integration"
)

// IntegrationMappingModel is the persistence model for the IntegrationMapping
// domain entity. The composite unique index backs the FindOrCreate upsert, so
// racing creators for the same entity/target pair collapse onto one row.
type IntegrationMappingModel struct {
	ID                    int64                       `gorm:"primaryKey;autoIncrement"`
	TenantID              uuid.UUID                   `gorm:"type:uuid;not null;index:idx_integration_mappings_tenant"`
	MappableType          integration.MappableType    `gorm:"type:varchar(30);not null;uniqueIndex:ux_integration_mappings_identity,priority:1"`
	MappableID            int64                       `gorm:"not null;uniqueIndex:ux_integration_mappings_identity,priority:2"`
	IntegrationType       integration.IntegrationType `gorm:"type:varchar(30);not null;uniqueIndex:ux_integration_mappings_identity,priority:3"`
	IntegrationIdentifier string                      `gorm:"type:varchar(100);not null;uniqueIndex:ux_integration_mappings_identity,priority:4"`
	ExternalID            *string                     `gorm:"type:varchar(100);index:idx_integration_mappings_external"`
	SyncStatus            integration.SyncStatus      `gorm:"type:varchar(20);not null;default:'pending';index"`
	SyncDirection         integration.SyncDirection   `gorm:"type:varchar(10);not null;default:'both'"`
	LastSyncAt            *time.Time
	LastSyncError         string    `gorm:"type:text"`
	CreatedAt             time.Time `gorm:"not null"`
	UpdatedAt             time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (IntegrationMappingModel) TableName() string {
	return "integration_mappings"
}

// ToDomain converts the persistence model to a domain IntegrationMapping entity
func (m *IntegrationMappingModel) ToDomain() *integration.IntegrationMapping {
	return &integration.IntegrationMapping{
		ID:                    m.ID,
		TenantID:              m.TenantID,
		MappableType:          m.MappableType,
		MappableID:            m.MappableID,
		IntegrationType:       m.IntegrationType,
		IntegrationIdentifier: m.IntegrationIdentifier,
		ExternalID:            m.ExternalID,
		SyncStatus:            m.SyncStatus,
		SyncDirection:         m.SyncDirection,
		LastSyncAt:            m.LastSyncAt,
		LastSyncError:         m.LastSyncError,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain entity
func (m *IntegrationMappingModel) FromDomain(im *integration.IntegrationMapping) {
	m.ID = im.ID
	m.TenantID = im.TenantID
	m.MappableType = im.MappableType
	m.MappableID = im.MappableID
	m.IntegrationType = im.IntegrationType
	m.IntegrationIdentifier = im.IntegrationIdentifier
	m.ExternalID = im.ExternalID
	m.SyncStatus = im.SyncStatus
	m.SyncDirection = im.SyncDirection
	m.LastSyncAt = im.LastSyncAt
	m.LastSyncError = im.LastSyncError
	m.CreatedAt = im.CreatedAt
	m.UpdatedAt = im.UpdatedAt
}

// IntegrationMappingModelFromDomain creates a new persistence model from a
// domain entity
func IntegrationMappingModelFromDomain(im *integration.IntegrationMapping) *IntegrationMappingModel {
	m := &IntegrationMappingModel{}
	m.FromDomain(im)
	return m
}

// TargetModel is the persistence model for configured integration targets
type TargetModel struct {
	ID         int64                       `gorm:"primaryKey;autoIncrement"`
	TenantID   uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:ux_targets_identity,priority:1"`
	Type       integration.IntegrationType `gorm:"type:varchar(30);not null;uniqueIndex:ux_targets_identity,priority:2"`
	Identifier string                      `gorm:"type:varchar(100);not null;uniqueIndex:ux_targets_identity,priority:3"`
	Name       string                      `gorm:"type:varchar(255);not null"`
	Active     bool                        `gorm:"not null;default:true;index"`
	CreatedAt  time.Time                   `gorm:"not null"`
	UpdatedAt  time.Time                   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TargetModel) TableName() string {
	return "integration_targets"
}

// ToDomain converts the persistence model to a domain Target value
func (m *TargetModel) ToDomain() integration.Target {
	return integration.Target{
		TenantID:   m.TenantID,
		Type:       m.Type,
		Identifier: m.Identifier,
		Name:       m.Name,
		Active:     m.Active,
	}
}
