package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// IntegrationMapping Entity
// ---------------------------------------------------------------------------

// IntegrationMapping links one catalog entity to its counterpart on one
// integration target. It is an Entity (not Aggregate Root): it has identity
// and mutable sync state, but no lifecycle events of its own.
//
// A mapping is unique per (tenant, mappable type, mappable ID, integration
// type, integration identifier); the identifier distinguishes multiple
// configured instances of the same integration type.
type IntegrationMapping struct {
	// ID is the database identity of this mapping
	ID int64
	// TenantID is the tenant this mapping belongs to
	TenantID uuid.UUID
	// MappableType is the kind of catalog entity being mapped
	MappableType MappableType
	// MappableID is the catalog entity ID being mapped
	MappableID int64
	// IntegrationType is the kind of target
	IntegrationType IntegrationType
	// IntegrationIdentifier distinguishes target instances of the same type
	IntegrationIdentifier string
	// ExternalID is the entity's ID on the target, nil until the first
	// successful push or pull
	ExternalID *string
	// SyncStatus is the current synchronization state
	SyncStatus SyncStatus
	// SyncDirection is which way data flows for this mapping
	SyncDirection SyncDirection
	// LastSyncAt is when the mapping last reached a terminal sync state
	LastSyncAt *time.Time
	// LastSyncError holds the message of the last permanent failure
	LastSyncError string
	// CreatedAt is when this mapping was created
	CreatedAt time.Time
	// UpdatedAt is when this mapping was last updated
	UpdatedAt time.Time
}

// NewIntegrationMapping creates a pending mapping for a catalog entity
func NewIntegrationMapping(
	tenantID uuid.UUID,
	mappableType MappableType,
	mappableID int64,
	integrationType IntegrationType,
	integrationIdentifier string,
	direction SyncDirection,
) (*IntegrationMapping, error) {
	if tenantID == uuid.Nil {
		return nil, ErrMappingInvalidTenantID
	}
	if !mappableType.IsValid() || mappableID <= 0 {
		return nil, ErrMappingInvalidMappable
	}
	if !integrationType.IsValid() {
		return nil, ErrMappingInvalidType
	}
	if integrationIdentifier == "" {
		return nil, ErrMappingInvalidIdentifier
	}
	if !direction.IsValid() {
		direction = SyncDirectionBoth
	}

	now := time.Now()
	return &IntegrationMapping{
		TenantID:              tenantID,
		MappableType:          mappableType,
		MappableID:            mappableID,
		IntegrationType:       integrationType,
		IntegrationIdentifier: integrationIdentifier,
		SyncStatus:            SyncStatusPending,
		SyncDirection:         direction,
		CreatedAt:             now,
		UpdatedAt:             now,
	}, nil
}

// Validate validates the mapping
func (m *IntegrationMapping) Validate() error {
	if m.TenantID == uuid.Nil {
		return ErrMappingInvalidTenantID
	}
	if !m.MappableType.IsValid() || m.MappableID <= 0 {
		return ErrMappingInvalidMappable
	}
	if !m.IntegrationType.IsValid() {
		return ErrMappingInvalidType
	}
	if m.IntegrationIdentifier == "" {
		return ErrMappingInvalidIdentifier
	}
	return nil
}

// IsSynced returns true if the mapping holds an external ID and its last
// push succeeded
func (m *IntegrationMapping) IsSynced() bool {
	return m.SyncStatus == SyncStatusSynced && m.ExternalID != nil && *m.ExternalID != ""
}

// SetExternalID records the entity's ID on the target
func (m *IntegrationMapping) SetExternalID(externalID string) {
	m.ExternalID = &externalID
	m.UpdatedAt = time.Now()
}

// ClearExternalID forgets the target-side identity. Used when the target
// reports the entity gone so the next push creates it fresh.
func (m *IntegrationMapping) ClearExternalID() {
	m.ExternalID = nil
	m.SyncStatus = SyncStatusPending
	m.UpdatedAt = time.Now()
}

// MarkSynced records a successful push
func (m *IntegrationMapping) MarkSynced() {
	now := time.Now()
	m.SyncStatus = SyncStatusSynced
	m.LastSyncAt = &now
	m.LastSyncError = ""
	m.UpdatedAt = now
}

// MarkError records a permanent push failure
func (m *IntegrationMapping) MarkError(message string) {
	now := time.Now()
	m.SyncStatus = SyncStatusError
	m.LastSyncAt = &now
	m.LastSyncError = message
	m.UpdatedAt = now
}

// ---------------------------------------------------------------------------
// IntegrationMappingRepository Interface
// ---------------------------------------------------------------------------

// IntegrationMappingReader defines the interface for reading mappings
type IntegrationMappingReader interface {
	// FindByID finds a mapping by its database ID
	FindByID(ctx context.Context, id int64) (*IntegrationMapping, error)

	// Find finds the mapping for one entity on one target instance.
	// Returns ErrMappingNotFound when none exists.
	Find(ctx context.Context, tenantID uuid.UUID, mappableType MappableType, mappableID int64,
		integrationType IntegrationType, integrationIdentifier string) (*IntegrationMapping, error)

	// FindByExternalID finds a mapping by the target-side identity
	FindByExternalID(ctx context.Context, tenantID uuid.UUID, integrationType IntegrationType,
		integrationIdentifier string, externalID string) (*IntegrationMapping, error)
}

// IntegrationMappingFinder defines the interface for searching mappings
type IntegrationMappingFinder interface {
	// FindForMappable finds all target mappings of one catalog entity
	FindForMappable(ctx context.Context, tenantID uuid.UUID, mappableType MappableType,
		mappableID int64) ([]IntegrationMapping, error)

	// FindByStatus finds mappings in a given sync state for one target instance
	FindByStatus(ctx context.Context, tenantID uuid.UUID, integrationType IntegrationType,
		integrationIdentifier string, status SyncStatus) ([]IntegrationMapping, error)

	// CountByStatus counts mappings per sync state for one target instance
	CountByStatus(ctx context.Context, tenantID uuid.UUID, integrationType IntegrationType,
		integrationIdentifier string) (map[SyncStatus]int64, error)
}

// IntegrationMappingWriter defines the interface for persisting mappings
type IntegrationMappingWriter interface {
	// FindOrCreate returns the existing mapping for the entity/target pair or
	// creates a pending one. Concurrent callers racing on the same pair all
	// receive the same row.
	FindOrCreate(ctx context.Context, mapping *IntegrationMapping) (*IntegrationMapping, error)

	// Save updates an existing mapping
	Save(ctx context.Context, mapping *IntegrationMapping) error

	// Delete deletes a mapping
	Delete(ctx context.Context, id int64) error

	// DeleteForMappable deletes all target mappings of one catalog entity
	DeleteForMappable(ctx context.Context, tenantID uuid.UUID, mappableType MappableType,
		mappableID int64) error
}

// IntegrationMappingRepository defines the full interface for mapping persistence
type IntegrationMappingRepository interface {
	IntegrationMappingReader
	IntegrationMappingFinder
	IntegrationMappingWriter
}
