package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ppm/backend/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// AttributeType Aggregate
// ---------------------------------------------------------------------------

// AttributeType is a product feature such as "color" or "material"
type AttributeType struct {
	shared.TenantAggregateRoot
	// Code is the tenant-unique attribute code
	Code string
	// Name is the display name
	Name string
	// Position orders attributes in listings
	Position int
	// Active indicates whether the attribute is in use
	Active bool
}

// NewAttributeType creates a new active attribute type
func NewAttributeType(tenantID uuid.UUID, code, name string) (*AttributeType, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}
	if code == "" {
		return nil, ErrAttributeTypeInvalidCode
	}
	if name == "" {
		return nil, ErrAttributeTypeInvalidName
	}

	return &AttributeType{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Active:              true,
	}, nil
}

// Rename changes the display name
func (a *AttributeType) Rename(name string) error {
	if name == "" {
		return ErrAttributeTypeInvalidName
	}
	a.Name = name
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// ---------------------------------------------------------------------------
// AttributeValue Aggregate
// ---------------------------------------------------------------------------

// AttributeValue is one admissible value of an attribute type, such as "red"
// for "color"
type AttributeValue struct {
	shared.TenantAggregateRoot
	// AttributeTypeID is the owning attribute type
	AttributeTypeID int64
	// Value is the display value
	Value string
	// Position orders values within the type
	Position int
	// Active indicates whether the value is in use
	Active bool
}

// NewAttributeValue creates a new active attribute value
func NewAttributeValue(tenantID uuid.UUID, attributeTypeID int64, value string) (*AttributeValue, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}
	if attributeTypeID <= 0 {
		return nil, ErrAttributeTypeNotFound
	}
	if value == "" {
		return nil, ErrAttributeValueInvalid
	}

	return &AttributeValue{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		AttributeTypeID:     attributeTypeID,
		Value:               value,
		Active:              true,
	}, nil
}

// ---------------------------------------------------------------------------
// Attribute Repository Interfaces
// ---------------------------------------------------------------------------

// AttributeTypeRepository defines the interface for attribute type persistence
type AttributeTypeRepository interface {
	// FindByID finds an attribute type by its ID
	FindByID(ctx context.Context, tenantID uuid.UUID, id int64) (*AttributeType, error)

	// FindByCode finds an attribute type by its tenant-unique code
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*AttributeType, error)

	// FindAll finds all attribute types for a tenant
	FindAll(ctx context.Context, tenantID uuid.UUID) ([]AttributeType, error)

	// Save creates or updates an attribute type
	Save(ctx context.Context, attributeType *AttributeType) error

	// Delete deletes an attribute type
	Delete(ctx context.Context, tenantID uuid.UUID, id int64) error
}

// AttributeValueRepository defines the interface for attribute value persistence
type AttributeValueRepository interface {
	// FindByID finds an attribute value by its ID
	FindByID(ctx context.Context, tenantID uuid.UUID, id int64) (*AttributeValue, error)

	// FindByType finds all values of an attribute type
	FindByType(ctx context.Context, tenantID uuid.UUID, attributeTypeID int64) ([]AttributeValue, error)

	// Save creates or updates an attribute value
	Save(ctx context.Context, value *AttributeValue) error

	// Delete deletes an attribute value
	Delete(ctx context.Context, tenantID uuid.UUID, id int64) error
}
