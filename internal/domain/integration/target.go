package integration

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// RemoteType represents the kind of resource on an integration target
// ---------------------------------------------------------------------------

// RemoteType represents the kind of resource on an integration target
type RemoteType string

const (
	// RemoteTypeCategories is the target's category resource
	RemoteTypeCategories RemoteType = "categories"
	// RemoteTypeProducts is the target's product resource
	RemoteTypeProducts RemoteType = "products"
	// RemoteTypeProductFeatures is the target's feature (attribute type) resource
	RemoteTypeProductFeatures RemoteType = "product_features"
	// RemoteTypeProductFeatureValues is the target's feature value resource
	RemoteTypeProductFeatureValues RemoteType = "product_feature_values"
)

// IsValid returns true if the remote type is valid
func (t RemoteType) IsValid() bool {
	switch t {
	case RemoteTypeCategories, RemoteTypeProducts,
		RemoteTypeProductFeatures, RemoteTypeProductFeatureValues:
		return true
	default:
		return false
	}
}

// String returns the string representation of RemoteType
func (t RemoteType) String() string {
	return string(t)
}

// RemoteTypeFor returns the remote resource a mappable type syncs to
func RemoteTypeFor(mappable MappableType) (RemoteType, bool) {
	switch mappable {
	case MappableTypeProduct:
		return RemoteTypeProducts, true
	case MappableTypeCategory:
		return RemoteTypeCategories, true
	case MappableTypeAttributeType:
		return RemoteTypeProductFeatures, true
	case MappableTypeAttributeValue:
		return RemoteTypeProductFeatureValues, true
	default:
		return "", false
	}
}

// ---------------------------------------------------------------------------
// Target Value Object
// ---------------------------------------------------------------------------

// Target identifies one configured integration target instance. A tenant may
// run several instances of the same integration type (two PrestaShop shops),
// told apart by Identifier.
type Target struct {
	// TenantID is the tenant the target belongs to
	TenantID uuid.UUID
	// Type is the kind of integration
	Type IntegrationType
	// Identifier distinguishes instances of the same type
	Identifier string
	// Name is the display name
	Name string
	// Active indicates whether the target receives sync traffic
	Active bool
}

// Key returns a stable identity string for the target instance
func (t Target) Key() string {
	return string(t.Type) + ":" + t.Identifier
}

// TargetProvider resolves the targets that should receive sync traffic.
// Implementations read the configured target table.
type TargetProvider interface {
	// ActiveTargets returns all active targets for a tenant
	ActiveTargets(ctx context.Context, tenantID uuid.UUID) ([]Target, error)

	// FindTarget returns one configured target instance, active or not
	FindTarget(ctx context.Context, tenantID uuid.UUID, integrationType IntegrationType,
		identifier string) (*Target, error)
}

// ---------------------------------------------------------------------------
// Remote payloads
// ---------------------------------------------------------------------------

// RemoteFeatureValue associates a feature with a value on the target, both
// sides by external ID
type RemoteFeatureValue struct {
	// FeatureID is the feature's external ID
	FeatureID string
	// ValueID is the value's external ID
	ValueID string
}

// RemoteObject is the target-neutral payload pushed to an integration
// target. Clients translate it into their wire format; unused fields are
// ignored per remote type.
type RemoteObject struct {
	// RemoteType is the resource kind this object belongs to
	RemoteType RemoteType
	// ExternalID is the target-side ID, empty when the push should create
	ExternalID string
	// Code is our internal code or SKU for the entity
	Code string
	// Name is the display name
	Name string
	// Description is the long description, products only
	Description string
	// ParentExternalID is the parent category's external ID, categories only
	ParentExternalID string
	// Price is the selling price, products only
	Price decimal.Decimal
	// Quantity is the available quantity, products only
	Quantity decimal.Decimal
	// CategoryExternalIDs are the external IDs of the product's categories
	CategoryExternalIDs []string
	// DefaultCategoryExternalID is the external ID of the primary category
	DefaultCategoryExternalID string
	// FeatureValues are the product's attribute associations by external ID
	FeatureValues []RemoteFeatureValue
	// Active indicates whether the entity should be visible on the target
	Active bool
}

// ---------------------------------------------------------------------------
// TargetClient Port Interface
// ---------------------------------------------------------------------------

// TargetClient is the port interface for pushing catalog data to one kind of
// integration target. Concrete clients (PrestaShop, Baselinker) live in the
// infrastructure layer. Failed calls return *APIError so callers can
// classify.
type TargetClient interface {
	// Type returns the integration type this client handles
	Type() IntegrationType

	// CreateOrUpdate pushes the object to the target. An empty
	// obj.ExternalID creates; a non-empty one updates. Returns the
	// target-side ID of the created or updated resource.
	CreateOrUpdate(ctx context.Context, target Target, obj RemoteObject) (string, error)

	// Get retrieves a resource from the target
	Get(ctx context.Context, target Target, remoteType RemoteType, externalID string) (*RemoteObject, error)

	// Delete removes a resource from the target
	Delete(ctx context.Context, target Target, remoteType RemoteType, externalID string) error
}
