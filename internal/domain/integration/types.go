package integration

// ---------------------------------------------------------------------------
// IntegrationType represents the kind of external integration target
// ---------------------------------------------------------------------------

// IntegrationType represents the kind of external integration target
type IntegrationType string

const (
	// IntegrationTypeBaselinker represents the Baselinker marketplace hub
	IntegrationTypeBaselinker IntegrationType = "baselinker"
	// IntegrationTypePrestashop represents a PrestaShop storefront
	IntegrationTypePrestashop IntegrationType = "prestashop"
	// IntegrationTypeSubiektGT represents the Subiekt GT ERP bridge
	IntegrationTypeSubiektGT IntegrationType = "subiekt_gt"
	// IntegrationTypeDynamics represents the Microsoft Dynamics ERP bridge
	IntegrationTypeDynamics IntegrationType = "dynamics"
)

// IsValid returns true if the integration type is valid
func (t IntegrationType) IsValid() bool {
	switch t {
	case IntegrationTypeBaselinker, IntegrationTypePrestashop,
		IntegrationTypeSubiektGT, IntegrationTypeDynamics:
		return true
	default:
		return false
	}
}

// String returns the string representation of IntegrationType
func (t IntegrationType) String() string {
	return string(t)
}

// DisplayName returns a human-readable name for the integration type
func (t IntegrationType) DisplayName() string {
	switch t {
	case IntegrationTypeBaselinker:
		return "Baselinker"
	case IntegrationTypePrestashop:
		return "PrestaShop"
	case IntegrationTypeSubiektGT:
		return "Subiekt GT"
	case IntegrationTypeDynamics:
		return "Microsoft Dynamics"
	default:
		return string(t)
	}
}

// ---------------------------------------------------------------------------
// MappableType represents the kind of catalog entity a mapping belongs to
// ---------------------------------------------------------------------------

// MappableType represents the kind of catalog entity a mapping belongs to
type MappableType string

const (
	// MappableTypeProduct maps a catalog product
	MappableTypeProduct MappableType = "product"
	// MappableTypeCategory maps a catalog category
	MappableTypeCategory MappableType = "category"
	// MappableTypeAttributeType maps an attribute type (feature)
	MappableTypeAttributeType MappableType = "attribute_type"
	// MappableTypeAttributeValue maps an attribute value (feature value)
	MappableTypeAttributeValue MappableType = "attribute_value"
)

// IsValid returns true if the mappable type is valid
func (t MappableType) IsValid() bool {
	switch t {
	case MappableTypeProduct, MappableTypeCategory,
		MappableTypeAttributeType, MappableTypeAttributeValue:
		return true
	default:
		return false
	}
}

// String returns the string representation of MappableType
func (t MappableType) String() string {
	return string(t)
}

// ---------------------------------------------------------------------------
// SyncStatus represents the synchronization state of a mapping
// ---------------------------------------------------------------------------

// SyncStatus represents the synchronization state of a mapping
type SyncStatus string

const (
	// SyncStatusPending indicates the mapping has not been pushed yet
	SyncStatusPending SyncStatus = "pending"
	// SyncStatusSynced indicates the last push succeeded
	SyncStatusSynced SyncStatus = "synced"
	// SyncStatusError indicates the last push failed permanently
	SyncStatusError SyncStatus = "error"
)

// IsValid returns true if the status is valid
func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncStatusPending, SyncStatusSynced, SyncStatusError:
		return true
	default:
		return false
	}
}

// String returns the string representation of SyncStatus
func (s SyncStatus) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// SyncDirection
// ---------------------------------------------------------------------------

// SyncDirection represents which way data flows for a mapping
type SyncDirection string

const (
	// SyncDirectionPush indicates data flows from us to the target
	SyncDirectionPush SyncDirection = "push"
	// SyncDirectionPull indicates data flows from the target to us
	SyncDirectionPull SyncDirection = "pull"
	// SyncDirectionBoth indicates data flows both ways
	SyncDirectionBoth SyncDirection = "both"
)

// IsValid returns true if the direction is valid
func (d SyncDirection) IsValid() bool {
	switch d {
	case SyncDirectionPush, SyncDirectionPull, SyncDirectionBoth:
		return true
	default:
		return false
	}
}

// String returns the string representation of SyncDirection
func (d SyncDirection) String() string {
	return string(d)
}

// ---------------------------------------------------------------------------
// ErrorCategory classifies a failed call to an integration target
// ---------------------------------------------------------------------------

// ErrorCategory classifies a failed call to an integration target
type ErrorCategory string

const (
	// ErrorCategoryAuthentication indicates the credentials were rejected (401)
	ErrorCategoryAuthentication ErrorCategory = "authentication_failed"
	// ErrorCategoryAuthorization indicates the credentials lack permission (403)
	ErrorCategoryAuthorization ErrorCategory = "authorization_failed"
	// ErrorCategoryNotFound indicates the remote resource does not exist (404)
	ErrorCategoryNotFound ErrorCategory = "not_found"
	// ErrorCategoryRateLimited indicates the target throttled the call (429)
	ErrorCategoryRateLimited ErrorCategory = "rate_limited"
	// ErrorCategoryServerError indicates the target failed internally (5xx)
	ErrorCategoryServerError ErrorCategory = "server_error"
	// ErrorCategoryConnectionFailed indicates no HTTP response was received
	ErrorCategoryConnectionFailed ErrorCategory = "connection_failed"
	// ErrorCategoryUnknown indicates an unclassifiable failure
	ErrorCategoryUnknown ErrorCategory = "unknown"
)

// IsValid returns true if the category is valid
func (c ErrorCategory) IsValid() bool {
	switch c {
	case ErrorCategoryAuthentication, ErrorCategoryAuthorization,
		ErrorCategoryNotFound, ErrorCategoryRateLimited,
		ErrorCategoryServerError, ErrorCategoryConnectionFailed,
		ErrorCategoryUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	return string(c)
}

// IsRetryable returns true if calls failing with this category are worth
// retrying. Server errors and connection failures are transient; rate limits
// clear once the window passes. Auth failures and missing resources do not
// fix themselves.
func (c ErrorCategory) IsRetryable() bool {
	switch c {
	case ErrorCategoryServerError, ErrorCategoryConnectionFailed, ErrorCategoryRateLimited:
		return true
	default:
		return false
	}
}
