package integration

import "errors"

var (
	// Target errors
	ErrTargetNotFound      = errors.New("integration: target not found")
	ErrTargetNotActive     = errors.New("integration: target not active")
	ErrClientNotRegistered = errors.New("integration: no client registered for integration type")
	ErrTargetRequestFailed = errors.New("integration: target request failed")
	ErrTargetUnavailable   = errors.New("integration: target temporarily unavailable")
	ErrInvalidResponse     = errors.New("integration: invalid target response")
	ErrUnsupportedRemote   = errors.New("integration: unsupported remote type")

	// Mapping errors
	ErrMappingNotFound          = errors.New("integration: mapping not found")
	ErrMappingInvalidTenantID   = errors.New("integration: invalid tenant ID")
	ErrMappingInvalidMappable   = errors.New("integration: invalid mappable reference")
	ErrMappingInvalidType       = errors.New("integration: invalid integration type")
	ErrMappingInvalidIdentifier = errors.New("integration: invalid integration identifier")
	ErrMappingMissingExternalID = errors.New("integration: mapping has no external ID")
)
