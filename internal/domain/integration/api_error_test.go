package integration

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Category(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		want       ErrorCategory
		retryable  bool
	}{
		{"401 is authentication", 401, ErrorCategoryAuthentication, false},
		{"403 is authorization", 403, ErrorCategoryAuthorization, false},
		{"404 is not found", 404, ErrorCategoryNotFound, false},
		{"429 is rate limited", 429, ErrorCategoryRateLimited, true},
		{"500 is server error", 500, ErrorCategoryServerError, true},
		{"503 is server error", 503, ErrorCategoryServerError, true},
		{"0 is connection failed", 0, ErrorCategoryConnectionFailed, true},
		{"422 is unknown", 422, ErrorCategoryUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAPIError("boom", tt.statusCode, ErrorContext{Target: IntegrationTypePrestashop})
			assert.Equal(t, tt.want, err.Category())
			assert.Equal(t, tt.retryable, err.IsRetryable())
		})
	}
}

func TestAPIError_ContextCategoryOverride(t *testing.T) {
	// application-level error in a 200-style response carries no useful
	// status; the producer classifies explicitly
	err := NewAPIError("token rejected", 0, ErrorContext{
		Target:   IntegrationTypeBaselinker,
		Category: ErrorCategoryAuthentication,
	})
	assert.Equal(t, ErrorCategoryAuthentication, err.Category())
	assert.True(t, err.IsAuthError())
	assert.False(t, err.IsRetryable())
}

func TestAPIError_Predicates(t *testing.T) {
	assert.True(t, NewAPIError("", 401, ErrorContext{}).IsAuthError())
	assert.True(t, NewAPIError("", 403, ErrorContext{}).IsAuthError())
	assert.True(t, NewAPIError("", 404, ErrorContext{}).IsNotFound())
	assert.True(t, NewAPIError("", 429, ErrorContext{}).IsRateLimited())
	assert.False(t, NewAPIError("", 500, ErrorContext{}).IsAuthError())
}

func TestAPIError_RetryAfter(t *testing.T) {
	err := NewAPIError("slow down", 429, ErrorContext{})
	assert.Equal(t, time.Duration(0), err.RetryAfter())

	err.RetryAfterSeconds = 30
	assert.Equal(t, 30*time.Second, err.RetryAfter())
}

func TestAPIError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewConnectionError(cause, ErrorContext{Target: IntegrationTypePrestashop})

	require.ErrorIs(t, err, cause)
	assert.Equal(t, ErrorCategoryConnectionFailed, err.Category())
	assert.Contains(t, err.Error(), "prestashop")
}
