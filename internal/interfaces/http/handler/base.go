package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ppm/backend/internal/domain/bulk"
	"github.com/ppm/backend/internal/domain/catalog"
	"github.com/ppm/backend/internal/domain/catmapping"
	"github.com/ppm/backend/internal/domain/integration"
	"github.com/ppm/backend/internal/domain/shared"
	"github.com/ppm/backend/internal/interfaces/http/dto"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getTenantID extracts the tenant ID from the X-Tenant-ID header, falling
// back to the development tenant
func getTenantID(c *gin.Context) (uuid.UUID, error) {
	tenantIDStr := c.GetHeader("X-Tenant-ID")
	if tenantIDStr == "" {
		return uuid.MustParse("00000000-0000-0000-0000-000000000001"), nil
	}
	return uuid.Parse(tenantIDStr)
}

// getIDParam parses an int64 path parameter
func getIDParam(c *gin.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Accepted sends a 202 accepted response
func (h *BaseHandler) Accepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponse(code, message))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Conflict sends a 409 conflict response
func (h *BaseHandler) Conflict(c *gin.Context, message string) {
	h.Error(c, http.StatusConflict, dto.ErrCodeConflict, message)
}

// HandleError maps domain errors onto HTTP responses. Not-found sentinels
// become 404s, validation and state errors become 422s, everything else is a
// 500 with the message withheld.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrAttributeTypeNotFound),
		errors.Is(err, catalog.ErrAttributeValueNotFound),
		errors.Is(err, bulk.ErrJobProgressNotFound),
		errors.Is(err, integration.ErrMappingNotFound),
		errors.Is(err, integration.ErrTargetNotFound):
		h.NotFound(c, err.Error())
	case errors.Is(err, catalog.ErrCategoryHasChildren):
		h.Conflict(c, err.Error())
	default:
		var validationErr *catmapping.ValidationError
		if errors.As(err, &validationErr) {
			h.Error(c, http.StatusUnprocessableEntity, dto.ErrCodeValidation, validationErr.Error())
			return
		}
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			h.Error(c, dto.GetHTTPStatus(dto.ErrCodeInvalidState), domainErr.Code, domainErr.Message)
			return
		}
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "internal error")
	}
}
