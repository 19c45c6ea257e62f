package handler

import (
	"github.com/gin-gonic/gin"

	catalogapp "github.com/ppm/backend/internal/application/catalog"
	"github.com/ppm/backend/internal/domain/catalog"
)

// AttributeHandler handles attribute type and value API endpoints
type AttributeHandler struct {
	BaseHandler
	attributes *catalogapp.AttributeService
}

// NewAttributeHandler creates a new AttributeHandler
func NewAttributeHandler(attributes *catalogapp.AttributeService) *AttributeHandler {
	return &AttributeHandler{attributes: attributes}
}

// CreateAttributeTypeRequest represents a request to create an attribute type
type CreateAttributeTypeRequest struct {
	Code string `json:"code" binding:"required,min=1,max=100"`
	Name string `json:"name" binding:"required,min=1,max=255"`
}

// CreateAttributeValueRequest represents a request to create an attribute value
type CreateAttributeValueRequest struct {
	Value string `json:"value" binding:"required,min=1,max=255"`
}

// AttributeTypeResponse represents an attribute type in responses
type AttributeTypeResponse struct {
	ID     int64  `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// AttributeValueResponse represents an attribute value in responses
type AttributeValueResponse struct {
	ID              int64  `json:"id"`
	AttributeTypeID int64  `json:"attribute_type_id"`
	Value           string `json:"value"`
	Active          bool   `json:"active"`
}

func toAttributeTypeResponse(attrType *catalog.AttributeType) AttributeTypeResponse {
	return AttributeTypeResponse{
		ID:     attrType.ID,
		Code:   attrType.Code,
		Name:   attrType.Name,
		Active: attrType.Active,
	}
}

func toAttributeValueResponse(value *catalog.AttributeValue) AttributeValueResponse {
	return AttributeValueResponse{
		ID:              value.ID,
		AttributeTypeID: value.AttributeTypeID,
		Value:           value.Value,
		Active:          value.Active,
	}
}

// RegisterRoutes registers attribute routes
func (h *AttributeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	attributes := rg.Group("/catalog/attribute-types")
	{
		attributes.POST("", h.CreateType)
		attributes.GET("", h.ListTypes)
		attributes.POST("/:id/values", h.CreateValue)
		attributes.GET("/:id/values", h.ListValues)
	}
}

// CreateType creates a new attribute type
func (h *AttributeHandler) CreateType(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant ID")
		return
	}

	var req CreateAttributeTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	attrType, err := h.attributes.CreateAttributeType(c.Request.Context(), tenantID, req.Code, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toAttributeTypeResponse(attrType))
}

// ListTypes returns all attribute types of the tenant
func (h *AttributeHandler) ListTypes(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant ID")
		return
	}

	types, err := h.attributes.ListAttributeTypes(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]AttributeTypeResponse, 0, len(types))
	for i := range types {
		responses = append(responses, toAttributeTypeResponse(&types[i]))
	}
	h.Success(c, responses)
}

// CreateValue creates a new value under an attribute type
func (h *AttributeHandler) CreateValue(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant ID")
		return
	}
	typeID, err := getIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid attribute type ID")
		return
	}

	var req CreateAttributeValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	value, err := h.attributes.CreateAttributeValue(c.Request.Context(), tenantID, typeID, req.Value)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toAttributeValueResponse(value))
}

// ListValues returns all values of an attribute type
func (h *AttributeHandler) ListValues(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "invalid tenant ID")
		return
	}
	typeID, err := getIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid attribute type ID")
		return
	}

	values, err := h.attributes.ListAttributeValues(c.Request.Context(), tenantID, typeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]AttributeValueResponse, 0, len(values))
	for i := range values {
		responses = append(responses, toAttributeValueResponse(&values[i]))
	}
	h.Success(c, responses)
}
