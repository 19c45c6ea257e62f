package catalog

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/ppm/backend/internal/domain/shared"
)

// Event type constants
const (
	EventTypeCategoryCreated       = "catalog.category.created"
	EventTypeCategoryUpdated       = "catalog.category.updated"
	EventTypeCategoryDeleted       = "catalog.category.deleted"
	EventTypeProductCreated        = "catalog.product.created"
	EventTypeProductUpdated        = "catalog.product.updated"
	EventTypeAttributeTypeCreated  = "catalog.attribute_type.created"
	EventTypeAttributeValueCreated = "catalog.attribute_value.created"
)

// ---------------------------------------------------------------------------
// Category events
// ---------------------------------------------------------------------------

// CategoryCreatedEvent is raised after a category is first persisted
type CategoryCreatedEvent struct {
	shared.BaseDomainEvent
	CategoryID int64  `json:"category_id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	ParentID   *int64 `json:"parent_id,omitempty"`
}

// NewCategoryCreatedEvent creates a CategoryCreatedEvent
func NewCategoryCreatedEvent(category *Category) *CategoryCreatedEvent {
	return &CategoryCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeCategoryCreated, "Category",
			strconv.FormatInt(category.ID, 10), category.TenantID),
		CategoryID: category.ID,
		Code:       category.Code,
		Name:       category.Name,
		ParentID:   category.ParentID,
	}
}

// CategoryUpdatedEvent is raised after a category's fields change
type CategoryUpdatedEvent struct {
	shared.BaseDomainEvent
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
}

// NewCategoryUpdatedEvent creates a CategoryUpdatedEvent
func NewCategoryUpdatedEvent(category *Category) *CategoryUpdatedEvent {
	return &CategoryUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeCategoryUpdated, "Category",
			strconv.FormatInt(category.ID, 10), category.TenantID),
		CategoryID: category.ID,
		Name:       category.Name,
	}
}

// CategoryDeletedEvent is raised after a category is removed
type CategoryDeletedEvent struct {
	shared.BaseDomainEvent
	CategoryID int64 `json:"category_id"`
	// JobID links the deletion to a bulk job when it was part of one
	JobID *uuid.UUID `json:"job_id,omitempty"`
}

// NewCategoryDeletedEvent creates a CategoryDeletedEvent
func NewCategoryDeletedEvent(tenantID uuid.UUID, categoryID int64, jobID *uuid.UUID) *CategoryDeletedEvent {
	return &CategoryDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeCategoryDeleted, "Category",
			strconv.FormatInt(categoryID, 10), tenantID),
		CategoryID: categoryID,
		JobID:      jobID,
	}
}

// ---------------------------------------------------------------------------
// Product events
// ---------------------------------------------------------------------------

// ProductCreatedEvent is raised after a product is first persisted
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID int64  `json:"product_id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
}

// NewProductCreatedEvent creates a ProductCreatedEvent
func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeProductCreated, "Product",
			strconv.FormatInt(product.ID, 10), product.TenantID),
		ProductID: product.ID,
		SKU:       product.SKU,
		Name:      product.Name,
	}
}

// ProductUpdatedEvent is raised after a product's fields or category
// mappings change
type ProductUpdatedEvent struct {
	shared.BaseDomainEvent
	ProductID int64  `json:"product_id"`
	SKU       string `json:"sku"`
}

// NewProductUpdatedEvent creates a ProductUpdatedEvent
func NewProductUpdatedEvent(product *Product) *ProductUpdatedEvent {
	return &ProductUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeProductUpdated, "Product",
			strconv.FormatInt(product.ID, 10), product.TenantID),
		ProductID: product.ID,
		SKU:       product.SKU,
	}
}

// ---------------------------------------------------------------------------
// Attribute events
// ---------------------------------------------------------------------------

// AttributeTypeCreatedEvent is raised after an attribute type is first
// persisted
type AttributeTypeCreatedEvent struct {
	shared.BaseDomainEvent
	AttributeTypeID int64  `json:"attribute_type_id"`
	Code            string `json:"code"`
	Name            string `json:"name"`
}

// NewAttributeTypeCreatedEvent creates an AttributeTypeCreatedEvent
func NewAttributeTypeCreatedEvent(attributeType *AttributeType) *AttributeTypeCreatedEvent {
	return &AttributeTypeCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeAttributeTypeCreated, "AttributeType",
			strconv.FormatInt(attributeType.ID, 10), attributeType.TenantID),
		AttributeTypeID: attributeType.ID,
		Code:            attributeType.Code,
		Name:            attributeType.Name,
	}
}

// AttributeValueCreatedEvent is raised after an attribute value is first
// persisted
type AttributeValueCreatedEvent struct {
	shared.BaseDomainEvent
	AttributeValueID int64  `json:"attribute_value_id"`
	AttributeTypeID  int64  `json:"attribute_type_id"`
	Value            string `json:"value"`
}

// NewAttributeValueCreatedEvent creates an AttributeValueCreatedEvent
func NewAttributeValueCreatedEvent(value *AttributeValue) *AttributeValueCreatedEvent {
	return &AttributeValueCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeAttributeValueCreated, "AttributeValue",
			strconv.FormatInt(value.ID, 10), value.TenantID),
		AttributeValueID: value.ID,
		AttributeTypeID:  value.AttributeTypeID,
		Value:            value.Value,
	}
}
