package catalog

import "errors"

var (
	// Category errors
	ErrCategoryNotFound    = errors.New("catalog: category not found")
	ErrCategoryInvalidName = errors.New("catalog: category name cannot be empty")
	ErrCategoryInvalidCode = errors.New("catalog: category code cannot be empty")
	ErrCategorySelfParent  = errors.New("catalog: category cannot be its own parent")
	ErrCategoryHasChildren = errors.New("catalog: category has child categories")

	// Product errors
	ErrProductNotFound    = errors.New("catalog: product not found")
	ErrProductInvalidSKU  = errors.New("catalog: product SKU cannot be empty")
	ErrProductInvalidName = errors.New("catalog: product name cannot be empty")

	// Attribute errors
	ErrAttributeTypeNotFound    = errors.New("catalog: attribute type not found")
	ErrAttributeTypeInvalidCode = errors.New("catalog: attribute type code cannot be empty")
	ErrAttributeTypeInvalidName = errors.New("catalog: attribute type name cannot be empty")
	ErrAttributeValueNotFound   = errors.New("catalog: attribute value not found")
	ErrAttributeValueInvalid    = errors.New("catalog: attribute value cannot be empty")
	ErrAttributeValueWrongType  = errors.New("catalog: attribute value does not belong to type")

	// Tenant errors
	ErrInvalidTenantID = errors.New("catalog: invalid tenant ID")
)
