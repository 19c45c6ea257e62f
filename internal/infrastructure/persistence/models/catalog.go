package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ppm/backend/internal/domain/catalog"
	"github.com/ppm/backend/internal/domain/catmapping"
	"github.com/ppm/backend/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// CategoryModel
// ---------------------------------------------------------------------------

// CategoryModel is the persistence model for the Category aggregate
type CategoryModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_categories_code,priority:1"`
	Code      string    `gorm:"type:varchar(100);not null;uniqueIndex:ux_categories_code,priority:2"`
	Name      string    `gorm:"type:varchar(255);not null"`
	ParentID  *int64    `gorm:"index"`
	Position  int       `gorm:"not null;default:0"`
	Active    bool      `gorm:"not null;default:true"`
	Version   int       `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category aggregate
func (m *CategoryModel) ToDomain() *catalog.Category {
	c := &catalog.Category{
		Code:     m.Code,
		Name:     m.Name,
		ParentID: m.ParentID,
		Position: m.Position,
		Active:   m.Active,
	}
	c.TenantAggregateRoot = rehydrateAggregate(m.TenantID, m.ID, m.Version, m.CreatedAt, m.UpdatedAt)
	return c
}

// FromDomain populates the persistence model from a domain aggregate
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.ID = c.ID
	m.TenantID = c.TenantID
	m.Code = c.Code
	m.Name = c.Name
	m.ParentID = c.ParentID
	m.Position = c.Position
	m.Active = c.Active
	m.Version = c.Version
	m.CreatedAt = c.CreatedAt
	m.UpdatedAt = c.UpdatedAt
}

// ---------------------------------------------------------------------------
// ProductModel
// ---------------------------------------------------------------------------

// ProductModel is the persistence model for the Product aggregate. The
// category_mappings column stores the per-target canonical mapping
// structures as one JSON document keyed by target key.
type ProductModel struct {
	ID                   int64           `gorm:"primaryKey;autoIncrement"`
	TenantID             uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:ux_products_sku,priority:1"`
	SKU                  string          `gorm:"type:varchar(100);not null;uniqueIndex:ux_products_sku,priority:2"`
	Name                 string          `gorm:"type:varchar(255);not null"`
	Description          string          `gorm:"type:text"`
	Price                decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Quantity             decimal.Decimal `gorm:"type:numeric(12,3);not null;default:0"`
	Active               bool            `gorm:"not null;default:true"`
	CategoryMappingsJSON string          `gorm:"type:jsonb;column:category_mappings"`
	Version              int             `gorm:"not null;default:1"`
	CreatedAt            time.Time       `gorm:"not null"`
	UpdatedAt            time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product aggregate.
// Category mappings are not decoded here; callers use
// DecodeCategoryMappings so they can log degradation.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		SKU:         m.SKU,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Quantity:    m.Quantity,
		Active:      m.Active,
	}
	p.TenantAggregateRoot = rehydrateAggregate(m.TenantID, m.ID, m.Version, m.CreatedAt, m.UpdatedAt)
	return p
}

// DecodeCategoryMappings decodes and normalizes the category_mappings
// column. Every per-target value goes through legacy-format conversion, so
// rows written by older code come back canonical. Unreadable values degrade
// to the canonical empty structure; the returned error says what was
// degraded so the caller can log it, and is non-nil only when degradation
// happened.
func (m *ProductModel) DecodeCategoryMappings() (catalog.CategoryMappings, error) {
	result := make(catalog.CategoryMappings)
	if m.CategoryMappingsJSON == "" || m.CategoryMappingsJSON == "{}" || m.CategoryMappingsJSON == "null" {
		return result, nil
	}

	var perTarget map[string]interface{}
	if err := json.Unmarshal([]byte(m.CategoryMappingsJSON), &perTarget); err != nil {
		return result, fmt.Errorf("category_mappings column unreadable, degraded to empty: %w", err)
	}

	var degraded error
	for targetKey, raw := range perTarget {
		mapping, err := catmapping.ConvertLegacy(raw)
		if err != nil {
			result[targetKey] = catmapping.Empty()
			degraded = fmt.Errorf("category mapping for target %q unreadable, degraded to empty: %w", targetKey, err)
			continue
		}
		result[targetKey] = mapping
	}
	return result, degraded
}

// EncodeCategoryMappings validates and serializes the per-target mappings
// into the category_mappings column
func (m *ProductModel) EncodeCategoryMappings(mappings catalog.CategoryMappings) error {
	if len(mappings) == 0 {
		m.CategoryMappingsJSON = "{}"
		return nil
	}
	for targetKey, mapping := range mappings {
		if err := catmapping.Validate(mapping); err != nil {
			return fmt.Errorf("category mapping for target %q: %w", targetKey, err)
		}
	}
	data, err := json.Marshal(mappings)
	if err != nil {
		return fmt.Errorf("failed to marshal category mappings: %w", err)
	}
	m.CategoryMappingsJSON = string(data)
	return nil
}

// FromDomain populates the persistence model from a domain aggregate
func (m *ProductModel) FromDomain(p *catalog.Product) error {
	m.ID = p.ID
	m.TenantID = p.TenantID
	m.SKU = p.SKU
	m.Name = p.Name
	m.Description = p.Description
	m.Price = p.Price
	m.Quantity = p.Quantity
	m.Active = p.Active
	m.Version = p.Version
	m.CreatedAt = p.CreatedAt
	m.UpdatedAt = p.UpdatedAt
	return m.EncodeCategoryMappings(p.CategoryMappings)
}

// ---------------------------------------------------------------------------
// Attribute models
// ---------------------------------------------------------------------------

// AttributeTypeModel is the persistence model for the AttributeType aggregate
type AttributeTypeModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_attribute_types_code,priority:1"`
	Code      string    `gorm:"type:varchar(100);not null;uniqueIndex:ux_attribute_types_code,priority:2"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Position  int       `gorm:"not null;default:0"`
	Active    bool      `gorm:"not null;default:true"`
	Version   int       `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AttributeTypeModel) TableName() string {
	return "attribute_types"
}

// ToDomain converts the persistence model to a domain AttributeType aggregate
func (m *AttributeTypeModel) ToDomain() *catalog.AttributeType {
	a := &catalog.AttributeType{
		Code:     m.Code,
		Name:     m.Name,
		Position: m.Position,
		Active:   m.Active,
	}
	a.TenantAggregateRoot = rehydrateAggregate(m.TenantID, m.ID, m.Version, m.CreatedAt, m.UpdatedAt)
	return a
}

// FromDomain populates the persistence model from a domain aggregate
func (m *AttributeTypeModel) FromDomain(a *catalog.AttributeType) {
	m.ID = a.ID
	m.TenantID = a.TenantID
	m.Code = a.Code
	m.Name = a.Name
	m.Position = a.Position
	m.Active = a.Active
	m.Version = a.Version
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
}

// AttributeValueModel is the persistence model for the AttributeValue aggregate
type AttributeValueModel struct {
	ID              int64     `gorm:"primaryKey;autoIncrement"`
	TenantID        uuid.UUID `gorm:"type:uuid;not null;index"`
	AttributeTypeID int64     `gorm:"not null;index"`
	Value           string    `gorm:"type:varchar(255);not null"`
	Position        int       `gorm:"not null;default:0"`
	Active          bool      `gorm:"not null;default:true"`
	Version         int       `gorm:"not null;default:1"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AttributeValueModel) TableName() string {
	return "attribute_values"
}

// ToDomain converts the persistence model to a domain AttributeValue aggregate
func (m *AttributeValueModel) ToDomain() *catalog.AttributeValue {
	v := &catalog.AttributeValue{
		AttributeTypeID: m.AttributeTypeID,
		Value:           m.Value,
		Position:        m.Position,
		Active:          m.Active,
	}
	v.TenantAggregateRoot = rehydrateAggregate(m.TenantID, m.ID, m.Version, m.CreatedAt, m.UpdatedAt)
	return v
}

// FromDomain populates the persistence model from a domain aggregate
func (m *AttributeValueModel) FromDomain(v *catalog.AttributeValue) {
	m.ID = v.ID
	m.TenantID = v.TenantID
	m.AttributeTypeID = v.AttributeTypeID
	m.Value = v.Value
	m.Position = v.Position
	m.Active = v.Active
	m.Version = v.Version
	m.CreatedAt = v.CreatedAt
	m.UpdatedAt = v.UpdatedAt
}

// rehydrateAggregate rebuilds the embedded aggregate root from persisted
// identity fields
func rehydrateAggregate(tenantID uuid.UUID, id int64, version int, createdAt, updatedAt time.Time) shared.TenantAggregateRoot {
	root := shared.NewTenantAggregateRoot(tenantID)
	root.ID = id
	root.Version = version
	root.CreatedAt = createdAt
	root.UpdatedAt = updatedAt
	return root
}
