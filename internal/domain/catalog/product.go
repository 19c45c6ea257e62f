package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ppm/backend/internal/domain/catmapping"
	"github.com/ppm/backend/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// Product Aggregate
// ---------------------------------------------------------------------------

// CategoryMappings holds one canonical category-mapping structure per
// integration target instance, keyed by the target key
// ("<integration_type>:<identifier>"). The whole map is persisted as a single
// JSON column and normalized through catmapping on every read and write.
type CategoryMappings map[string]*catmapping.CategoryMapping

// Clone returns a deep copy of the mappings
func (cm CategoryMappings) Clone() CategoryMappings {
	if cm == nil {
		return nil
	}
	clone := make(CategoryMappings, len(cm))
	for key, mapping := range cm {
		clone[key] = mapping.Clone()
	}
	return clone
}

// Product is a sellable catalog item
type Product struct {
	shared.TenantAggregateRoot
	// SKU is the tenant-unique stock keeping unit
	SKU string
	// Name is the display name
	Name string
	// Description is the long description
	Description string
	// Price is the base selling price
	Price decimal.Decimal
	// Quantity is the available stock quantity
	Quantity decimal.Decimal
	// Active indicates whether the product is sellable
	Active bool
	// CategoryMappings records the per-target category selection and its
	// mapped external IDs
	CategoryMappings CategoryMappings
}

// NewProduct creates a new active product with no category mappings
func NewProduct(tenantID uuid.UUID, sku, name string, price decimal.Decimal) (*Product, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}
	if sku == "" {
		return nil, ErrProductInvalidSKU
	}
	if name == "" {
		return nil, ErrProductInvalidName
	}

	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SKU:                 sku,
		Name:                name,
		Price:               price,
		Quantity:            decimal.Zero,
		Active:              true,
		CategoryMappings:    make(CategoryMappings),
	}, nil
}

// CategoryMappingFor returns the canonical mapping for one target key,
// creating the empty structure in place when none is recorded yet
func (p *Product) CategoryMappingFor(targetKey string) *catmapping.CategoryMapping {
	if p.CategoryMappings == nil {
		p.CategoryMappings = make(CategoryMappings)
	}
	if mapping, ok := p.CategoryMappings[targetKey]; ok && mapping != nil {
		return mapping
	}
	mapping := catmapping.Empty()
	p.CategoryMappings[targetKey] = mapping
	return mapping
}

// SetCategoryMapping replaces the mapping for one target key after
// validating it
func (p *Product) SetCategoryMapping(targetKey string, mapping *catmapping.CategoryMapping) error {
	if err := catmapping.Validate(mapping); err != nil {
		return err
	}
	if p.CategoryMappings == nil {
		p.CategoryMappings = make(CategoryMappings)
	}
	p.CategoryMappings[targetKey] = mapping
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// UpdateDetails changes the product's descriptive fields
func (p *Product) UpdateDetails(name, description string, price decimal.Decimal) error {
	if name == "" {
		return ErrProductInvalidName
	}
	p.Name = name
	p.Description = description
	p.Price = price
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetQuantity replaces the available stock quantity
func (p *Product) SetQuantity(quantity decimal.Decimal) {
	p.Quantity = quantity
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Deactivate takes the product off sale
func (p *Product) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// ---------------------------------------------------------------------------
// ProductRepository Interface
// ---------------------------------------------------------------------------

// ProductReader defines the interface for reading products
type ProductReader interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, tenantID uuid.UUID, id int64) (*Product, error)

	// FindBySKU finds a product by its tenant-unique SKU
	FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*Product, error)

	// FindByCategory finds all products whose category mappings select the
	// given internal category on any target
	FindByCategory(ctx context.Context, tenantID uuid.UUID, categoryID int64) ([]Product, error)
}

// ProductWriter defines the interface for persisting products
type ProductWriter interface {
	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// Delete deletes a product
	Delete(ctx context.Context, tenantID uuid.UUID, id int64) error
}

// ProductRepository defines the full interface for product persistence
type ProductRepository interface {
	ProductReader
	ProductWriter
}
