package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ppm/backend/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// Category Aggregate
// ---------------------------------------------------------------------------

// Category is a node in the catalog category tree
type Category struct {
	shared.TenantAggregateRoot
	// Code is the tenant-unique category code
	Code string
	// Name is the display name
	Name string
	// ParentID is the parent category, nil for roots
	ParentID *int64
	// Position orders siblings in the tree
	Position int
	// Active indicates whether the category is in use
	Active bool
}

// NewCategory creates a new active category
func NewCategory(tenantID uuid.UUID, code, name string, parentID *int64) (*Category, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}
	if code == "" {
		return nil, ErrCategoryInvalidCode
	}
	if name == "" {
		return nil, ErrCategoryInvalidName
	}

	return &Category{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		ParentID:            parentID,
		Active:              true,
	}, nil
}

// Rename changes the display name
func (c *Category) Rename(name string) error {
	if name == "" {
		return ErrCategoryInvalidName
	}
	c.Name = name
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// MoveTo reparents the category
func (c *Category) MoveTo(parentID *int64) error {
	if parentID != nil && *parentID == c.ID {
		return ErrCategorySelfParent
	}
	c.ParentID = parentID
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Deactivate takes the category out of use
func (c *Category) Deactivate() {
	c.Active = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// IsRoot returns true if the category has no parent
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// ---------------------------------------------------------------------------
// CategoryRepository Interface
// ---------------------------------------------------------------------------

// CategoryReader defines the interface for reading categories
type CategoryReader interface {
	// FindByID finds a category by its ID
	FindByID(ctx context.Context, tenantID uuid.UUID, id int64) (*Category, error)

	// FindByCode finds a category by its tenant-unique code
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Category, error)

	// FindChildren finds the direct children of a category
	FindChildren(ctx context.Context, tenantID uuid.UUID, parentID int64) ([]Category, error)

	// FindSubtree finds a category and all its descendants, parents before
	// children
	FindSubtree(ctx context.Context, tenantID uuid.UUID, rootID int64) ([]Category, error)

	// FindAll finds all categories for a tenant
	FindAll(ctx context.Context, tenantID uuid.UUID) ([]Category, error)
}

// CategoryWriter defines the interface for persisting categories
type CategoryWriter interface {
	// Save creates or updates a category
	Save(ctx context.Context, category *Category) error

	// Delete deletes a single category
	Delete(ctx context.Context, tenantID uuid.UUID, id int64) error
}

// CategoryRepository defines the full interface for category persistence
type CategoryRepository interface {
	CategoryReader
	CategoryWriter
}
