package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppm/backend/internal/domain/catalog"
	"github.com/ppm/backend/internal/domain/shared"
)

// CategoryService manages the catalog category tree
type CategoryService struct {
	categories catalog.CategoryRepository
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categories catalog.CategoryRepository, publisher shared.EventPublisher, logger *zap.Logger) *CategoryService {
	return &CategoryService{
		categories: categories,
		publisher:  publisher,
		logger:     logger,
	}
}

// CreateCategory creates a category and announces it to the sync pipeline
func (s *CategoryService) CreateCategory(ctx context.Context, tenantID uuid.UUID, code, name string, parentID *int64) (*catalog.Category, error) {
	if parentID != nil {
		if _, err := s.categories.FindByID(ctx, tenantID, *parentID); err != nil {
			return nil, err
		}
	}

	category, err := catalog.NewCategory(tenantID, code, name, parentID)
	if err != nil {
		return nil, err
	}
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}

	s.publish(ctx, catalog.NewCategoryCreatedEvent(category))

	s.logger.Info("category created",
		zap.String("tenant_id", tenantID.String()),
		zap.Int64("category_id", category.ID),
		zap.String("code", code),
	)
	return category, nil
}

// RenameCategory renames a category and announces the change
func (s *CategoryService) RenameCategory(ctx context.Context, tenantID uuid.UUID, id int64, name string) (*catalog.Category, error) {
	category, err := s.categories.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := category.Rename(name); err != nil {
		return nil, err
	}
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}

	s.publish(ctx, catalog.NewCategoryUpdatedEvent(category))
	return category, nil
}

// DeleteCategory deletes a single childless category. Subtrees go through
// the bulk delete job instead.
func (s *CategoryService) DeleteCategory(ctx context.Context, tenantID uuid.UUID, id int64) error {
	if _, err := s.categories.FindByID(ctx, tenantID, id); err != nil {
		return err
	}
	children, err := s.categories.FindChildren(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return catalog.ErrCategoryHasChildren
	}

	if err := s.categories.Delete(ctx, tenantID, id); err != nil {
		return err
	}

	s.publish(ctx, catalog.NewCategoryDeletedEvent(tenantID, id, nil))
	return nil
}

// GetCategory returns one category
func (s *CategoryService) GetCategory(ctx context.Context, tenantID uuid.UUID, id int64) (*catalog.Category, error) {
	return s.categories.FindByID(ctx, tenantID, id)
}

// ListCategories returns all categories of a tenant
func (s *CategoryService) ListCategories(ctx context.Context, tenantID uuid.UUID) ([]catalog.Category, error) {
	return s.categories.FindAll(ctx, tenantID)
}

// ResyncCategory re-announces a category so the dispatcher pushes it to all
// active targets again
func (s *CategoryService) ResyncCategory(ctx context.Context, tenantID uuid.UUID, id int64) error {
	category, err := s.categories.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	s.publish(ctx, catalog.NewCategoryUpdatedEvent(category))
	return nil
}

// publish sends events to the bus; the bus never propagates handler errors,
// so a failure here only means the publish itself could not happen
func (s *CategoryService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish catalog events", zap.Error(err))
	}
}
