package sync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppm/backend/internal/domain/catalog"
	"github.com/ppm/backend/internal/domain/integration"
	"github.com/ppm/backend/internal/domain/shared"
)

// MappingCleanupHandler removes integration mapping rows when their catalog
// entity is deleted, so stale external IDs cannot be reused by a later
// entity with the same database ID.
type MappingCleanupHandler struct {
	mappings integration.IntegrationMappingWriter
	logger   *zap.Logger
}

// NewMappingCleanupHandler creates a new MappingCleanupHandler
func NewMappingCleanupHandler(mappings integration.IntegrationMappingWriter, logger *zap.Logger) *MappingCleanupHandler {
	return &MappingCleanupHandler{mappings: mappings, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *MappingCleanupHandler) EventTypes() []string {
	return []string{catalog.EventTypeCategoryDeleted}
}

// Handle removes all target mappings of the deleted category
func (h *MappingCleanupHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	deleted, ok := event.(*catalog.CategoryDeletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			catalog.EventTypeCategoryDeleted, event.EventType())
	}

	err := h.mappings.DeleteForMappable(ctx, event.TenantID(),
		integration.MappableTypeCategory, deleted.CategoryID)
	if err != nil {
		h.logger.Error("failed to clean up integration mappings",
			zap.String("tenant_id", event.TenantID().String()),
			zap.Int64("category_id", deleted.CategoryID),
			zap.Error(err),
		)
		return err
	}

	h.logger.Debug("integration mappings cleaned up",
		zap.String("tenant_id", event.TenantID().String()),
		zap.Int64("category_id", deleted.CategoryID),
	)
	return nil
}

var _ shared.EventHandler = (*MappingCleanupHandler)(nil)
