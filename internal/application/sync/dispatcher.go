package sync

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ppm/backend/internal/domain/catalog"
	"github.com/ppm/backend/internal/domain/integration"
	"github.com/ppm/backend/internal/domain/shared"
	"github.com/ppm/backend/internal/infrastructure/syncqueue"
)

// TaskSubmitter enqueues sync tasks for execution
type TaskSubmitter interface {
	Submit(task *syncqueue.SyncTask) error
}

// DispatcherConfig holds configuration for the sync dispatcher
type DispatcherConfig struct {
	// MaxAttempts is the attempt budget given to each task
	MaxAttempts int
	// DedupEnabled toggles event deduplication
	DedupEnabled bool
	// DedupTTL is how long processed event IDs are remembered
	DedupTTL time.Duration
}

// DefaultDispatcherConfig returns default dispatcher configuration
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		MaxAttempts:  5,
		DedupEnabled: true,
		DedupTTL:     24 * time.Hour,
	}
}

// Dispatcher listens for catalog events and fans them out into sync tasks,
// one per active integration target. Dispatch never propagates an error back
// to the publisher: a full queue or a dead dedup store is logged and the
// event is dropped, the publishing operation has already committed.
type Dispatcher struct {
	config  DispatcherConfig
	queue   TaskSubmitter
	targets integration.TargetProvider
	dedup   shared.IdempotencyStore
	logger  *zap.Logger
}

// NewDispatcher creates a new sync dispatcher
func NewDispatcher(config DispatcherConfig, queue TaskSubmitter, targets integration.TargetProvider,
	dedup shared.IdempotencyStore, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		config:  config,
		queue:   queue,
		targets: targets,
		dedup:   dedup,
		logger:  logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (d *Dispatcher) EventTypes() []string {
	return []string{
		catalog.EventTypeCategoryCreated,
		catalog.EventTypeCategoryUpdated,
		catalog.EventTypeProductCreated,
		catalog.EventTypeProductUpdated,
		catalog.EventTypeAttributeTypeCreated,
		catalog.EventTypeAttributeValueCreated,
	}
}

// Handle fans one catalog event out into sync tasks
func (d *Dispatcher) Handle(ctx context.Context, event shared.DomainEvent) error {
	mappableType, mappableID, ok := mappableFor(event)
	if !ok {
		d.logger.Error("unexpected event type in sync dispatcher",
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	if d.config.DedupEnabled && d.dedup != nil {
		fresh, err := d.dedup.MarkProcessed(ctx, event.EventID().String(), d.config.DedupTTL)
		if err != nil {
			d.logger.Error("dedup store unavailable, dropping event",
				zap.String("event_id", event.EventID().String()),
				zap.Error(err),
			)
			return nil
		}
		if !fresh {
			d.logger.Debug("duplicate event skipped",
				zap.String("event_id", event.EventID().String()),
				zap.String("event_type", event.EventType()),
			)
			return nil
		}
	}

	targets, err := d.targets.ActiveTargets(ctx, event.TenantID())
	if err != nil {
		d.logger.Error("failed to load active targets, dropping event",
			zap.String("event_id", event.EventID().String()),
			zap.String("tenant_id", event.TenantID().String()),
			zap.Error(err),
		)
		return nil
	}
	if len(targets) == 0 {
		d.logger.Debug("no active targets, nothing to sync",
			zap.String("tenant_id", event.TenantID().String()),
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	for _, target := range targets {
		task := syncqueue.NewSyncTask(event.TenantID(), event.EventID(),
			mappableType, mappableID, target.Type, target.Identifier, d.config.MaxAttempts)

		if err := d.queue.Submit(task); err != nil {
			d.logger.Error("failed to enqueue sync task",
				zap.String("event_id", event.EventID().String()),
				zap.String("mappable_type", string(mappableType)),
				zap.Int64("mappable_id", mappableID),
				zap.String("target", target.Key()),
				zap.Error(err),
			)
			continue
		}

		d.logger.Info("sync task enqueued",
			zap.String("event_type", event.EventType()),
			zap.String("mappable_type", string(mappableType)),
			zap.Int64("mappable_id", mappableID),
			zap.String("target", target.Key()),
		)
	}

	return nil
}

// mappableFor extracts the catalog entity reference from a dispatchable event
func mappableFor(event shared.DomainEvent) (integration.MappableType, int64, bool) {
	switch e := event.(type) {
	case *catalog.CategoryCreatedEvent:
		return integration.MappableTypeCategory, e.CategoryID, true
	case *catalog.CategoryUpdatedEvent:
		return integration.MappableTypeCategory, e.CategoryID, true
	case *catalog.ProductCreatedEvent:
		return integration.MappableTypeProduct, e.ProductID, true
	case *catalog.ProductUpdatedEvent:
		return integration.MappableTypeProduct, e.ProductID, true
	case *catalog.AttributeTypeCreatedEvent:
		return integration.MappableTypeAttributeType, e.AttributeTypeID, true
	case *catalog.AttributeValueCreatedEvent:
		return integration.MappableTypeAttributeValue, e.AttributeValueID, true
	default:
		return "", 0, false
	}
}

var _ shared.EventHandler = (*Dispatcher)(nil)
