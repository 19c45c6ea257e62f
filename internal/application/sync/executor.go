package sync

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppm/backend/internal/domain/catalog"
	"github.com/ppm/backend/internal/domain/integration"
	"github.com/ppm/backend/internal/infrastructure/syncqueue"
)

// Executor pushes one catalog entity to one integration target. It resolves
// the mapping row, builds the target-neutral payload, calls the target client
// and records the outcome on the mapping.
type Executor struct {
	targets    integration.TargetProvider
	mappings   integration.IntegrationMappingRepository
	registry   *integration.TargetClientRegistry
	categories catalog.CategoryReader
	products   catalog.ProductReader
	attrTypes  catalog.AttributeTypeRepository
	attrValues catalog.AttributeValueRepository
	logger     *zap.Logger
}

// NewExecutor creates a new sync executor
func NewExecutor(
	targets integration.TargetProvider,
	mappings integration.IntegrationMappingRepository,
	registry *integration.TargetClientRegistry,
	categories catalog.CategoryReader,
	products catalog.ProductReader,
	attrTypes catalog.AttributeTypeRepository,
	attrValues catalog.AttributeValueRepository,
	logger *zap.Logger,
) *Executor {
	return &Executor{
		targets:    targets,
		mappings:   mappings,
		registry:   registry,
		categories: categories,
		products:   products,
		attrTypes:  attrTypes,
		attrValues: attrValues,
		logger:     logger,
	}
}

// Execute pushes the task's entity to its target. Retryable target failures
// come back as *integration.APIError for the queue to retry; anything else
// resolves the task permanently.
func (e *Executor) Execute(ctx context.Context, task *syncqueue.SyncTask) error {
	target, err := e.targets.FindTarget(ctx, task.TenantID, task.TargetType, task.TargetIdentifier)
	if err != nil {
		return fmt.Errorf("resolve target %s: %w", task.TargetKey(), err)
	}
	if !target.Active {
		return fmt.Errorf("target %s: %w", task.TargetKey(), integration.ErrTargetNotActive)
	}

	client, err := e.registry.Get(task.TargetType)
	if err != nil {
		return err
	}

	pending, err := integration.NewIntegrationMapping(task.TenantID, task.MappableType,
		task.MappableID, task.TargetType, task.TargetIdentifier, integration.SyncDirectionPush)
	if err != nil {
		return err
	}
	mapping, err := e.mappings.FindOrCreate(ctx, pending)
	if err != nil {
		return fmt.Errorf("find or create mapping: %w", err)
	}

	obj, err := e.buildPayload(ctx, task, *target)
	if err != nil {
		return err
	}
	if mapping.ExternalID != nil {
		obj.ExternalID = *mapping.ExternalID
	}

	externalID, pushErr := client.CreateOrUpdate(ctx, *target, *obj)

	// The target no longer knows an entity we pushed before. Forget the
	// stale identity and create it fresh in the same attempt.
	if pushErr != nil && mapping.IsSynced() && isNotFound(pushErr) {
		e.logger.Warn("synced entity gone from target, recreating",
			zap.String("mappable_type", string(task.MappableType)),
			zap.Int64("mappable_id", task.MappableID),
			zap.String("target", task.TargetKey()),
			zap.String("stale_external_id", *mapping.ExternalID),
		)
		mapping.ClearExternalID()
		if err := e.mappings.Save(ctx, mapping); err != nil {
			return fmt.Errorf("clear stale external ID: %w", err)
		}
		obj.ExternalID = ""
		externalID, pushErr = client.CreateOrUpdate(ctx, *target, *obj)
	}

	if pushErr != nil {
		var apiErr *integration.APIError
		if errors.As(pushErr, &apiErr) && !apiErr.IsRetryable() {
			mapping.MarkError(apiErr.Error())
			if err := e.mappings.Save(ctx, mapping); err != nil {
				e.logger.Error("failed to record permanent sync error",
					zap.Int64("mapping_id", mapping.ID),
					zap.Error(err),
				)
			}
		}
		return pushErr
	}

	mapping.SetExternalID(externalID)
	mapping.MarkSynced()
	if err := e.mappings.Save(ctx, mapping); err != nil {
		return fmt.Errorf("record synced mapping: %w", err)
	}

	e.logger.Info("entity pushed to target",
		zap.String("mappable_type", string(task.MappableType)),
		zap.Int64("mappable_id", task.MappableID),
		zap.String("target", task.TargetKey()),
		zap.String("external_id", externalID),
	)
	return nil
}

// HandlePermanentFailure records a push the queue gave up on, so the mapping
// row does not sit pending after the retry budget is spent.
func (e *Executor) HandlePermanentFailure(ctx context.Context, task *syncqueue.SyncTask, cause error) {
	pending, err := integration.NewIntegrationMapping(task.TenantID, task.MappableType,
		task.MappableID, task.TargetType, task.TargetIdentifier, integration.SyncDirectionPush)
	if err == nil {
		var mapping *integration.IntegrationMapping
		mapping, err = e.mappings.FindOrCreate(ctx, pending)
		if err == nil {
			mapping.MarkError(cause.Error())
			err = e.mappings.Save(ctx, mapping)
		}
	}
	if err != nil {
		e.logger.Error("failed to record abandoned sync",
			zap.String("mappable_type", string(task.MappableType)),
			zap.Int64("mappable_id", task.MappableID),
			zap.String("target", task.TargetKey()),
			zap.Error(err),
		)
		return
	}

	e.logger.Error("sync abandoned after retry budget",
		zap.String("mappable_type", string(task.MappableType)),
		zap.Int64("mappable_id", task.MappableID),
		zap.String("target", task.TargetKey()),
		zap.Int("attempts", task.Attempt),
		zap.Error(cause),
	)
}

// buildPayload loads the catalog entity and translates it into the
// target-neutral payload
func (e *Executor) buildPayload(ctx context.Context, task *syncqueue.SyncTask, target integration.Target) (*integration.RemoteObject, error) {
	switch task.MappableType {
	case integration.MappableTypeCategory:
		return e.categoryPayload(ctx, task, target)
	case integration.MappableTypeProduct:
		return e.productPayload(ctx, task, target)
	case integration.MappableTypeAttributeType:
		return e.attributeTypePayload(ctx, task)
	case integration.MappableTypeAttributeValue:
		return e.attributeValuePayload(ctx, task, target)
	default:
		return nil, fmt.Errorf("mappable type %s: %w", task.MappableType, integration.ErrUnsupportedRemote)
	}
}

func (e *Executor) categoryPayload(ctx context.Context, task *syncqueue.SyncTask, target integration.Target) (*integration.RemoteObject, error) {
	category, err := e.categories.FindByID(ctx, task.TenantID, task.MappableID)
	if err != nil {
		return nil, err
	}

	obj := &integration.RemoteObject{
		RemoteType: integration.RemoteTypeCategories,
		Code:       category.Code,
		Name:       category.Name,
		Active:     category.Active,
	}
	if category.ParentID != nil {
		parentExternalID, err := e.externalIDFor(ctx, task.TenantID,
			integration.MappableTypeCategory, *category.ParentID, target)
		if err == nil {
			obj.ParentExternalID = parentExternalID
		}
	}
	return obj, nil
}

func (e *Executor) productPayload(ctx context.Context, task *syncqueue.SyncTask, target integration.Target) (*integration.RemoteObject, error) {
	product, err := e.products.FindByID(ctx, task.TenantID, task.MappableID)
	if err != nil {
		return nil, err
	}

	obj := &integration.RemoteObject{
		RemoteType:  integration.RemoteTypeProducts,
		Code:        product.SKU,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Quantity:    product.Quantity,
		Active:      product.Active,
	}

	// The product's category selection for this target resolves to external
	// IDs through the canonical mapping structure. Categories selected but
	// not yet mapped are skipped; they join once their own sync lands.
	if mapping, ok := product.CategoryMappings[target.Key()]; ok && mapping != nil {
		for _, internalID := range mapping.UI.Selected {
			externalID, mapped := mapping.ExternalID(internalID)
			if !mapped {
				continue
			}
			ext := strconv.FormatInt(externalID, 10)
			obj.CategoryExternalIDs = append(obj.CategoryExternalIDs, ext)
			if mapping.UI.Primary != nil && *mapping.UI.Primary == internalID {
				obj.DefaultCategoryExternalID = ext
			}
		}
	}
	return obj, nil
}

func (e *Executor) attributeTypePayload(ctx context.Context, task *syncqueue.SyncTask) (*integration.RemoteObject, error) {
	attrType, err := e.attrTypes.FindByID(ctx, task.TenantID, task.MappableID)
	if err != nil {
		return nil, err
	}
	return &integration.RemoteObject{
		RemoteType: integration.RemoteTypeProductFeatures,
		Code:       attrType.Code,
		Name:       attrType.Name,
		Active:     attrType.Active,
	}, nil
}

func (e *Executor) attributeValuePayload(ctx context.Context, task *syncqueue.SyncTask, target integration.Target) (*integration.RemoteObject, error) {
	value, err := e.attrValues.FindByID(ctx, task.TenantID, task.MappableID)
	if err != nil {
		return nil, err
	}

	obj := &integration.RemoteObject{
		RemoteType: integration.RemoteTypeProductFeatureValues,
		Name:       value.Value,
		Active:     value.Active,
	}
	// Feature values hang off their owning feature on the target side
	featureExternalID, err := e.externalIDFor(ctx, task.TenantID,
		integration.MappableTypeAttributeType, value.AttributeTypeID, target)
	if err == nil {
		obj.ParentExternalID = featureExternalID
	}
	return obj, nil
}

// externalIDFor resolves the target-side ID of a related entity, erroring
// when the relation has not been synced yet
func (e *Executor) externalIDFor(ctx context.Context, tenantID uuid.UUID, mappableType integration.MappableType,
	mappableID int64, target integration.Target) (string, error) {
	mapping, err := e.mappings.Find(ctx, tenantID, mappableType, mappableID, target.Type, target.Identifier)
	if err != nil {
		return "", err
	}
	if !mapping.IsSynced() {
		return "", integration.ErrMappingMissingExternalID
	}
	return *mapping.ExternalID, nil
}

// isNotFound reports whether the push failed because the remote resource is
// gone
func isNotFound(err error) bool {
	var apiErr *integration.APIError
	return errors.As(err, &apiErr) && apiErr.IsNotFound()
}

var (
	_ syncqueue.TaskExecutor            = (*Executor)(nil)
	_ syncqueue.PermanentFailureHandler = (*Executor)(nil)
)
