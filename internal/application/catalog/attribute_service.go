package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppm/backend/internal/domain/catalog"
	"github.com/ppm/backend/internal/domain/shared"
)

// AttributeService manages attribute types and their values
type AttributeService struct {
	attrTypes  catalog.AttributeTypeRepository
	attrValues catalog.AttributeValueRepository
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// NewAttributeService creates a new AttributeService
func NewAttributeService(attrTypes catalog.AttributeTypeRepository, attrValues catalog.AttributeValueRepository,
	publisher shared.EventPublisher, logger *zap.Logger) *AttributeService {
	return &AttributeService{
		attrTypes:  attrTypes,
		attrValues: attrValues,
		publisher:  publisher,
		logger:     logger,
	}
}

// CreateAttributeType creates an attribute type and announces it
func (s *AttributeService) CreateAttributeType(ctx context.Context, tenantID uuid.UUID, code, name string) (*catalog.AttributeType, error) {
	attrType, err := catalog.NewAttributeType(tenantID, code, name)
	if err != nil {
		return nil, err
	}
	if err := s.attrTypes.Save(ctx, attrType); err != nil {
		return nil, err
	}

	s.publish(ctx, catalog.NewAttributeTypeCreatedEvent(attrType))
	return attrType, nil
}

// CreateAttributeValue creates a value under an existing attribute type and
// announces it
func (s *AttributeService) CreateAttributeValue(ctx context.Context, tenantID uuid.UUID, attributeTypeID int64, value string) (*catalog.AttributeValue, error) {
	if _, err := s.attrTypes.FindByID(ctx, tenantID, attributeTypeID); err != nil {
		return nil, err
	}

	attrValue, err := catalog.NewAttributeValue(tenantID, attributeTypeID, value)
	if err != nil {
		return nil, err
	}
	if err := s.attrValues.Save(ctx, attrValue); err != nil {
		return nil, err
	}

	s.publish(ctx, catalog.NewAttributeValueCreatedEvent(attrValue))
	return attrValue, nil
}

// ListAttributeTypes returns all attribute types of a tenant
func (s *AttributeService) ListAttributeTypes(ctx context.Context, tenantID uuid.UUID) ([]catalog.AttributeType, error) {
	return s.attrTypes.FindAll(ctx, tenantID)
}

// ListAttributeValues returns all values of an attribute type
func (s *AttributeService) ListAttributeValues(ctx context.Context, tenantID uuid.UUID, attributeTypeID int64) ([]catalog.AttributeValue, error) {
	return s.attrValues.FindByType(ctx, tenantID, attributeTypeID)
}

func (s *AttributeService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish catalog events", zap.Error(err))
	}
}
