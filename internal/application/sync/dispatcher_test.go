package sync

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ppm/backend/internal/domain/catalog"
	"github.com/ppm/backend/internal/domain/integration"
)

func newTestCategory(t *testing.T, tenantID uuid.UUID) *catalog.Category {
	t.Helper()
	category, err := catalog.NewCategory(tenantID, "shoes", "Shoes", nil)
	require.NoError(t, err)
	category.ID = 42
	return category
}

func twoTargets(tenantID uuid.UUID) []integration.Target {
	return []integration.Target{
		{TenantID: tenantID, Type: integration.IntegrationTypePrestashop, Identifier: "shop-1", Name: "Shop 1", Active: true},
		{TenantID: tenantID, Type: integration.IntegrationTypeBaselinker, Identifier: "main", Name: "BL", Active: true},
	}
}

func TestDispatcher_Handle(t *testing.T) {
	t.Run("fans out one task per active target", func(t *testing.T) {
		tenantID := uuid.New()
		queue := &fakeSubmitter{}
		dispatcher := NewDispatcher(DefaultDispatcherConfig(), queue,
			&fakeTargetProvider{targets: twoTargets(tenantID)}, newFakeDedupStore(), zap.NewNop())

		event := catalog.NewCategoryCreatedEvent(newTestCategory(t, tenantID))
		require.NoError(t, dispatcher.Handle(context.Background(), event))

		tasks := queue.submitted()
		require.Len(t, tasks, 2)
		keys := []string{tasks[0].TargetKey(), tasks[1].TargetKey()}
		assert.ElementsMatch(t, []string{"prestashop:shop-1", "baselinker:main"}, keys)
		for _, task := range tasks {
			assert.Equal(t, integration.MappableTypeCategory, task.MappableType)
			assert.Equal(t, int64(42), task.MappableID)
			assert.Equal(t, event.EventID(), task.EventID)
		}
	})

	t.Run("inactive targets receive nothing", func(t *testing.T) {
		tenantID := uuid.New()
		targets := twoTargets(tenantID)
		targets[1].Active = false

		queue := &fakeSubmitter{}
		dispatcher := NewDispatcher(DefaultDispatcherConfig(), queue,
			&fakeTargetProvider{targets: targets}, newFakeDedupStore(), zap.NewNop())

		event := catalog.NewCategoryCreatedEvent(newTestCategory(t, tenantID))
		require.NoError(t, dispatcher.Handle(context.Background(), event))

		tasks := queue.submitted()
		require.Len(t, tasks, 1)
		assert.Equal(t, "prestashop:shop-1", tasks[0].TargetKey())
	})

	t.Run("zero targets is a no-op", func(t *testing.T) {
		tenantID := uuid.New()
		queue := &fakeSubmitter{}
		dispatcher := NewDispatcher(DefaultDispatcherConfig(), queue,
			&fakeTargetProvider{}, newFakeDedupStore(), zap.NewNop())

		event := catalog.NewCategoryCreatedEvent(newTestCategory(t, tenantID))
		require.NoError(t, dispatcher.Handle(context.Background(), event))

		assert.Empty(t, queue.submitted())
	})

	t.Run("duplicate events are dispatched once", func(t *testing.T) {
		tenantID := uuid.New()
		queue := &fakeSubmitter{}
		dispatcher := NewDispatcher(DefaultDispatcherConfig(), queue,
			&fakeTargetProvider{targets: twoTargets(tenantID)}, newFakeDedupStore(), zap.NewNop())

		event := catalog.NewCategoryCreatedEvent(newTestCategory(t, tenantID))
		require.NoError(t, dispatcher.Handle(context.Background(), event))
		require.NoError(t, dispatcher.Handle(context.Background(), event))

		assert.Len(t, queue.submitted(), 2)
	})

	t.Run("full queue never fails the publisher", func(t *testing.T) {
		tenantID := uuid.New()
		queue := &fakeSubmitter{err: context.DeadlineExceeded}
		dispatcher := NewDispatcher(DefaultDispatcherConfig(), queue,
			&fakeTargetProvider{targets: twoTargets(tenantID)}, newFakeDedupStore(), zap.NewNop())

		event := catalog.NewCategoryCreatedEvent(newTestCategory(t, tenantID))
		assert.NoError(t, dispatcher.Handle(context.Background(), event))
	})

	t.Run("dead dedup store drops the event without failing", func(t *testing.T) {
		tenantID := uuid.New()
		queue := &fakeSubmitter{}
		dedup := newFakeDedupStore()
		dedup.err = context.DeadlineExceeded
		dispatcher := NewDispatcher(DefaultDispatcherConfig(), queue,
			&fakeTargetProvider{targets: twoTargets(tenantID)}, dedup, zap.NewNop())

		event := catalog.NewCategoryCreatedEvent(newTestCategory(t, tenantID))
		assert.NoError(t, dispatcher.Handle(context.Background(), event))
		assert.Empty(t, queue.submitted())
	})

	t.Run("product events carry the product reference", func(t *testing.T) {
		tenantID := uuid.New()
		product, err := newTestProduct(tenantID)
		require.NoError(t, err)

		queue := &fakeSubmitter{}
		dispatcher := NewDispatcher(DefaultDispatcherConfig(), queue,
			&fakeTargetProvider{targets: twoTargets(tenantID)[:1]}, newFakeDedupStore(), zap.NewNop())

		require.NoError(t, dispatcher.Handle(context.Background(), catalog.NewProductCreatedEvent(product)))

		tasks := queue.submitted()
		require.Len(t, tasks, 1)
		assert.Equal(t, integration.MappableTypeProduct, tasks[0].MappableType)
		assert.Equal(t, product.ID, tasks[0].MappableID)
	})
}
