package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	integrationType IntegrationType
}

func (c *stubClient) Type() IntegrationType { return c.integrationType }

func (c *stubClient) CreateOrUpdate(ctx context.Context, target Target, obj RemoteObject) (string, error) {
	return "", nil
}

func (c *stubClient) Get(ctx context.Context, target Target, remoteType RemoteType, externalID string) (*RemoteObject, error) {
	return nil, nil
}

func (c *stubClient) Delete(ctx context.Context, target Target, remoteType RemoteType, externalID string) error {
	return nil
}

func TestTargetClientRegistry(t *testing.T) {
	registry := NewTargetClientRegistry()
	registry.Register(&stubClient{integrationType: IntegrationTypePrestashop})
	registry.Register(&stubClient{integrationType: IntegrationTypeBaselinker})

	t.Run("resolves registered client", func(t *testing.T) {
		client, err := registry.Get(IntegrationTypePrestashop)
		require.NoError(t, err)
		assert.Equal(t, IntegrationTypePrestashop, client.Type())
	})

	t.Run("unregistered type returns error", func(t *testing.T) {
		// ERP bridges are valid enum values but have no in-process client
		_, err := registry.Get(IntegrationTypeSubiektGT)
		assert.ErrorIs(t, err, ErrClientNotRegistered)
	})

	t.Run("lists all clients", func(t *testing.T) {
		assert.Len(t, registry.List(), 2)
	})
}
