package integration

import (
	"fmt"
	"sync"
)

// TargetClientRegistry resolves the client for an integration type. Clients
// are registered once at startup; lookups for types without a registered
// client (ERP bridges handled by external collaborators) return
// ErrClientNotRegistered.
type TargetClientRegistry struct {
	mu      sync.RWMutex
	clients map[IntegrationType]TargetClient
}

// NewTargetClientRegistry creates an empty registry
func NewTargetClientRegistry() *TargetClientRegistry {
	return &TargetClientRegistry{
		clients: make(map[IntegrationType]TargetClient),
	}
}

// Register adds a client for its integration type. Registering a second
// client for the same type replaces the first.
func (r *TargetClientRegistry) Register(client TargetClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[client.Type()] = client
}

// Get returns the client for an integration type
func (r *TargetClientRegistry) Get(integrationType IntegrationType) (TargetClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.clients[integrationType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClientNotRegistered, integrationType)
	}
	return client, nil
}

// List returns all registered clients
func (r *TargetClientRegistry) List() []TargetClient {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]TargetClient, 0, len(r.clients))
	for _, client := range r.clients {
		clients = append(clients, client)
	}
	return clients
}
