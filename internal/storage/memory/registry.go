// Package memory provides the in-memory state of a board: the
// connection registry, the authoritative clipboard text, and the
// file store. Nothing in this package touches disk.
package memory

import (
	"sort"
	"sync"

	"github.com/syncboard/syncboard/internal/core/domain"
)

// ConnectionRegistry tracks live client connections and their liveness.
//
// Mutations are visible to subsequent List calls from any goroutine
// (read-your-writes). The registry never holds a duplicate id.
type ConnectionRegistry struct {
	mu      sync.RWMutex
	clients map[string]*domain.Client
}

// NewConnectionRegistry creates an empty registry.
func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		clients: make(map[string]*domain.Client),
	}
}

// Register creates and stores a client entry for the given id.
// Fails with ErrClientConflict if the id is already registered; the
// caller must supply a fresh id.
func (r *ConnectionRegistry) Register(clientID string) (*domain.Client, error) {
	if clientID == "" {
		return nil, domain.ErrBadRequest.WithDetails("client id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.clients[clientID]; exists {
		return nil, domain.ErrClientConflict.WithDetails(clientID)
	}

	client := &domain.Client{ID: clientID}
	client.Touch()
	client.ConnectedAt = client.LastSeenAt

	r.clients[clientID] = client
	return client.Clone(), nil
}

// Unregister removes the entry. Removal is idempotent: absent ids
// are a no-op, not an error.
func (r *ConnectionRegistry) Unregister(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, clientID)
}

// List returns a snapshot of currently connected client ids, sorted
// for deterministic fan-out iteration.
func (r *ConnectionRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Get returns a copy of the client entry.
func (r *ConnectionRegistry) Get(clientID string) (*domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.clients[clientID]
	if !ok {
		return nil, domain.ErrClientNotFound.WithDetails(clientID)
	}
	return client.Clone(), nil
}

// Has reports whether the id is currently registered.
func (r *ConnectionRegistry) Has(clientID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[clientID]
	return ok
}

// Touch updates LastSeenAt for the heartbeat. Unknown ids are ignored:
// the connection may have been unregistered while a pong was in flight.
func (r *ConnectionRegistry) Touch(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.clients[clientID]; ok {
		client.Touch()
	}
}

// Count returns the number of connected clients.
func (r *ConnectionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// StaleSince returns the ids of clients whose last liveness signal is
// older than the given cutoff (Unix milliseconds). Used to reap dead
// connections the transport failed to report.
func (r *ConnectionRegistry) StaleSince(cutoff int64) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stale []string
	for id, client := range r.clients {
		if client.LastSeenAt < cutoff {
			stale = append(stale, id)
		}
	}
	return stale
}
