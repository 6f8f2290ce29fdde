package ws

import "sync"

// Registry is the single source of truth for which users hold a live
// connection. At most one client is registered per user: registering again
// replaces the previous handle, which stays open but is no longer
// addressable.
type Registry struct {
	mu      sync.RWMutex
	clients map[int]*Client
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[int]*Client)}
}

// Register stores the client as the active connection for its user,
// superseding any prior one.
func (r *Registry) Register(userID int, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[userID] = client
}

// Unregister removes the entry for the user only if it still points at this
// client, so a late disconnect of a superseded connection cannot evict its
// replacement. It reports whether an entry was removed.
func (r *Registry) Unregister(userID int, client *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.clients[userID]; ok && current == client {
		delete(r.clients, userID)
		return true
	}
	return false
}

// Lookup returns the active client for the user, if any.
func (r *Registry) Lookup(userID int) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[userID]
	return client, ok
}

// OnlineUserIDs returns the ids of all currently connected users.
func (r *Registry) OnlineUserIDs() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	return ids
}

// Clients returns a snapshot of all active clients for fan-out.
func (r *Registry) Clients() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clients := make([]*Client, 0, len(r.clients))
	for _, client := range r.clients {
		clients = append(clients, client)
	}
	return clients
}
