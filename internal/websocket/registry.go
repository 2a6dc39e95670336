package websocket

import (
	"sync"

	"github.com/google/uuid"
)

// Registry tracks which user owns which connection and which room, if any,
// the connection is currently joined to. One live connection per user: a
// second registration displaces the first.
type Registry struct {
	mu     sync.RWMutex
	users  map[uuid.UUID]*Client
	byConn map[*Client]uuid.UUID
}

func NewRegistry() *Registry {
	return &Registry{
		users:  make(map[uuid.UUID]*Client),
		byConn: make(map[*Client]uuid.UUID),
	}
}

// Register binds the client to its user and returns the displaced client
// when the user already had a live connection.
func (r *Registry) Register(client *Client) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	displaced := r.users[client.UserID]
	if displaced == client {
		return nil
	}
	if displaced != nil {
		delete(r.byConn, displaced)
	}

	r.users[client.UserID] = client
	r.byConn[client] = client.UserID
	return displaced
}

// Remove drops the client if it is still the user's registered connection.
// A connection displaced earlier removes nothing. Returns whether the
// client was registered.
func (r *Registry) Remove(client *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	userId, ok := r.byConn[client]
	if !ok {
		return false
	}
	delete(r.byConn, client)
	if r.users[userId] == client {
		delete(r.users, userId)
	}
	return true
}

// Lookup returns the registered connection for a user.
func (r *Registry) Lookup(userId uuid.UUID) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.users[userId]
	return client, ok
}

// Registered reports whether the client is a live registry entry.
func (r *Registry) Registered(client *Client) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byConn[client]
	return ok
}

// Online returns the number of registered users.
func (r *Registry) Online() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
