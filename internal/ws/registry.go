package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/neartalkapp/neartalk/internal/model"
)

// Registry maps a user id to its live connection, at most one per user. It is
// process-local: a second instance would need shared pub/sub, which is a
// documented scale boundary of this design.
type Registry struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[uuid.UUID]*Client),
	}
}

// Register associates a connection with a user. A newer connection for the
// same user replaces the old mapping; the stale connection is closed so its
// pumps wind down.
func (r *Registry) Register(userID uuid.UUID, client *Client) {
	r.mu.Lock()
	old := r.clients[userID]
	r.clients[userID] = client
	r.mu.Unlock()

	if old != nil && old != client {
		old.Close()
	}
	log.Printf("live client connected: %s", userID)
}

// Unregister removes whichever entry currently points at this handle. A
// replaced connection's late unregister must not evict its successor, hence
// the identity check rather than a delete by user id.
func (r *Registry) Unregister(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for userID, c := range r.clients {
		if c == client {
			delete(r.clients, userID)
			log.Printf("live client disconnected: %s", userID)
			return
		}
	}
}

// Send pushes an event to the user's connection. It is a no-op when the user
// has no registered connection and drops the event instead of blocking when
// the connection's buffer is full.
func (r *Registry) Send(userID uuid.UUID, event string, data any) {
	r.mu.RLock()
	client, ok := r.clients[userID]
	r.mu.RUnlock()
	if !ok {
		return
	}

	payload, err := json.Marshal(model.Event{Event: event, Data: data})
	if err != nil {
		log.Printf("marshal live event: %v", err)
		return
	}
	select {
	case client.send <- payload:
	default:
		log.Printf("live client %s stalled, dropping event", userID)
	}
}

// Online reports whether the user currently has a registered connection.
func (r *Registry) Online(userID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[userID]
	return ok
}
