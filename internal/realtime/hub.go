package realtime

import (
	"encoding/json"
	"sync"

	"taskdeck/internal/config"
)

// EventWriter is the slice of Conn the hub needs; tests substitute fakes.
type EventWriter interface {
	WriteEvent(Event) error
}

// Hub is the connection registry and notification fanout. It tracks every
// open connection (for the tasks_updated broadcast) and the most recent
// authenticated connection per user (for task_due_soon unicast,
// last-authenticated-wins). Lifecycle: one Hub per process, created in app
// wiring, injected where notifications are emitted.
type Hub struct {
	mu    sync.RWMutex
	conns map[EventWriter]int64 // 0 until the connection authenticates
	users map[int64]EventWriter
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[EventWriter]int64),
		users: make(map[int64]EventWriter),
	}
}

// Add registers a freshly upgraded connection. Unauthenticated connections
// already receive broadcasts; due-soon pushes need Authenticate.
func (h *Hub) Add(conn EventWriter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = 0
}

// Authenticate binds conn to userID, displacing any earlier connection of
// the same user. The displaced connection stays registered for broadcasts.
// A connection re-authenticating as a different user releases its previous
// binding first, so the old user's pushes never land on the new owner's
// socket and their registry entry does not outlive the switch.
func (h *Hub) Authenticate(userID int64, conn EventWriter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if prev, ok := h.conns[conn]; ok && prev != 0 && prev != userID && h.users[prev] == conn {
		delete(h.users, prev)
	}
	h.conns[conn] = userID
	h.users[userID] = conn
}

// Remove drops conn from the registry. The per-user entry is cleared only
// when it still points at this very connection, so a newer session of the
// same user is untouched.
func (h *Hub) Remove(conn EventWriter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	userID, ok := h.conns[conn]
	if !ok {
		return
	}
	delete(h.conns, conn)
	if userID != 0 && h.users[userID] == conn {
		delete(h.users, userID)
	}
}

// BroadcastTasksUpdated tells every connected session, regardless of user,
// that some task set changed; clients re-fetch their own scoped view.
func (h *Hub) BroadcastTasksUpdated() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.conns {
		if err := conn.WriteEvent(Event{Event: EventTasksUpdated}); err != nil {
			config.Logger.Debugf("[hub][broadcast] write failed: %v", err)
		}
	}
}

// NotifyDueSoon unicasts a task_due_soon event to the live connection of
// userID. It reports whether a connection was registered; a failed write on
// a dying socket still counts as an emit attempt.
func (h *Hub) NotifyDueSoon(userID int64, payload DueSoonPayload) bool {
	h.mu.RLock()
	conn, ok := h.users[userID]
	h.mu.RUnlock()
	if !ok {
		return false
	}

	data, err := json.Marshal(payload)
	if err != nil {
		config.Logger.Errorf("[hub][due_soon] marshal payload: %v", err)
		return false
	}
	if err := conn.WriteEvent(Event{Event: EventTaskDueSoon, Data: data}); err != nil {
		config.Logger.Debugf("[hub][due_soon] write failed for user=%d: %v", userID, err)
	}
	return true
}
