package services

import (
	"encoding/json"
	"sync"

	"blog-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// FeedEvent is broadcast to every connected client after a successful feed
// mutation.
type FeedEvent struct {
	Channel string       `json:"channel"`
	Action  string       `json:"action"`
	Post    *models.Post `json:"post,omitempty"`
	PostID  string       `json:"post_id,omitempty"`
}

// Feed event actions.
const (
	FeedActionCreate = "create"
	FeedActionUpdate = "update"
	FeedActionDelete = "delete"
)

// Hub manages feed-event WebSocket connections
type Hub struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]struct{}
}

// NewHub creates a new event hub
func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]struct{})}
}

// Register adds a connection to the broadcast set
func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
	log.Info().Int("connections", len(h.conns)).Msg("WebSocket connection registered")
}

// Unregister removes and closes a connection
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[conn]; ok {
		conn.Close()
		delete(h.conns, conn)
		log.Info().Int("connections", len(h.conns)).Msg("WebSocket connection unregistered")
	}
}

// Broadcast sends an event to every connected client. Connections that fail
// to take the write are dropped; broadcasting never affects the caller.
func (h *Hub) Broadcast(event FeedEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal feed event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Warn().Err(err).Msg("Dropping unresponsive WebSocket connection")
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// ConnectionCount reports the number of connected clients.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
