package handlers

import (
	"net/http"

	"blog-backend/internal/middleware"
	"blog-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler serves the feed-event stream
type WebSocketHandler struct {
	hub  *services.Hub
	auth middleware.Authenticator
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.Hub, auth middleware.Authenticator) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, auth: auth}
}

// Serve handles GET /ws. The token travels as a query parameter because
// browsers cannot set headers on WebSocket upgrades.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "token required"})
		return
	}

	userID, err := h.auth.VerifyToken(token)
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(conn)
	log.Info().Str("user_id", userID).Msg("Feed event stream opened")

	// The stream is broadcast-only; reads only detect the close.
	go func() {
		defer h.hub.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
