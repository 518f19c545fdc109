package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/taskhive/taskhive-be/internal/auth"
	ws "github.com/taskhive/taskhive-be/internal/websocket"
)

// WebSocketHandler upgrades HTTP connections to live activity streams.
type WebSocketHandler struct {
	hub    *ws.Hub
	tokens *auth.Manager
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(hub *ws.Hub, tokens *auth.Manager) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, tokens: tokens}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins (consider tightening this in production).
		return true
	},
}

// Serve handles the WebSocket connection request. Browsers cannot set an
// Authorization header on the upgrade request, so the token travels in the
// "token" query parameter instead and is verified before the upgrade.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		RespondError(w, http.StatusUnauthorized, "Not authenticated. Please provide a valid token.")
		return
	}

	userID, err := h.tokens.Verify(tokenStr)
	if err != nil {
		log.Warn().Err(err).Msg("Rejected websocket upgrade")
		RespondError(w, http.StatusUnauthorized, "Invalid or expired token. Please login again.")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn, userID)
	h.hub.Register <- client

	go client.WritePump()
	go func() {
		// The stream is outbound-only; inbound frames are drained for
		// keepalive and discarded.
		client.ReadPump(nil)
		h.hub.Unregister <- client
	}()
}
