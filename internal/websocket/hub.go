package websocket

import "github.com/rs/zerolog/log"

// Hub maintains the set of active clients and routes activity messages to
// the connections of the user they belong to.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Targeted delivery requests.
	direct chan directMessage

	// A map of user IDs to the set of that user's live connections.
	userConns map[string]map[*Client]bool
}

type directMessage struct {
	userID  string
	payload []byte
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		direct:     make(chan directMessage, 64),
		clients:    make(map[*Client]bool),
		userConns:  make(map[string]map[*Client]bool),
	}
}

// Run starts the Hub's message processing loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			if h.userConns[client.UserID] == nil {
				h.userConns[client.UserID] = make(map[*Client]bool)
			}
			h.userConns[client.UserID][client] = true
			log.Info().Int("total_clients", len(h.clients)).Msg("Client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case msg := <-h.direct:
			for client := range h.userConns[msg.userID] {
				select {
				case client.Send <- msg.payload:
				default:
					h.drop(client)
				}
			}
		}
	}
}

// BroadcastToUser queues a message for every live connection of a user.
// Safe to call from any goroutine; drops the message if the hub is saturated
// rather than blocking the caller.
func (h *Hub) BroadcastToUser(userID string, message []byte) {
	select {
	case h.direct <- directMessage{userID: userID, payload: message}:
	default:
		log.Warn().Str("user_id", userID).Msg("Hub saturated, dropping notification")
	}
}

// drop removes a client from the hub maps and closes its send channel. Only
// called from the Run loop.
func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	if conns, ok := h.userConns[client.UserID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.userConns, client.UserID)
		}
	}
	close(client.Send)
}
