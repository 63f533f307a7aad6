package websocket

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/tezpos/tezpos/internal/notify"
)

// Hub maintains the set of connected terminals and broadcasts change
// events to all of them.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		clients:    make(map[*Client]bool),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Debug().Int("clients", h.Count()).Msg("terminal connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Debug().Int("clients", h.Count()).Msg("terminal disconnected")

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Buffer full or client dead, drop for this client
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Count returns the number of connected terminals
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends a message to all connected terminals
func (h *Hub) Broadcast(message interface{}) {
	jsonMsg, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Msg("marshal broadcast message")
		return
	}
	select {
	case h.broadcast <- jsonMsg:
	default:
		log.Warn().Msg("broadcast queue full, dropping message")
	}
}

// changeEvent is the wire shape of a change notification
type changeEvent struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
}

// Relay forwards change events from the bus to all connected terminals.
// It returns when the subscription is cancelled.
func (h *Hub) Relay(events <-chan notify.Change) {
	for change := range events {
		h.Broadcast(changeEvent{Type: change.Type, ID: change.ID})
	}
}
