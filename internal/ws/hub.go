package ws

import (
	"encoding/json"
	"sync"

	"wager_service/internal/domain"
	"wager_service/internal/logger"
)

// Hub tracks connected clients per player and pushes session outcomes
// to them. A player may hold several connections (multiple tabs).
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[int64]map[*Client]bool),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.PlayerID]
	if !ok {
		set = make(map[*Client]bool)
		h.clients[c.PlayerID] = set
	}
	set[c] = true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.PlayerID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.PlayerID)
	}
}

// Publish sends a payload to every connection of the player. Slow
// connections miss the message rather than block the hub.
func (h *Hub) Publish(playerID int64, msgType string, payload any) {
	data, err := json.Marshal(map[string]any{"type": msgType, "data": payload})
	if err != nil {
		logger.Error("ws marshal failed", "type", msgType, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[playerID] {
		select {
		case c.send <- data:
		default:
		}
	}
}

// ForwardOutcomes pushes every outcome from the subscription channel to
// the owning player until the channel closes.
func (h *Hub) ForwardOutcomes(outcomes <-chan domain.Outcome) {
	go func() {
		for o := range outcomes {
			h.Publish(o.PlayerID, "outcome", o)
		}
	}()
}
