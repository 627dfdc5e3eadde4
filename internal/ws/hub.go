package ws

import (
	"log/slog"
	"sync"

	"github.com/jashanpreetsinghdod/bankroom/internal/model"
)

// Hub tracks the connected subscribers of a single room
type Hub struct {
	roomID model.RoomID
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[*Client]bool
}

// NewHub creates a new Hub for a room
func NewHub(roomID model.RoomID, logger *slog.Logger) *Hub {
	return &Hub{
		roomID:  roomID,
		logger:  logger.With(slog.String("room", string(roomID))),
		clients: make(map[*Client]bool),
	}
}

// RoomID returns the room this hub serves
func (h *Hub) RoomID() model.RoomID {
	return h.roomID
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	clientCount := len(h.clients)
	h.mu.Unlock()

	client.setRoom(h)

	h.logger.Info("subscriber registered",
		slog.String("user_id", string(client.User.ID)),
		slog.Int("total_clients", clientCount))
}

// Unregister removes a client from the hub. The client's connection
// stays open; only the room subscription ends.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
	}
	clientCount := len(h.clients)
	h.mu.Unlock()

	client.clearRoom(h)

	h.logger.Info("subscriber unregistered",
		slog.String("user_id", string(client.User.ID)),
		slog.Int("total_clients", clientCount))
}

// Broadcast sends a message to every subscriber. Delivery to a client
// with a full buffer is dropped; the next snapshot self-heals it.
func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for client := range h.clients {
		if !client.Send(message) {
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("broadcast partial failure",
			slog.Int("sent", len(h.clients)-dropped),
			slog.Int("dropped", dropped))
	}
}

// SendToUser sends a message to every connection a user holds in this room
func (h *Hub) SendToUser(userID model.UserID, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.User.ID == userID {
			client.Send(message)
		}
	}
}

// DetachAll removes every subscriber, leaving their connections open.
// Used after the terminal room_deleted event has been broadcast.
func (h *Hub) DetachAll() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = make(map[*Client]bool)
	h.mu.Unlock()

	for _, client := range clients {
		client.clearRoom(h)
	}
}

// ClientCount returns the number of connected subscribers
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HubManager manages hubs for all rooms
type HubManager struct {
	mu     sync.RWMutex
	hubs   map[model.RoomID]*Hub
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.RoomID]*Hub),
		logger: logger.With(slog.String("component", "ws")),
	}
}

// GetOrCreateHub returns the hub for a room, creating one if it doesn't exist
func (m *HubManager) GetOrCreateHub(roomID model.RoomID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[roomID]; ok {
		return hub
	}

	hub := NewHub(roomID, m.logger)
	m.hubs[roomID] = hub
	return hub
}

// GetHub returns the hub for a room, or nil if it doesn't exist
func (m *HubManager) GetHub(roomID model.RoomID) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[roomID]
}

// RemoveHub detaches every subscriber and drops the hub
func (m *HubManager) RemoveHub(roomID model.RoomID) {
	m.mu.Lock()
	hub, ok := m.hubs[roomID]
	delete(m.hubs, roomID)
	m.mu.Unlock()

	if ok {
		hub.DetachAll()
	}
}
