package websocket

import (
	"context"
	"sync"

	"github.com/dreschagin/netpulse/internal/application/dto"
	"github.com/dreschagin/netpulse/pkg/logger"
)

// Message is the envelope sent to clients.
type Message struct {
	Type string      `json:"type"` // "snapshot" or "alert"
	Data interface{} `json:"data"`
}

// Hub manages WebSocket clients and fans out monitor updates.
// Implements port.NotificationService.
//
// Fan-out takes a snapshot of the registry first, so a slow client found
// mid-broadcast is evicted without mutating the set being iterated and
// without affecting delivery to the others.
type Hub struct {
	clients map[*Client]bool

	broadcast      chan *dto.MonitorSnapshotDTO
	broadcastAlert chan *dto.AlertDTO
	register       chan *Client
	unregister     chan *Client

	mu     sync.RWMutex
	logger *logger.Logger
}

func NewHub(logger *logger.Logger) *Hub {
	return &Hub{
		clients:        make(map[*Client]bool),
		broadcast:      make(chan *dto.MonitorSnapshotDTO, 256),
		broadcastAlert: make(chan *dto.AlertDTO, 256),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		logger:         logger,
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
// Must run in its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("WebSocket hub started")

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("Client registered", "total_clients", total)

		case client := <-h.unregister:
			h.removeClient(client)

		case snapshot := <-h.broadcast:
			h.fanOut(Message{Type: "snapshot", Data: snapshot})

		case alert := <-h.broadcastAlert:
			h.fanOut(Message{Type: "alert", Data: alert})

		case <-ctx.Done():
			h.closeAll()
			h.logger.Info("WebSocket hub stopped")
			return
		}
	}
}

// fanOut delivers the message to every client known at the start of the
// broadcast. A client whose send buffer is full is evicted; the rest are
// unaffected.
func (h *Hub) fanOut(message Message) {
	h.mu.RLock()
	recipients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		recipients = append(recipients, client)
	}
	h.mu.RUnlock()

	for _, client := range recipients {
		select {
		case client.send <- message:
		default:
			h.logger.Warn("Client send buffer full, disconnecting")
			h.removeClient(client)
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.logger.Debug("Client unregistered", "total_clients", len(h.clients))
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

// Register adds a new client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Broadcast queues a monitor snapshot for all clients (port.NotificationService).
func (h *Hub) Broadcast(snapshot *dto.MonitorSnapshotDTO) {
	select {
	case h.broadcast <- snapshot:
	default:
		h.logger.Warn("Broadcast channel full, dropping snapshot")
	}
}

// BroadcastAlert queues an alert for all clients (port.NotificationService).
func (h *Hub) BroadcastAlert(alert *dto.AlertDTO) {
	select {
	case h.broadcastAlert <- alert:
	default:
		h.logger.Warn("Broadcast alert channel full, dropping alert")
	}
}

// ClientCount returns the number of connected clients (port.NotificationService).
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
