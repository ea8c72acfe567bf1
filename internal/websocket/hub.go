// Package websocket pushes report lifecycle events to connected
// dashboard clients so they can refresh without polling. The payloads
// are intentionally small; clients re-fetch the report endpoints on
// receipt.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"adlens/pkg/contracts/events"
)

// Hub maintains the set of active clients and broadcasts messages to
// them. It owns all client registration state; clients never touch the
// map directly.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	running bool
	quit    chan struct{}

	logger *slog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		logger:     logger.With(slog.String("component", "websocket.hub")),
	}
}

// Start starts the hub's main loop. Safe to call more than once.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.run()
}

// Stop shuts the hub down and closes every client send channel.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)
}

func (h *Hub) run() {
	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("hub shut down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client registered", slog.Int("clients", count))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client unregistered", slog.Int("clients", count))

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow client; drop it rather than block the hub.
					go h.dropClient(client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// dropClient hands a client to the run loop for removal. Once the hub
// has stopped the loop no longer drains unregister, so fall through on
// quit instead of blocking the caller forever.
func (h *Hub) dropClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends an event message to every connected client.
func (h *Hub) Broadcast(msg events.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal broadcast message",
			slog.String("type", msg.Type),
			slog.String("error", err.Error()))
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("broadcast channel full, dropping message",
			slog.String("type", msg.Type))
	}
}

// BroadcastReportLoaded notifies clients that a new report snapshot is
// available.
func (h *Hub) BroadcastReportLoaded(filename string, recordCount, droppedRows int) {
	h.Broadcast(events.Message{
		Type: events.TypeReportLoaded,
		Payload: events.ReportLoadedPayload{
			Filename:    filename,
			RecordCount: recordCount,
			DroppedRows: droppedRows,
		},
	})
}

// BroadcastReportCleared notifies clients that the current report was
// discarded.
func (h *Hub) BroadcastReportCleared() {
	h.Broadcast(events.Message{Type: events.TypeReportCleared})
}
