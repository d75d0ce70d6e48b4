package sse

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Event is a single Server-Sent Event
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// WriteTo writes the event in text/event-stream framing
func (e Event) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.EventType, e.Data)
	return int64(n), err
}

// Client is a connected stream. Topic scopes delivery; an empty topic
// receives every event.
type Client struct {
	ID     string
	Topic  string
	Events chan Event
}

// Hub fans events out to connected clients
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a client
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	slog.Debug("sse client registered", "client_id", client.ID, "topic", client.Topic, "total", len(h.clients))
}

// Unregister removes a client and closes its channel
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		slog.Debug("sse client unregistered", "client_id", clientID, "total", len(h.clients))
	}
}

// Publish delivers event to clients subscribed to topic (and to clients
// without a topic). A client with a full buffer misses the event. It
// returns how many clients received it.
func (h *Hub) Publish(topic string, event Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, client := range h.clients {
		if client.Topic != "" && client.Topic != topic {
			continue
		}
		select {
		case client.Events <- event:
			delivered++
		default:
			slog.Warn("sse client buffer full, skipping event", "client_id", client.ID, "event", event.EventType)
		}
	}
	return delivered
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
