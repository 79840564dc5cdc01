// Package stream fans board events out to connected WebSocket clients.
package stream

import (
	"encoding/json"
	"sync"

	"github.com/kyiku/keydrop-back/internal/model"
)

// TextMessage is the WebSocket text frame type.
const TextMessage = 1

// Client is one connected viewer.
type Client struct {
	ID   string
	Conn model.WebSocketConn

	writeMu sync.Mutex
}

// Send writes one JSON message. Writes to a client are serialized.
func (c *Client) Send(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteJSON(v)
}

func (c *Client) sendRaw(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteMessage(TextMessage, data)
}

// Hub manages connected clients.
type Hub struct {
	clients []*Client
	mu      sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make([]*Client, 0),
	}
}

// Add registers a connection and returns its client.
func (h *Hub) Add(id string, conn model.WebSocketConn) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := &Client{ID: id, Conn: conn}
	h.clients = append(h.clients, c)
	return c
}

// Remove unregisters a client by ID.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, c := range h.clients {
		if c.ID == id {
			h.clients = append(h.clients[:i], h.clients[i+1:]...)
			return
		}
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends v to every client. Clients whose write fails are dropped
// and closed.
func (h *Hub) Broadcast(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*Client, len(h.clients))
	copy(clients, h.clients)
	h.mu.RUnlock()

	for _, c := range clients {
		if c.Conn == nil {
			continue
		}
		if err := c.sendRaw(data); err != nil {
			h.Remove(c.ID)
			_ = c.Conn.Close()
		}
	}
}
