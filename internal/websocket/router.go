// Package websocket provides WebSocket message handling utilities.
package websocket

import (
	"encoding/json"
	"errors"
)

// ErrUnknownType is returned for messages no handler is registered for.
var ErrUnknownType = errors.New("unknown message type")

// Sender writes one JSON message to a client.
type Sender interface {
	Send(v interface{}) error
}

// Message is an inbound client message. Fields beyond Type are used by
// specific message types only.
type Message struct {
	Type   string  `json:"type"`
	Slider string  `json:"slider,omitempty"`
	Value  float64 `json:"value,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Angle  float64 `json:"angle,omitempty"`
}

// HandlerFunc handles one decoded message.
type HandlerFunc func(msg Message) error

// Router dispatches inbound messages by type. Pings are answered directly.
type Router struct {
	out      Sender
	handlers map[string]HandlerFunc
}

// NewRouter creates a Router replying through out.
func NewRouter(out Sender) *Router {
	return &Router{
		out:      out,
		handlers: make(map[string]HandlerFunc),
	}
}

// On registers fn for messages of type msgType.
func (r *Router) On(msgType string, fn HandlerFunc) {
	r.handlers[msgType] = fn
}

// Handle decodes and dispatches one raw message.
func (r *Router) Handle(raw []byte) error {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return err
	}

	if msg.Type == "ping" {
		return r.out.Send(map[string]interface{}{
			"type": "pong",
		})
	}

	fn, ok := r.handlers[msg.Type]
	if !ok {
		return ErrUnknownType
	}
	return fn(msg)
}
