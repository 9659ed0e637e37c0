// Package realtime is the connection broker that lets two users
// exchange ephemeral signals (message delivery, typing indicators)
// outside the persisted record. Nothing here is stored and delivery is
// best-effort; the message store remains the source of truth.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// Inbound event names accepted from clients.
const (
	EventSendMessage    = "send-message"
	EventTyping         = "typing"
	EventStopTyping     = "stop-typing"
	EventReceiveMessage = "receive-message"
)

// Conn is the subset of a websocket connection the hub needs. Declared
// as an interface so the hub can be tested without real sockets.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Envelope is an inbound client frame addressed to another user
type Envelope struct {
	Event   string          `json:"event"`
	To      string          `json:"to"`
	Payload json.RawMessage `json:"payload"`
}

// Frame is an outbound delivery to a receiver's connections
type Frame struct {
	Event   string      `json:"event"`
	From    string      `json:"from,omitempty"`
	Payload interface{} `json:"payload"`
}

// Hub tracks the open connections of each user and fans frames out to
// every connection a receiver has
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[Conn]struct{}
	log     *logrus.Logger
}

// NewHub creates an empty Hub
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[Conn]struct{}),
		log:     log,
	}
}

// Register adds a connection for userID
func (h *Hub) Register(userID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[Conn]struct{})
	}
	h.clients[userID][c] = struct{}{}
	h.log.WithField("user", userID).Debug("realtime client connected")
}

// Unregister removes a connection for userID
func (h *Hub) Unregister(userID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[userID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.clients, userID)
		}
	}
	h.log.WithField("user", userID).Debug("realtime client disconnected")
}

// Push delivers a frame to every connection of the receiver. A write
// failure only drops that connection's delivery; there is no retry.
func (h *Hub) Push(to string, frame Frame) {
	h.mu.RLock()
	conns := make([]Conn, 0, len(h.clients[to]))
	for c := range h.clients[to] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.WriteJSON(frame); err != nil {
			h.log.WithField("user", to).WithError(err).Warn("realtime push failed")
		}
	}
}

// Forward relays a client envelope to its addressee. Unknown events are
// ignored.
func (h *Hub) Forward(from string, env Envelope) {
	switch env.Event {
	case EventSendMessage:
		h.Push(env.To, Frame{Event: EventReceiveMessage, From: from, Payload: env.Payload})
	case EventTyping, EventStopTyping:
		h.Push(env.To, Frame{Event: env.Event, From: from, Payload: env.Payload})
	}
}
