package hub

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Name for logging
	name   string
	logger *slog.Logger

	// Registered clients
	clients map[*Client]bool

	// Inbound messages to broadcast
	broadcast chan Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed by Close; stops Run
	done      chan struct{}
	closeOnce sync.Once

	// Protects clients and latest
	mu sync.RWMutex

	// Last message, replayed to new clients when replay is on
	replay bool
	latest *Message
}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Hub) { h.logger = l }
}

// WithReplay sends the most recent message to each client on connect, so
// a new status viewer does not wait for the next change.
func WithReplay() Option {
	return func(h *Hub) { h.replay = true }
}

// New creates a new Hub
func New(name string, opts ...Option) *Hub {
	h := &Hub{
		name:       name,
		logger:     slog.Default(),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With("component", "hub", "hub", name)
	return h
}

// Run processes registrations and broadcasts until Close is called.
// This should be called in a goroutine
func (h *Hub) Run() {
	defer func() {
		h.mu.Lock()
		for client := range h.clients {
			close(client.send)
			delete(h.clients, client)
		}
		h.mu.Unlock()
	}()

	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			if h.replay && h.latest != nil {
				client.send <- *h.latest
			}
			h.mu.Unlock()
			h.logger.Debug("client connected", "clients", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client disconnected", "clients", count)

		case message := <-h.broadcast:
			h.mu.Lock()
			if h.replay {
				m := message
				h.latest = &m
			}
			for client := range h.clients {
				select {
				case client.send <- message:
					// Message queued successfully
				default:
					// Client's buffer is full - they're too slow
					close(client.send)
					delete(h.clients, client)
					h.logger.Warn("dropped slow client")
				}
			}
			h.mu.Unlock()
		}
	}
}

// Close stops Run and disconnects every client. Safe to call twice.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Broadcast sends a message to all connected clients
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		// Broadcast channel full - drop message
		h.logger.Warn("broadcast channel full, dropping message")
	}
}

// BroadcastJSON encodes and broadcasts a JSON message
func (h *Hub) BroadcastJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(StatusMessage(data))
	return nil
}

// BroadcastBinary broadcasts a JPEG preview frame.
func (h *Hub) BroadcastBinary(data []byte) {
	h.Broadcast(FrameMessage(data))
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

