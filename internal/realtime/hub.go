// Package realtime fans committed state changes out to connected clients grouped
// into rooms.
//
// Publishing never blocks: each connection owns a bounded queue and an event that
// does not fit is dropped for that connection only.
package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"votegate/internal/realtime/metrics"
)

// QueueSize is the outbound buffer per connection.
const QueueSize = 64

// ConnectionRegistry tracks connections and their rooms.
type ConnectionRegistry interface {
	Register(c *Client)
	Unregister(c *Client)
	Join(c *Client, room string)
	Leave(c *Client, room string)
	Broadcast(room string, event Event) int
}

// Client is one connection. The owner reads encoded events from Send and closes
// Done when the connection ends.
type Client struct {
	ID      string
	Role    string
	Subject string

	Send    chan []byte
	Dropped atomic.Int64

	done      chan struct{}
	closeOnce sync.Once
}

// NewClient creates a client with a QueueSize buffer.
func NewClient(id, role, subject string) *Client {
	return &Client{
		ID:      id,
		Role:    role,
		Subject: subject,
		Send:    make(chan []byte, QueueSize),
		done:    make(chan struct{}),
	}
}

// Done is closed once the client is unregistered.
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// trySend queues msg without blocking. It returns false when the queue is full.
func (c *Client) trySend(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- msg:
		return true
	default:
		c.Dropped.Add(1)
		return false
	}
}

// Hub is the in-process ConnectionRegistry.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	joined  map[*Client]map[string]struct{}
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Hub)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Hub) {
		h.metrics = m
	}
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		rooms:  make(map[string]map[*Client]struct{}),
		joined: make(map[*Client]map[string]struct{}),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.joined[c]; ok {
		return
	}
	h.joined[c] = make(map[string]struct{})
	h.metrics.Connected(c.Role)
}

// Unregister removes c from every room and closes Done.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	rooms, ok := h.joined[c]
	if ok {
		for room := range rooms {
			h.removeLocked(c, room)
		}
		delete(h.joined, c)
	}
	h.mu.Unlock()

	if ok {
		h.metrics.Disconnected(c.Role)
	}
	c.close()
}

// Join adds c to room. Unregistered clients are ignored.
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rooms, ok := h.joined[c]
	if !ok {
		return
	}
	members := h.rooms[room]
	if members == nil {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	rooms[room] = struct{}{}
}

func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if rooms, ok := h.joined[c]; ok {
		delete(rooms, room)
	}
	h.removeLocked(c, room)
}

func (h *Hub) removeLocked(c *Client, room string) {
	members := h.rooms[room]
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Rooms returns the rooms c has joined.
func (h *Hub) Rooms(c *Client) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.joined[c]))
	for room := range h.joined[c] {
		out = append(out, room)
	}
	return out
}

// RoomSize returns the number of connections in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Broadcast delivers event to every member of room and returns how many
// connections accepted it.
func (h *Hub) Broadcast(room string, event Event) int {
	event.Room = room
	if event.At.IsZero() {
		event.At = h.now()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("realtime event not encodable",
			"type", event.Type,
			"room", room,
			"error", err,
		)
		return 0
	}

	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range members {
		if c.trySend(payload) {
			delivered++
			continue
		}
		h.metrics.IncDropped()
		h.logger.Warn("realtime event dropped",
			"type", event.Type,
			"room", room,
			"connection_id", c.ID,
		)
	}
	h.metrics.IncPublished(event.Type)
	return delivered
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.joined))
	for c := range h.joined {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		h.Unregister(c)
	}
}

// Publish broadcasts the same event to several rooms.
func (h *Hub) Publish(event Event, rooms ...string) {
	for _, room := range rooms {
		h.Broadcast(room, event)
	}
}
