// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/ballotbox/metrics"
)

// Hub fans published changes out to websocket clients and in-process
// observers
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan Change
	done       chan struct{}

	mu        sync.RWMutex
	clients   map[*Client]bool
	observers []func(Change)
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Change, 256),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
	}
}

// Observe registers fn to receive every change, in publish order, from the
// Run goroutine. Observers run before clients are sent the change and must
// not block; a slow observer holds up delivery to every subscriber.
func (h *Hub) Observe(fn func(Change)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observers = append(h.observers, fn)
}

// Publish queues a change. It never blocks a request: when the queue is
// full the change is dropped and logged.
func (h *Hub) Publish(c Change) {
	select {
	case h.broadcast <- c:
	default:
		slog.Warn("change feed queue full, dropping change", "table", c.Table, "id", c.ID)
	}
}

// Subscribers returns the number of connected clients
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run processes registrations and broadcasts until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				h.drop(c)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			metrics.RealtimeSubscribers.Inc()

		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				h.drop(c)
			}
			h.mu.Unlock()

		case change := <-h.broadcast:
			h.dispatch(change)
		}
	}
}

func (h *Hub) dispatch(change Change) {
	h.mu.RLock()
	observers := h.observers
	h.mu.RUnlock()
	for _, fn := range observers {
		fn(change)
	}

	payload, err := json.Marshal(change)
	if err != nil {
		slog.Error("failed to encode change", "table", change.Table, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if !c.sub.Matches(change) {
			continue
		}
		select {
		case c.send <- payload:
		default:
			// Slow consumer
			h.drop(c)
		}
	}
}

// drop removes a client; h.mu must be held
func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
	metrics.RealtimeSubscribers.Dec()
}

// Serve attaches an upgraded connection to the hub and blocks until the
// client goes away
func (h *Hub) Serve(conn *websocket.Conn, sub Subscription) {
	c := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 64),
		sub:  sub,
	}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	c.readPump()
}
