package api

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event is one message on the websocket feed.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub fans broadcast events out to attached websocket connections. Slow
// clients are dropped rather than allowed to stall the feed.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
	log     *zap.Logger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		log:     log,
	}
}

// Attach takes ownership of an upgraded connection and starts its pumps.
func (h *Hub) Attach(conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, 64)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) detach(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends an event to every attached client.
func (h *Hub) Broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("event marshal failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Buffer full; the write pump will notice the closed conn.
			h.log.Debug("dropping slow websocket client")
			c.conn.Close()
		}
	}
}

// Close detaches every client.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.detach(c)
			return
		}
	}
}

// readPump drains (and ignores) client messages so pings and closes are
// processed.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.detach(c)
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
