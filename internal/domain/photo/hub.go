package photo

import (
	"encoding/json"
	"io"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	// the feed is one way; clients only send control frames
	maxInboundSize = 4 * 1024
	sendBuffer     = 64
)

type connection struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans photo events out to connected gallery clients.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]*connection

	pongWait   time.Duration
	pingPeriod time.Duration
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*connection),
		pongWait:    pongWait,
		pingPeriod:  pingPeriod,
	}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.connections[c.id]; ok {
		close(old.send)
	}
	h.connections[c.id] = c
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.connections[c.id]; ok && existing == c {
		delete(h.connections, c.id)
		close(c.send)
	}
}

// ServeWS registers conn and blocks until the client goes away.
func (h *Hub) ServeWS(id string, conn *websocket.Conn) {
	c := &connection{
		id:   id,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

// Publish implements Notifier. It never waits on a client: a client whose
// buffer is full is disconnected.
func (h *Hub) Publish(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		log.Printf("photo_feed marshal_failed type=%s error=%q", e.Type, err)
		return
	}

	var slow []*connection
	h.mu.RLock()
	for _, c := range h.connections {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Printf("photo_feed slow_client_dropped client=%s", c.id)
		h.unregister(c)
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.connections)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.connections {
		delete(h.connections, id)
		close(c.send)
	}
}

func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInboundSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(h.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	for {
		_, r, err := c.conn.NextReader()
		if err != nil {
			return
		}
		if _, err := io.Copy(io.Discard, r); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(h.pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
