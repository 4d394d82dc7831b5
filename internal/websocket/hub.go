// Package websocket pushes snapshot lifecycle events to connected dashboard
// clients. Delivery is best-effort: a client that cannot keep up is dropped
// and reconnects on its own.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"msydash/pkg/contracts/domain"
)

// Event is the wire format for hub broadcasts.
type Event struct {
	Type       string    `json:"type"`
	SnapshotID string    `json:"snapshot_id,omitempty"`
	BuiltAt    time.Time `json:"built_at,omitempty"`
}

// EventSnapshotPublished announces a freshly published snapshot.
const EventSnapshotPublished = "snapshot:published"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is open to the dashboard origin; same policy here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans events out to connected clients.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[*client]bool
}

// NewHub creates a hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:  logger.With(slog.String("component", "websocket_hub")),
		clients: make(map[*client]bool),
	}
}

// SnapshotPublished implements the service layer's notifier: broadcast the
// new snapshot's identity to every connected client.
func (h *Hub) SnapshotPublished(snapshot *domain.MetricsSnapshot) {
	h.Broadcast(Event{
		Type:       EventSnapshotPublished,
		SnapshotID: snapshot.ID,
		BuiltAt:    snapshot.BuiltAt,
	})
}

// Broadcast sends an event to all clients, dropping any whose send buffer is
// full.
func (h *Hub) Broadcast(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("marshal event", slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("dropping slow websocket client")
		h.remove(c)
	}
}

// ServeHTTP upgrades the connection and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed",
			slog.String("error", err.Error()))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 16)}
	h.mu.Lock()
	h.clients[c] = true
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.InfoContext(r.Context(), "websocket client connected", slog.Int("clients", count))

	go c.writePump()
	go h.readPump(c)
}

// Shutdown closes every client connection.
func (h *Hub) Shutdown(ctx context.Context) {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*client]bool)
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
}

// readPump drains incoming frames; the protocol is one-way, so reads only
// detect disconnects.
func (h *Hub) readPump(c *client) {
	defer h.remove(c)
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

type client struct {
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

const writeWait = 10 * time.Second

func (c *client) writePump() {
	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}
