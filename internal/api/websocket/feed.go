// Package websocket pushes newly created events to connected clients so
// the home feed updates without pull-to-refresh.
package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/harxxhilgg/univent/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool {
		return true // mobile clients connect from device networks
	},
}

type client struct {
	conn *websocket.Conn
}

// Hub fans newly created events out to subscribed connections.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]bool)}
}

// HandleFeed upgrades the connection and holds it open until the client
// disconnects. The feed is write-only; inbound frames are drained and
// dropped.
func (h *Hub) HandleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	c := &client{conn: conn}
	h.addClient(c)
	defer h.deleteClient(c)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends the event to every connected client. Write failures
// drop the connection on its next read.
func (h *Hub) Broadcast(event models.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal feed event", "event_id", event.ID, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.Warn("feed write failed", "error", err)
		}
	}
}

func (h *Hub) addClient(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
	slog.Info("feed client connected", "addr", c.conn.RemoteAddr().String())
}

func (h *Hub) deleteClient(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
	slog.Info("feed client disconnected", "addr", c.conn.RemoteAddr().String())
}
