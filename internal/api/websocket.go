package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Origins are already filtered by the CORS layer
	},
}

// Event types pushed to browsers
const (
	EventWelcome     = "welcome"
	EventTableUpdate = "tableUpdate"
	EventCelebrate   = "celebrate"
	EventWishPending = "wishPending"
	EventWish        = "wish"
	EventTableClosed = "tableClosed"
)

// Message represents a WebSocket message
type Message struct {
	Type    string      `json:"type"`
	TableID string      `json:"tableId,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Broadcaster pushes messages to everyone watching a table.
type Broadcaster interface {
	BroadcastToTable(tableID string, message interface{})
}

// Client represents a connected WebSocket client
type Client struct {
	conn    *websocket.Conn
	send    chan []byte
	tableID string
	hub     *Hub
}

// Hub maintains the set of active clients and fans messages out per table
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	tables     map[string]map[*Client]bool
	done       chan struct{}
	mu         sync.RWMutex
	logger     *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		tables:     make(map[string]map[*Client]bool),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves register/unregister requests until ctx is done, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			if _, exists := h.tables[client.tableID]; !exists {
				h.tables[client.tableID] = make(map[*Client]bool)
			}
			h.tables[client.tableID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				h.removeLocked(client)
			}
			h.mu.Unlock()
			return nil
		}
	}
}

func (h *Hub) removeLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}

	delete(h.clients, client)
	close(client.send)

	if tableClients := h.tables[client.tableID]; tableClients != nil {
		delete(tableClients, client)
		// Clean up empty tables
		if len(tableClients) == 0 {
			delete(h.tables, client.tableID)
		}
	}
}

// BroadcastToTable sends a message to all clients in a specific table
func (h *Hub) BroadcastToTable(tableID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal message", zap.String("table_id", tableID), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.tables[tableID] {
		select {
		case client.send <- data:
		default:
			// Slow client; it catches up from the next tableUpdate
			h.logger.Debug("dropping message for slow client", zap.String("table_id", tableID))
		}
	}
}

// ClientCount returns the number of clients watching a table
func (h *Hub) ClientCount(tableID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.tables[tableID])
}

// WebSocketHandler handles WebSocket connections
func (h *Hub) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	tableID := r.URL.Query().Get("tableId")
	if tableID == "" {
		errorResponse(w, http.StatusBadRequest, "tableId is required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		conn:    conn,
		send:    make(chan []byte, 256),
		tableID: tableID,
		hub:     h,
	}

	// Queue the welcome message before the client is visible to broadcasts
	welcomeData, _ := json.Marshal(Message{
		Type:    EventWelcome,
		TableID: tableID,
		Data: map[string]string{
			"message": "Connected to lucky money table",
		},
	})
	client.send <- welcomeData

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	// Start goroutines for reading and writing
	go client.readPump()
	go client.writePump()
}

// readPump drains the connection; browsers only talk over REST
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket closed", zap.String("table_id", c.tableID), zap.Error(err))
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
