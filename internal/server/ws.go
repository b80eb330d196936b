package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/jadrxma/presentation-go/internal/constants"
	"github.com/jadrxma/presentation-go/internal/domain"
)

// Hub pushes job events to every connected UI client. Clients are
// broadcast-only, inbound frames are read and discarded to keep the
// connection's control handling alive.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The UI is served from this same server, cross-origin pages
			// have nothing useful to read from a broadcast-only feed.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*wsClient]struct{}),
		logger:  logger,
	}
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *wsClient) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *wsClient) writeLoop() {
	defer c.close()
	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(constants.WebSocketConfig.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *wsClient) readLoop() {
	defer c.close()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// HandleWS upgrades the request and serves the client until it disconnects.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan []byte, constants.WebSocketConfig.SendBuffer),
		done: make(chan struct{}),
	}
	h.add(client)

	go client.writeLoop()
	client.readLoop()
	h.remove(client)
}

// Publish broadcasts one job event. Clients whose send buffer is full are
// dropped rather than allowed to stall the generation pipeline.
func (h *Hub) Publish(event domain.JobEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Job event marshal failed", zap.Error(err))
		return
	}

	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.send <- payload:
		case <-client.done:
		default:
			h.logger.Warn("Dropping slow websocket client")
			h.remove(client)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client. Used during shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = make(map[*wsClient]struct{})
	h.mu.Unlock()

	for _, client := range clients {
		client.close()
	}
}

func (h *Hub) add(client *wsClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("WebSocket client connected", zap.Int("clients", count))
}

func (h *Hub) remove(client *wsClient) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if ok {
		client.close()
		h.logger.Info("WebSocket client disconnected", zap.Int("clients", count))
	}
}
