package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"fritter/internal/middleware"
	"fritter/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per signed-in user.
	maxConnsPerUser = 12
	// Max total connections.
	maxTotalConns = 10000
)

var (
	ErrServerFull = errors.New("server connection limit reached")
	ErrUserFull   = errors.New("user connection limit reached")
)

// Hub tracks every open event stream and delivers events to them.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	byUser     map[uint]map[*Client]struct{}
	totalConns int
	closed     bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		byUser:  make(map[uint]map[*Client]struct{}),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "event hub" }

// Register adds a connection. userID is zero for anonymous watchers.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || h.totalConns >= maxTotalConns {
		return nil, ErrServerFull
	}
	if userID != 0 && len(h.byUser[userID]) >= maxConnsPerUser {
		return nil, ErrUserFull
	}

	client := newClient(h, conn, userID)
	h.clients[client] = struct{}{}
	if userID != 0 {
		m, ok := h.byUser[userID]
		if !ok {
			m = make(map[*Client]struct{})
			h.byUser[userID] = m
		}
		m[client] = struct{}{}
	}
	h.totalConns++
	observability.WebSocketConnectionsTotal.Inc()
	return client, nil
}

// UnregisterClient removes a connection and closes its send queue, which
// stops WritePump. It is safe to call more than once.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
	if m, ok := h.byUser[client.UserID]; ok {
		delete(m, client)
		if len(m) == 0 {
			delete(h.byUser, client.UserID)
		}
	}
	h.totalConns--
	observability.WebSocketConnectionsTotal.Dec()
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalConns
}

// Broadcast sends message to all connections for userID.
func (h *Hub) Broadcast(userID uint, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for c := range h.byUser[userID] {
		c.TrySend(data)
	}
}

// BroadcastAll sends message to every connected client.
func (h *Hub) BroadcastAll(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for c := range h.clients {
		c.TrySend(data)
	}
}

// BroadcastExcept sends message to every client except those of userID.
func (h *Hub) BroadcastExcept(userID uint, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for c := range h.clients {
		if userID != 0 && c.UserID == userID {
			continue
		}
		c.TrySend(data)
	}
}

// Deliver routes a message received on channel to the matching clients.
func (h *Hub) Deliver(channel, payload string) {
	if channel == broadcastChannel {
		h.BroadcastAll(payload)
		return
	}
	if userID, ok := parseChannelID(exceptChannelPrefix, channel); ok {
		h.BroadcastExcept(userID, payload)
		return
	}
	userID, ok := parseUserChannel(channel)
	if !ok {
		middleware.Logger.Warn("invalid event channel", slog.String("channel", channel))
		return
	}
	h.Broadcast(userID, payload)
}

// StartWiring subscribes the hub to the notifier's Redis channels.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartSubscriber(ctx, h.Deliver)
}

// Shutdown closes every send queue; each WritePump then sends a close frame
// and drops its connection. Later Register calls fail with ErrServerFull.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for client := range h.clients {
		close(client.Send)
	}
	observability.WebSocketConnectionsTotal.Sub(float64(h.totalConns))
	middleware.Logger.Info("event hub closed", slog.Int("connections", h.totalConns))
	h.clients = make(map[*Client]struct{})
	h.byUser = make(map[uint]map[*Client]struct{})
	h.totalConns = 0
	return nil
}
