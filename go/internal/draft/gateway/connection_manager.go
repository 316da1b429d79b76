// Package gateway is the websocket edge of the draft engine: it upgrades
// client connections, dispatches their commands to the coordinator and fans
// committed events back out to every observer of a session.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/spencerbaird36/The-League-sub000/go/internal/draft/events"
)

// ConnectionConfig holds websocket tuning for the gateway.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production
			return true
		},
	}
}

// Client is one websocket connection. A client observes at most one session
// at a time; joinSession binds it, leaveSession or the socket closing unbinds
// it.
type Client struct {
	ID      string
	conn    *websocket.Conn
	send    chan []byte
	manager *ConnectionManager

	mu            sync.Mutex
	sessionID     uuid.UUID
	participantID uuid.UUID
	displayName   string
	connectedAt   time.Time
}

// Session returns the session the client has joined, if any.
func (c *Client) Session() (uuid.UUID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID, c.sessionID != uuid.Nil
}

// Participant returns the identity the client joined with.
func (c *Client) Participant() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.participantID
}

func (c *Client) bind(sessionID, participantID uuid.UUID, displayName string) {
	c.mu.Lock()
	c.sessionID = sessionID
	c.participantID = participantID
	c.displayName = displayName
	c.mu.Unlock()
}

func (c *Client) unbind() {
	c.mu.Lock()
	c.sessionID = uuid.Nil
	c.participantID = uuid.Nil
	c.displayName = ""
	c.mu.Unlock()
}

type broadcastMessage struct {
	sessionID uuid.UUID
	data      []byte
}

// ConnectionManager owns the websocket connection pools, one per session,
// and the broadcast fan-out loop. It satisfies events.Broadcaster.
type ConnectionManager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]map[*Client]bool

	upgrader    websocket.Upgrader
	config      ConnectionConfig
	broadcastCh chan broadcastMessage
}

func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		sessions: make(map[uuid.UUID]map[*Client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan broadcastMessage, 1000),
	}
}

// Run drains the broadcast channel until the context ends.
func (cm *ConnectionManager) Run(ctx context.Context) {
	log.Info().Msg("connection manager started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			return
		case msg := <-cm.broadcastCh:
			cm.fanOut(msg)
		}
	}
}

// Upgrade turns the HTTP request into a websocket client. The caller owns
// starting the pumps.
func (cm *ConnectionManager) Upgrade(w http.ResponseWriter, r *http.Request) (*Client, error) {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("upgrade connection: %w", err)
	}

	client := &Client{
		ID:          uuid.New().String(),
		conn:        conn,
		send:        make(chan []byte, 256),
		manager:     cm,
		connectedAt: time.Now(),
	}

	log.Info().
		Str("connection_id", client.ID).
		Str("remote", r.RemoteAddr).
		Msg("websocket connection established")

	return client, nil
}

// Broadcast enqueues the event for every client of the session. The channel
// is bounded; when it is full the event is dropped rather than blocking the
// commit path.
func (cm *ConnectionManager) Broadcast(sessionID uuid.UUID, event *events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(event.Type)).Msg("failed to marshal event")
		return
	}
	select {
	case cm.broadcastCh <- broadcastMessage{sessionID: sessionID, data: data}:
	default:
		log.Warn().
			Str("session_id", sessionID.String()).
			Str("event_type", string(event.Type)).
			Msg("broadcast channel full, dropping event")
	}
}

// Send delivers an event to a single client, bypassing the session pool.
// Used for command replies and pickError.
func (cm *ConnectionManager) Send(client *Client, event *events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(event.Type)).Msg("failed to marshal event")
		return
	}
	cm.deliver(client, data)
}

func (cm *ConnectionManager) fanOut(msg broadcastMessage) {
	cm.mu.RLock()
	pool := cm.sessions[msg.sessionID]
	targets := make([]*Client, 0, len(pool))
	for client := range pool {
		targets = append(targets, client)
	}
	cm.mu.RUnlock()

	for _, client := range targets {
		cm.deliver(client, msg.data)
	}
}

func (cm *ConnectionManager) deliver(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		// Slow consumer; drop the connection rather than the commit path.
		log.Warn().
			Str("connection_id", client.ID).
			Msg("send buffer full, closing connection")
		cm.detach(client)
		client.conn.Close()
	}
}

// attach places the client in a session pool.
func (cm *ConnectionManager) attach(client *Client, sessionID uuid.UUID) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.sessions[sessionID] == nil {
		cm.sessions[sessionID] = make(map[*Client]bool)
	}
	cm.sessions[sessionID][client] = true
}

// detach removes the client from whatever pool it is in. Safe to call twice.
func (cm *ConnectionManager) detach(client *Client) {
	sessionID, ok := client.Session()
	if !ok {
		return
	}
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if pool, exists := cm.sessions[sessionID]; exists {
		delete(pool, client)
		if len(pool) == 0 {
			delete(cm.sessions, sessionID)
		}
	}
}

// Stats reports active connection counts per session.
func (cm *ConnectionManager) Stats() map[string]any {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	total := 0
	perSession := make(map[string]int)
	for sessionID, pool := range cm.sessions {
		total += len(pool)
		perSession[sessionID.String()] = len(pool)
	}
	return map[string]any{
		"total_connections":   total,
		"active_sessions":     len(cm.sessions),
		"session_connections": perSession,
	}
}

// writePump serializes all writes to the socket and keeps the ping cadence.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.manager.config.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Debug().
					Err(err).
					Str("connection_id", c.ID).
					Msg("write failed, closing connection")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.manager.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads client commands until the socket closes, handing each raw
// message to handle and the eventual disconnect to closed.
func (c *Client) readPump(ctx context.Context, handle func(context.Context, *Client, []byte), closed func(context.Context, *Client)) {
	defer func() {
		closed(ctx, c)
		c.manager.detach(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.manager.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.manager.config.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.manager.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected websocket close")
			}
			break
		}
		handle(ctx, c, message)
		c.conn.SetReadDeadline(time.Now().Add(c.manager.config.ReadTimeout))
	}
}
