package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Atul2512anand/buildforage5/internal/metrics"
	"github.com/Atul2512anand/buildforage5/internal/models"
)

// Client events.
const (
	EventOpenConversation  = "open_conversation"
	EventCloseConversation = "close_conversation"
	EventError             = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // tokens are checked before upgrade
	},
}

// WSMessage is the WebSocket message envelope.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Source is what a connection reads: threads plus user lookups. *store.Store satisfies it.
type Source interface {
	ConversationSource
	GetUserByID(id string) (*models.User, error)
}

// Authenticator resolves a bearer token to a live user.
type Authenticator func(token string) (userID, role string, err error)

// Client represents a single WebSocket connection of a user.
type Client struct {
	ID       string
	UserID   string
	Role     string
	hub      *Hub
	conn     *websocket.Conn
	send     chan WSMessage
	logger   *zap.Logger
	source   Source
	interval time.Duration
	metrics  *metrics.Metrics

	mu     sync.Mutex
	poller *ConversationPoller
}

// Options tunes ServeWs.
type Options struct {
	PollInterval time.Duration
	Metrics      *metrics.Metrics
}

// ServeWs handles the WebSocket upgrade and runs the client loop.
func ServeWs(hub *Hub, source Source, authenticate Authenticator, opts Options, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
			return
		}
		userID, role, err := authenticate(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			ID:       uuid.New().String(),
			UserID:   userID,
			Role:     role,
			hub:      hub,
			conn:     conn,
			send:     make(chan WSMessage, 256),
			logger:   logger,
			source:   source,
			interval: opts.PollInterval,
			metrics:  opts.Metrics,
		}
		hub.Register(client)
		client.metrics.ConnOpened()
		go client.writePump()
		client.readPump()
	}
}

func (c *Client) deliver(msg WSMessage) {
	select {
	case c.send <- msg:
	default:
		// buffer full, skip
	}
}

func (c *Client) sendEvent(event string, payload interface{}) {
	c.deliver(WSMessage{Event: event, Data: encode(payload)})
}

// openConversation replaces the running poller, stopping the old one first.
func (c *Client) openConversation(otherID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.poller != nil {
		if c.poller.OtherID() == otherID {
			c.poller.Refresh()
			return
		}
		c.poller.Stop()
		c.metrics.PollerStopped()
	}
	c.poller = NewConversationPoller(c.UserID, otherID, c.source, c.sendEvent, c.interval, c.logger)
	c.poller.Start()
	c.metrics.PollerStarted()
}

func (c *Client) closeConversation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.poller != nil {
		c.poller.Stop()
		c.poller = nil
		c.metrics.PollerStopped()
	}
}

func (c *Client) refreshConversation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.poller != nil {
		c.poller.Refresh()
	}
}

func (c *Client) handle(msg WSMessage) {
	switch msg.Event {
	case EventOpenConversation:
		var payload struct {
			UserID string `json:"user_id"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.UserID == "" {
			c.sendEvent(EventError, gin.H{"error": "user_id required"})
			return
		}
		if payload.UserID == c.UserID {
			c.sendEvent(EventError, gin.H{"error": "cannot open a conversation with yourself"})
			return
		}
		if _, err := c.source.GetUserByID(payload.UserID); err != nil {
			c.sendEvent(EventError, gin.H{"error": "user not found"})
			return
		}
		c.openConversation(payload.UserID)
	case EventCloseConversation:
		c.closeConversation()
	default:
		// ignore
	}
}

func (c *Client) readPump() {
	defer func() {
		c.closeConversation()
		c.hub.Unregister(c)
		c.metrics.ConnClosed()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		return nil
	})

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			break
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		c.handle(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(PingInterval * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
