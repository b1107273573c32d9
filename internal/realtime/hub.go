package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/Atul2512anand/buildforage5/internal/store"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// Hub maintains user_id -> set of connections and delivers per-user events.
// With Redis configured, events are published to user:<id> and every instance
// delivers to its own connections from the subscription.
type Hub struct {
	// userID -> map[clientID]*Client
	users    map[string]map[string]*Client
	subs     map[string]func() // cancel Redis subscription per user
	mu       sync.RWMutex
	logger   *zap.Logger
	redis    RedisPublisher
	redisSub RedisSubscriber
}

// RedisPublisher is the interface for publishing to Redis (for cross-instance delivery).
type RedisPublisher interface {
	PublishUserEvent(userID string, event string, payload []byte) error
}

// RedisSubscriber subscribes to user channels and invokes handler for incoming events.
type RedisSubscriber interface {
	SubscribeUser(userID string, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub. redisPub and redisSub may be nil.
func NewHub(logger *zap.Logger, redisPub RedisPublisher, redisSub RedisSubscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		users:    make(map[string]map[string]*Client),
		subs:     make(map[string]func()),
		logger:   logger,
		redis:    redisPub,
		redisSub: redisSub,
	}
}

// Register adds a client for its user. Starts the Redis subscription for the user if first client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.users[c.UserID] == nil {
		h.users[c.UserID] = make(map[string]*Client)
		if h.redisSub != nil {
			userID := c.UserID
			cancel, err := h.redisSub.SubscribeUser(userID, func(event string, payload []byte) {
				h.SendToUser(userID, event, json.RawMessage(payload))
			})
			if err != nil {
				h.logger.Warn("redis subscribe failed", zap.String("user_id", userID), zap.Error(err))
			} else {
				h.subs[userID] = cancel
			}
		}
	}
	h.users[c.UserID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client connected", zap.String("client_id", c.ID), zap.String("user_id", c.UserID))
}

// Unregister removes a client. Cancels the Redis subscription when the user's last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.users[c.UserID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.users, c.UserID)
			if cancel, ok := h.subs[c.UserID]; ok {
				cancel()
				delete(h.subs, c.UserID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client disconnected", zap.String("client_id", c.ID), zap.String("user_id", c.UserID))
}

func encode(payload interface{}) []byte {
	switch v := payload.(type) {
	case []byte:
		return v
	case json.RawMessage:
		return v
	default:
		data, _ := json.Marshal(payload)
		return data
	}
}

// SendToUser sends a message to every local connection of userID.
func (h *Hub) SendToUser(userID string, event string, payload interface{}) {
	msg := WSMessage{Event: event, Data: encode(payload)}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.users[userID]))
	for _, c := range h.users[userID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.deliver(msg)
		if event == store.EventMessageCreated {
			c.refreshConversation()
		}
	}
}

// PublishToUser routes an event through Redis when configured, so the subscriber
// callback performs delivery once on every instance. Without Redis it delivers locally.
func (h *Hub) PublishToUser(userID string, event string, payload interface{}) {
	if h.redis != nil {
		if err := h.redis.PublishUserEvent(userID, event, encode(payload)); err != nil {
			h.logger.Warn("redis publish failed", zap.String("user_id", userID), zap.String("event", event), zap.Error(err))
			h.SendToUser(userID, event, payload)
		}
		return
	}
	h.SendToUser(userID, event, payload)
}

// Notify implements store.Notifier.
func (h *Hub) Notify(e store.Event) {
	data := encode(e.Payload)
	for _, uid := range e.Recipients {
		h.PublishToUser(uid, e.Type, json.RawMessage(data))
	}
}

// Connections returns the number of local connections of userID.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}
