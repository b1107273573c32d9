package realtime

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Atul2512anand/buildforage5/internal/models"
)

// Events pushed by the conversation poller.
const (
	EventMessages      = "messages"
	EventConversations = "conversations"
)

// ConversationSource reads the data a poller pushes. *store.Store satisfies it.
type ConversationSource interface {
	GetMessages(uid, otherID string) []*models.Message
	GetConversations(uid string) []string
}

// MessagesSnapshot is the payload of a messages event.
type MessagesSnapshot struct {
	With     string            `json:"with"`
	Messages []*models.Message `json:"messages"`
}

// ConversationsSnapshot is the payload of a conversations event.
type ConversationsSnapshot struct {
	UserIDs []string `json:"user_ids"`
}

// ConversationPoller pushes the open thread and the conversation list to one
// connection, immediately and then on every tick until stopped.
type ConversationPoller struct {
	userID    string
	otherID   string
	source    ConversationSource
	send      func(event string, payload interface{})
	logger    *zap.Logger
	interval  time.Duration
	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	refreshCh chan struct{}
}

// NewConversationPoller creates a poller for the thread between userID and otherID.
func NewConversationPoller(userID, otherID string, source ConversationSource, send func(event string, payload interface{}), interval time.Duration, logger *zap.Logger) *ConversationPoller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationPoller{
		userID:    userID,
		otherID:   otherID,
		source:    source,
		send:      send,
		logger:    logger,
		interval:  interval,
		done:      make(chan struct{}),
		refreshCh: make(chan struct{}, 1),
	}
}

// OtherID is the counterpart of the open thread.
func (p *ConversationPoller) OtherID() string { return p.otherID }

// Start begins the refresh loop. Call Stop() to release resources.
func (p *ConversationPoller) Start() {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.mu.Unlock()

	go p.run(ctx)
	p.logger.Debug("conversation poller started",
		zap.String("user_id", p.userID), zap.String("other_id", p.otherID), zap.Duration("interval", p.interval))
}

// Stop stops the loop and waits for it to exit. Safe to call more than once.
func (p *ConversationPoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel == nil {
		return
	}
	p.cancel()
	p.cancel = nil
	<-p.done
	p.logger.Debug("conversation poller stopped", zap.String("user_id", p.userID), zap.String("other_id", p.otherID))
}

// Refresh asks for an out-of-band push, e.g. when a new message was announced.
func (p *ConversationPoller) Refresh() {
	select {
	case p.refreshCh <- struct{}{}:
	default:
	}
}

func (p *ConversationPoller) push() {
	p.send(EventMessages, MessagesSnapshot{With: p.otherID, Messages: p.source.GetMessages(p.userID, p.otherID)})
	p.send(EventConversations, ConversationsSnapshot{UserIDs: p.source.GetConversations(p.userID)})
}

func (p *ConversationPoller) run(ctx context.Context) {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.push()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.refreshCh:
			p.push()
		case <-ticker.C:
			p.push()
		}
	}
}
