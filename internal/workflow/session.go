package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Atul2512anand/buildforage5/internal/models"
)

const sessionKeyPrefix = "session:"

// PendingApproval is the admin's in-progress "Assign & Approve" choice.
type PendingApproval struct {
	PostID      string `json:"post_id"`
	DeveloperID string `json:"developer_id,omitempty"`
}

// Session is the per-login state of the application shell.
type Session struct {
	ID         string           `json:"id"`
	UserID     string           `json:"user_id"`
	Role       models.Role      `json:"role"`
	View       View             `json:"view"`
	Pending    *PendingApproval `json:"pending,omitempty"`
	ActiveChat string           `json:"active_chat,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// SessionStore persists sessions between requests. Create is the only call that inserts;
// Save updates a live session and returns ErrSessionNotFound once it was deleted or expired.
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, error)
	Create(ctx context.Context, s *Session) error
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// MemorySessionStore keeps sessions in process memory.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]Session)}
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.Pending != nil {
		p := *s.Pending
		s.Pending = &p
	}
	return &s, nil
}

func (m *MemorySessionStore) put(s *Session) {
	c := *s
	if s.Pending != nil {
		p := *s.Pending
		c.Pending = &p
	}
	m.sessions[s.ID] = c
}

func (m *MemorySessionStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return fmt.Errorf("session %s already exists", s.ID)
	}
	m.put(s)
	return nil
}

func (m *MemorySessionStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; !ok {
		return ErrSessionNotFound
	}
	m.put(s)
	return nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// RedisSessionStore keeps sessions as JSON under session:<id> with a TTL matching the token lifetime.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore creates a Redis-backed session store.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (r *RedisSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (r *RedisSessionStore) Create(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	err = r.client.SetArgs(ctx, sessionKeyPrefix+s.ID, raw, redis.SetArgs{Mode: "NX", TTL: r.ttl}).Err()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("session %s already exists", s.ID)
	}
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Save(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	// XX so a stale copy cannot revive a deleted session; KeepTTL so updates do not outlive the token.
	err = r.client.SetArgs(ctx, sessionKeyPrefix+s.ID, raw, redis.SetArgs{Mode: "XX", KeepTTL: true}).Err()
	if errors.Is(err, redis.Nil) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
