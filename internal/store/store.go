// Package store is the authoritative in-memory data service for users, posts and messages.
//
// A Store is an explicitly owned value: build one with New, seed it with Seed and pass it to
// every caller. Reads always return deep copies, so the only way to change state is through
// the Store's methods.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Atul2512anand/buildforage5/internal/models"
)

// Event types emitted to the Notifier after a successful mutation.
const (
	EventMessageCreated = "message_created"
	EventPostCreated    = "post_created"
	EventPostVerified   = "post_verified"
	EventPostDeleted    = "post_deleted"
	EventTeamChanged    = "team_changed"
	EventCommentAdded   = "comment_added"
	EventUserBlocked    = "user_blocked"
)

// Event describes a mutation. Recipients are the user ids that should be told about it.
type Event struct {
	Type       string
	Recipients []string
	Payload    interface{}
}

// Notifier receives mutation events. It is called outside the store lock.
type Notifier interface {
	Notify(e Event)
}

// Secrets holds bcrypt hashes of the shared credentials.
type Secrets struct {
	LeadAccessKeyHash string
	RootPasswordHash  string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source (tests use a fixed, stepping clock).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithNotifier registers the mutation observer.
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithSecrets sets the hashed lead access key and root password.
func WithSecrets(sec Secrets) Option {
	return func(s *Store) { s.secrets = sec }
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// Store holds every profile, post and message.
type Store struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	userSeq  []string // insertion order
	posts    []*models.Post
	messages []*models.Message

	secrets  Secrets
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		users:  make(map[string]*models.User),
		logger: zap.NewNop(),
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetNotifier replaces the mutation observer after construction.
func (s *Store) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = n
}

func (s *Store) emit(e Event) {
	s.mu.RLock()
	n := s.notifier
	s.mu.RUnlock()
	if n != nil {
		n.Notify(e)
	}
}

// newestFirst returns posts ordered by creation time, most recent first.
// Equal timestamps keep the later insertion first.
func newestFirst(in []*models.Post) []*models.Post {
	out := make([]*models.Post, 0, len(in))
	for i := len(in) - 1; i >= 0; i-- {
		out = append(out, in[i].Clone())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Store) findPost(id string) (int, *models.Post) {
	for i, p := range s.posts {
		if p.ID == id {
			return i, p
		}
	}
	return -1, nil
}
