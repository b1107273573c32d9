package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Atul2512anand/buildforage5/internal/models"
	"github.com/Atul2512anand/buildforage5/pkg/utils"
)

const (
	testRootPassword = "root-secret"
	testLeadKey      = "lead-key"
)

// stepClock advances one second on every call so ordering is deterministic.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *recordingNotifier) Notify(e Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	rootHash, err := utils.HashSecret(testRootPassword)
	require.NoError(t, err)
	leadHash, err := utils.HashSecret(testLeadKey)
	require.NoError(t, err)

	clock := &stepClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	base := []Option{
		WithClock(clock.Now),
		WithSecrets(Secrets{LeadAccessKeyHash: leadHash, RootPasswordHash: rootHash}),
	}
	s := New(append(base, opts...)...)
	require.NoError(t, Seed(s, SeedConfig{
		LeadName: "Lena Lead", LeadEmail: "lead@buildforge.io",
		AdminName: "Root", AdminEmail: "root@buildforge.io",
	}))
	return s
}

func mustFounder(t *testing.T, s *Store, name, email string) *models.User {
	t.Helper()
	u, err := s.SignupFounder(FounderSignup{Name: name, Email: email, StartupName: name + " Inc"})
	require.NoError(t, err)
	return u
}

func mustDeveloper(t *testing.T, s *Store, name, email string) *models.User {
	t.Helper()
	u, err := s.SignupDeveloper(DeveloperSignup{Name: name, Email: email, Skills: []string{"Go"}})
	require.NoError(t, err)
	return u
}

func mustPost(t *testing.T, s *Store, author *models.User, kind models.PostKind, title string) *models.Post {
	t.Helper()
	p, err := s.CreatePost(models.NewPost{
		AuthorID: author.ID, AuthorName: author.Name, AuthorRole: author.Role,
		Kind: kind, Title: title, Content: title + " content",
	})
	require.NoError(t, err)
	return p
}

func lead(t *testing.T, s *Store) *models.User {
	t.Helper()
	u, err := s.LoginLead("lead@buildforge.io", testLeadKey)
	require.NoError(t, err)
	return u
}

func ids(posts []*models.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func userIDs(users []*models.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}
