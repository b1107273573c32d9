package realtime

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atul2512anand/buildforage5/internal/models"
)

type fakeSource struct {
	mu       sync.Mutex
	messages []*models.Message
	users    map[string]bool
}

func (f *fakeSource) GetMessages(uid, otherID string) []*models.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Message
	for _, m := range f.messages {
		if m.Between(uid, otherID) {
			c := *m
			out = append(out, &c)
		}
	}
	return out
}

func (f *fakeSource) GetConversations(uid string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for i := len(f.messages) - 1; i >= 0; i-- {
		m := f.messages[i]
		if !m.Involves(uid) {
			continue
		}
		other := m.Counterpart(uid)
		if !seen[other] {
			seen[other] = true
			out = append(out, other)
		}
	}
	return out
}

func (f *fakeSource) GetUserByID(id string) (*models.User, error) {
	if f.users[id] {
		return &models.User{ID: id}, nil
	}
	return nil, assert.AnError
}

func (f *fakeSource) add(from, to, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, &models.Message{ID: text, SenderID: from, RecipientID: to, Text: text})
}

type recorder struct {
	mu     sync.Mutex
	events []string
	last   MessagesSnapshot
}

func (r *recorder) send(event string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	if snap, ok := payload.(MessagesSnapshot); ok {
		r.last = snap
	}
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *recorder) lastMessages() MessagesSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func TestPollerPushesImmediately(t *testing.T) {
	src := &fakeSource{}
	src.add("a", "b", "hello")
	rec := &recorder{}
	p := NewConversationPoller("a", "b", src, rec.send, time.Hour, nil)
	p.Start()
	defer p.Stop()

	require.Eventually(t, func() bool { return rec.count() >= 2 }, time.Second, 5*time.Millisecond)
	rec.mu.Lock()
	assert.Equal(t, []string{EventMessages, EventConversations}, rec.events[:2])
	rec.mu.Unlock()
	snap := rec.lastMessages()
	assert.Equal(t, "b", snap.With)
	require.Len(t, snap.Messages, 1)
}

func TestPollerTicksAndPicksUpNewMessages(t *testing.T) {
	src := &fakeSource{}
	rec := &recorder{}
	p := NewConversationPoller("a", "b", src, rec.send, 10*time.Millisecond, nil)
	p.Start()
	defer p.Stop()

	src.add("b", "a", "new")
	require.Eventually(t, func() bool {
		return len(rec.lastMessages().Messages) == 1
	}, time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, rec.count(), 4)
}

func TestPollerRefresh(t *testing.T) {
	src := &fakeSource{}
	rec := &recorder{}
	p := NewConversationPoller("a", "b", src, rec.send, time.Hour, nil)
	p.Start()
	defer p.Stop()
	require.Eventually(t, func() bool { return rec.count() == 2 }, time.Second, 5*time.Millisecond)

	src.add("a", "b", "x")
	p.Refresh()
	require.Eventually(t, func() bool { return rec.count() == 4 }, time.Second, 5*time.Millisecond)
	assert.Len(t, rec.lastMessages().Messages, 1)
}

func TestPollerStopHaltsPushes(t *testing.T) {
	rec := &recorder{}
	p := NewConversationPoller("a", "b", &fakeSource{}, rec.send, 5*time.Millisecond, nil)
	p.Start()
	require.Eventually(t, func() bool { return rec.count() >= 4 }, time.Second, time.Millisecond)
	p.Stop()
	p.Stop()

	n := rec.count()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, rec.count())
}
