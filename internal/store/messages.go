package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Atul2512anand/buildforage5/internal/models"
)

// SendMessage appends a direct message. Empty text stores nothing.
func (s *Store) SendMessage(senderID, recipientID, text string) (*models.Message, error) {
	if blank(text) {
		return nil, fmt.Errorf("%w: message text is required", ErrInvalidInput)
	}
	if senderID == recipientID {
		return nil, fmt.Errorf("%w: cannot message yourself", ErrInvalidInput)
	}
	s.mu.Lock()
	if _, ok := s.users[senderID]; !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("sender %w", ErrNotFound)
	}
	if _, ok := s.users[recipientID]; !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("recipient %w", ErrNotFound)
	}
	m := &models.Message{
		ID:          s.newID(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Text:        strings.TrimSpace(text),
		CreatedAt:   s.now(),
	}
	s.messages = append(s.messages, m)
	out := *m
	s.mu.Unlock()

	s.emit(Event{Type: EventMessageCreated, Recipients: []string{senderID, recipientID}, Payload: out})
	return &out, nil
}

// GetMessages returns the conversation between uid and otherID, oldest first.
func (s *Store) GetMessages(uid, otherID string) []*models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Message, 0)
	for _, m := range s.messages {
		if m.Between(uid, otherID) {
			c := *m
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// GetConversations returns the distinct counterparts of uid, most recent message first.
func (s *Store) GetConversations(uid string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var involved []*models.Message
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Involves(uid) {
			involved = append(involved, s.messages[i])
		}
	}
	sort.SliceStable(involved, func(i, j int) bool { return involved[i].CreatedAt.After(involved[j].CreatedAt) })

	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, m := range involved {
		other := m.Counterpart(uid)
		if !seen[other] {
			seen[other] = true
			out = append(out, other)
		}
	}
	return out
}
