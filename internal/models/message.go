package models

import (
	"time"
)

// Message is a direct message between two users. Messages are never edited.
type Message struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

// Involves reports whether uid is the sender or the recipient.
func (m *Message) Involves(uid string) bool {
	return m.SenderID == uid || m.RecipientID == uid
}

// Between reports whether the message belongs to the conversation of a and b.
func (m *Message) Between(a, b string) bool {
	return (m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a)
}

// Counterpart returns the other participant from uid's point of view.
func (m *Message) Counterpart(uid string) string {
	if m.SenderID == uid {
		return m.RecipientID
	}
	return m.SenderID
}
