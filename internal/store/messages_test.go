package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessageRoundTrip(t *testing.T) {
	n := &recordingNotifier{}
	s := newTestStore(t, WithNotifier(n))
	a := mustFounder(t, s, "Ann", "ann@x.co")
	b := mustDeveloper(t, s, "Bob", "bob@x.co")

	_, err := s.SendMessage(a.ID, b.ID, "hello")
	require.NoError(t, err)
	_, err = s.SendMessage(b.ID, a.ID, "hey")
	require.NoError(t, err)
	_, err = s.SendMessage(a.ID, b.ID, "hi")
	require.NoError(t, err)

	for _, thread := range [][]string{{a.ID, b.ID}, {b.ID, a.ID}} {
		msgs := s.GetMessages(thread[0], thread[1])
		require.Len(t, msgs, 3)
		last := msgs[len(msgs)-1]
		assert.Equal(t, "hi", last.Text)
		assert.Equal(t, a.ID, last.SenderID)
		assert.Equal(t, b.ID, last.RecipientID)
		assert.Equal(t, "hello", msgs[0].Text)
	}

	require.Len(t, n.events, 3)
	assert.Equal(t, EventMessageCreated, n.events[0].Type)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, n.events[0].Recipients)
}

func TestSendMessageValidation(t *testing.T) {
	s := newTestStore(t)
	a := mustFounder(t, s, "Ann", "ann@x.co")
	b := mustDeveloper(t, s, "Bob", "bob@x.co")

	_, err := s.SendMessage(a.ID, b.ID, "   ")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.SendMessage(a.ID, a.ID, "me")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.SendMessage(a.ID, "ghost", "hi")
	require.ErrorIs(t, err, ErrNotFound)

	assert.Empty(t, s.GetMessages(a.ID, b.ID))
	assert.Empty(t, s.GetConversations(a.ID))
}

func TestGetConversations(t *testing.T) {
	s := newTestStore(t)
	a := mustFounder(t, s, "Ann", "ann@x.co")
	b := mustDeveloper(t, s, "Bob", "bob@x.co")
	c := mustDeveloper(t, s, "Cid", "cid@x.co")
	ld := lead(t, s)

	send := func(from, to, text string) {
		_, err := s.SendMessage(from, to, text)
		require.NoError(t, err)
	}
	send(a.ID, b.ID, "1")
	send(c.ID, a.ID, "2")
	send(b.ID, a.ID, "3")
	send(a.ID, ld.ID, "4")
	send(b.ID, c.ID, "not mine")

	convs := s.GetConversations(a.ID)
	assert.Equal(t, []string{ld.ID, b.ID, c.ID}, convs)

	seen := map[string]bool{}
	for _, id := range convs {
		assert.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
	}
	assert.Equal(t, []string{c.ID, a.ID}, s.GetConversations(b.ID))
}

func TestMessagesAreCopies(t *testing.T) {
	s := newTestStore(t)
	a := mustFounder(t, s, "Ann", "ann@x.co")
	b := mustDeveloper(t, s, "Bob", "bob@x.co")
	_, err := s.SendMessage(a.ID, b.ID, "original")
	require.NoError(t, err)

	msgs := s.GetMessages(a.ID, b.ID)
	msgs[0].Text = "tampered"
	assert.Equal(t, "original", s.GetMessages(b.ID, a.ID)[0].Text)
}
