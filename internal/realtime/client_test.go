package realtime

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func wsServer(t *testing.T, src Source) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := NewHub(nil, nil, nil)
	auth := func(token string) (string, string, error) {
		if token == "alice-token" {
			return "alice", "FOUNDER", nil
		}
		return "", "", errors.New("bad token")
	}
	r := gin.New()
	r.GET("/ws", ServeWs(hub, src, auth, Options{PollInterval: 20 * time.Millisecond}, zap.NewNop()))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func readEvent(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestServeWsRejectsBadToken(t *testing.T) {
	_, url := wsServer(t, &fakeSource{})
	_, resp, err := websocket.DefaultDialer.Dial(url+"?token=nope", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServeWsConversationLifecycle(t *testing.T) {
	src := &fakeSource{users: map[string]bool{"bob": true, "carol": true}}
	src.add("alice", "bob", "hi bob")
	src.add("carol", "alice", "hi alice")
	hub, url := wsServer(t, src)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token=alice-token", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Connections("alice") == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"event": EventOpenConversation, "data": map[string]string{"user_id": "ghost"}}))
	assert.Equal(t, EventError, readEvent(t, conn).Event)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"event": EventOpenConversation, "data": map[string]string{"user_id": "bob"}}))
	msg := readEvent(t, conn)
	require.Equal(t, EventMessages, msg.Event)
	var snap MessagesSnapshot
	require.NoError(t, json.Unmarshal(msg.Data, &snap))
	assert.Equal(t, "bob", snap.With)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "hi bob", snap.Messages[0].Text)

	msg = readEvent(t, conn)
	require.Equal(t, EventConversations, msg.Event)
	var convs ConversationsSnapshot
	require.NoError(t, json.Unmarshal(msg.Data, &convs))
	assert.Equal(t, []string{"carol", "bob"}, convs.UserIDs)

	// switching threads: eventually only carol's thread is pushed
	require.NoError(t, conn.WriteJSON(map[string]interface{}{"event": EventOpenConversation, "data": map[string]string{"user_id": "carol"}}))
	switched := false
	for deadline := time.Now().Add(2 * time.Second); time.Now().Before(deadline) && !switched; {
		m := readEvent(t, conn)
		if m.Event != EventMessages {
			continue
		}
		var s MessagesSnapshot
		require.NoError(t, json.Unmarshal(m.Data, &s))
		switched = s.With == "carol"
	}
	require.True(t, switched, "no snapshot for the new thread")

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Connections("alice") == 0 }, 2*time.Second, 5*time.Millisecond)
}
