package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
)

func newHubServer(t *testing.T, hub *ConnectionHub) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wsConn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		conn := NewConn(context.Background(), r.URL.Query().Get("id"), wsConn)
		require.NoError(t, hub.Add(conn))
		go func() {
			_ = conn.Listen()
			_ = hub.Delete(conn.ID())
		}()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, id string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?id=" + id
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestBroadcastReachesEveryClient(t *testing.T) {
	hub := NewConnHub(logger.NewNop())
	srv := newHubServer(t, hub)

	a := dial(t, srv, "a")
	b := dial(t, srv, "b")
	require.Eventually(t, func() bool { return hub.Len() == 2 }, time.Second, 10*time.Millisecond)

	sent := hub.Broadcast(context.Background(), map[string]string{"type": "ALERT_PUBLISHED"})
	assert.Equal(t, 2, sent)

	for _, c := range []*websocket.Conn{a, b} {
		var got map[string]string
		_ = c.SetReadDeadline(time.Now().Add(time.Second))
		require.NoError(t, c.ReadJSON(&got))
		assert.Equal(t, "ALERT_PUBLISHED", got["type"])
	}
}

func TestClientDisconnectIsForgotten(t *testing.T) {
	hub := NewConnHub(logger.NewNop())
	srv := newHubServer(t, hub)

	c := dial(t, srv, "a")
	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, c.Close())
	require.Eventually(t, func() bool { return hub.Len() == 0 }, time.Second, 10*time.Millisecond)

	hub.Close()
	assert.Equal(t, 0, hub.Len())
}

func TestDeleteUnknown(t *testing.T) {
	hub := NewConnHub(logger.NewNop())
	assert.ErrorIs(t, hub.Delete("missing"), ErrConnIsNotFound)
	assert.ErrorIs(t, hub.Add(nil), ErrEmptyConn)
}
