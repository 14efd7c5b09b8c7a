package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survivalboard/services"
)

func serveHub(t *testing.T, hub *Hub) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := hub.Register(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				hub.Unregister(client)
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func clientCount(h *Hub) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func TestHub_BroadcastReachesEveryClient(t *testing.T) {
	log, _ := test.NewNullLogger()
	hub := NewHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	url := serveHub(t, hub)
	var clients []*websocket.Conn
	for i := 0; i < 2; i++ {
		c, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		defer c.Close()
		clients = append(clients, c)
	}
	require.Eventually(t, func() bool { return clientCount(hub) == 2 }, 5*time.Second, 10*time.Millisecond)

	entries := []services.LeaderboardEntry{{PlayerName: "B", FinalTime: 60, SessionID: "game_1_b"}}
	hub.Broadcast(entries)

	for _, c := range clients {
		c.SetReadDeadline(time.Now().Add(5 * time.Second))
		var got LeaderboardUpdate
		require.NoError(t, c.ReadJSON(&got))
		assert.Equal(t, LeaderboardUpdate{Type: "snapshot", Entries: entries}, got)
	}
}

func TestHub_ClosedClientIsUnregistered(t *testing.T) {
	log, _ := test.NewNullLogger()
	hub := NewHub(log)
	url := serveHub(t, hub)

	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return clientCount(hub) == 1 }, 5*time.Second, 10*time.Millisecond)

	c.Close()
	require.Eventually(t, func() bool { return clientCount(hub) == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestHub_RunClosesClientsOnShutdown(t *testing.T) {
	log, _ := test.NewNullLogger()
	hub := NewHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	c, _, err := websocket.DefaultDialer.Dial(serveHub(t, hub), nil)
	require.NoError(t, err)
	defer c.Close()
	require.Eventually(t, func() bool { return clientCount(hub) == 1 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	<-done

	c.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = c.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestHub_StuckClientDoesNotStallOthers(t *testing.T) {
	log, _ := test.NewNullLogger()
	hub := NewHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	c, _, err := websocket.DefaultDialer.Dial(serveHub(t, hub), nil)
	require.NoError(t, err)
	defer c.Close()
	require.Eventually(t, func() bool { return clientCount(hub) == 1 }, 5*time.Second, 10*time.Millisecond)

	// a watcher whose writer never drains its queue
	stuck := &Client{send: make(chan LeaderboardUpdate, 1)}
	hub.mutex.Lock()
	hub.clients[stuck] = true
	hub.mutex.Unlock()

	snapshot := LeaderboardUpdate{Type: "snapshot"}
	assert.True(t, hub.Send(stuck, snapshot))
	assert.False(t, hub.Send(stuck, snapshot), "a full queue must not block the sender")

	entries := []services.LeaderboardEntry{{PlayerName: "A", FinalTime: 42, SessionID: "game_1_a"}}
	hub.Broadcast(entries)

	c.SetReadDeadline(time.Now().Add(5 * time.Second))
	var got LeaderboardUpdate
	require.NoError(t, c.ReadJSON(&got))
	assert.Equal(t, entries, got.Entries)

	require.Eventually(t, func() bool { return clientCount(hub) == 1 }, 5*time.Second, 10*time.Millisecond)
	hub.mutex.Lock()
	assert.False(t, hub.clients[stuck])
	hub.mutex.Unlock()
	assert.False(t, hub.Send(stuck, snapshot))
}
