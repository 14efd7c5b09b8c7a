package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"survivalboard/metrics"
	"survivalboard/services"
)

const (
	writeWait    = 5 * time.Second
	clientBuffer = 8
)

// LeaderboardUpdate is pushed to every watcher when the leaderboard changes
type LeaderboardUpdate struct {
	Type    string                      `json:"type"` // "snapshot"
	Entries []services.LeaderboardEntry `json:"entries"`
}

// Client is one websocket watcher. Its writer goroutine owns the connection;
// the hub only ever queues onto send.
type Client struct {
	conn      *websocket.Conn
	send      chan LeaderboardUpdate
	closeCode int
}

// Hub fans leaderboard updates out to connected websocket clients. The mutex
// guards the client set and is never held across a network write.
type Hub struct {
	clients   map[*Client]bool
	broadcast chan LeaderboardUpdate
	mutex     sync.Mutex
	log       logrus.FieldLogger
}

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		clients:   make(map[*Client]bool),
		broadcast: make(chan LeaderboardUpdate, 16),
		log:       log,
	}
}

// Register adds a client and starts its writer
func (h *Hub) Register(conn *websocket.Conn) *Client {
	c := &Client{
		conn:      conn,
		send:      make(chan LeaderboardUpdate, clientBuffer),
		closeCode: websocket.CloseNormalClosure,
	}
	h.mutex.Lock()
	h.clients[c] = true
	metrics.WebsocketClients.Set(float64(len(h.clients)))
	h.mutex.Unlock()

	go h.writePump(c)
	return c
}

// Unregister removes a client; its writer closes the connection
func (h *Hub) Unregister(c *Client) {
	h.mutex.Lock()
	h.drop(c, websocket.CloseNormalClosure)
	metrics.WebsocketClients.Set(float64(len(h.clients)))
	h.mutex.Unlock()
}

// Send queues one update for a single client, used for the initial snapshot.
// It reports false when the client is gone or its queue is full.
func (h *Hub) Send(c *Client, update LeaderboardUpdate) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if !h.clients[c] {
		return false
	}
	select {
	case c.send <- update:
		return true
	default:
		return false
	}
}

// Broadcast queues an update for every client. It drops the update if the
// queue is full; the next snapshot supersedes it.
func (h *Hub) Broadcast(entries []services.LeaderboardEntry) {
	select {
	case h.broadcast <- LeaderboardUpdate{Type: "snapshot", Entries: entries}:
	default:
		h.log.Warn("leaderboard broadcast queue full, update dropped")
	}
}

// Run delivers queued updates until ctx is done, then closes every client
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case update := <-h.broadcast:
			h.deliver(update)
		}
	}
}

// deliver never blocks: a client that has fallen a full queue behind is dropped
func (h *Hub) deliver(update LeaderboardUpdate) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for c := range h.clients {
		select {
		case c.send <- update:
		default:
			h.log.Debug("websocket client too slow, dropping it")
			h.drop(c, websocket.CloseTryAgainLater)
		}
	}
	metrics.WebsocketClients.Set(float64(len(h.clients)))
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for c := range h.clients {
		h.drop(c, websocket.CloseGoingAway)
	}
	metrics.WebsocketClients.Set(0)
}

// drop must be called with the mutex held
func (h *Hub) drop(c *Client, code int) {
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	c.closeCode = code
	close(c.send)
}

func (h *Hub) writePump(c *Client) {
	defer c.conn.Close()
	for update := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(update); err != nil {
			h.log.WithError(err).Debug("websocket write failed, dropping client")
			h.Unregister(c)
			return
		}
	}
	// closeCode is written before send is closed
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(c.closeCode, closeText(c.closeCode)),
		time.Now().Add(writeWait))
}

func closeText(code int) string {
	switch code {
	case websocket.CloseGoingAway:
		return "server shutting down"
	case websocket.CloseTryAgainLater:
		return "client too slow"
	}
	return ""
}
