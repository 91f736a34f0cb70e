package overlay

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/preston-bernstein/gamecast-service/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 256
)

// Client is one connected browser overlay.
type Client struct {
	ID     string
	conn   *websocket.Conn
	send   chan ServerMessage
	hub    *Hub
	logger *slog.Logger

	mu      sync.RWMutex
	watched map[string]struct{}
}

func newClient(id string, conn *websocket.Conn, hub *Hub, logger *slog.Logger) *Client {
	return &Client{
		ID:      id,
		conn:    conn,
		send:    make(chan ServerMessage, sendBufferSize),
		hub:     hub,
		logger:  logger,
		watched: make(map[string]struct{}),
	}
}

// Watching reports whether the client displays a game.
func (c *Client) Watching(gameID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.watched[gameID]
	return ok
}

// Games returns the watched game ids in sorted order.
func (c *Client) Games() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.watched))
	for id := range c.watched {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (c *Client) watch(ids []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var added []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := c.watched[id]; ok {
			continue
		}
		c.watched[id] = struct{}{}
		added = append(added, id)
	}
	return added
}

func (c *Client) unwatch(ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(ids) == 0 {
		c.watched = make(map[string]struct{})
		return
	}
	for _, id := range ids {
		delete(c.watched, strings.TrimSpace(id))
	}
}

// trySend queues a message without blocking and reports whether it fit. Callers hold the
// hub lock so the queue cannot be closed underneath them.
func (c *Client) trySend(msg ServerMessage) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// ReadPump reads watch requests until the connection fails or ctx ends.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if ctx.Err() != nil {
			return
		}
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Warn(c.logger, "overlay client closed unexpectedly", "client_id", c.ID, "err", err)
			}
			return
		}
		c.handle(msg)
	}
}

// WritePump drains the send queue and keeps the connection alive with pings.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				logging.Warn(c.logger, "overlay write failed", "client_id", c.ID, "err", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handle(msg ClientMessage) {
	switch msg.Type {
	case MessageTypeWatch:
		added := c.watch(msg.Games)
		c.hub.replay(c, added)
		logging.Info(c.logger, "overlay client watching", "client_id", c.ID, logging.FieldCount, len(c.Games()))
	case MessageTypeUnwatch:
		c.unwatch(msg.Games)
	default:
		c.hub.sendTo(c, ServerMessage{
			Type:      MessageTypeError,
			Payload:   ErrorPayload{Code: "unknown_message_type", Message: fmt.Sprintf("unknown message type: %s", msg.Type)},
			Timestamp: c.hub.now(),
		})
	}
}
