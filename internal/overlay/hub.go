// Package overlay pushes card effects to browser overlays over WebSocket. Each browser
// watches a set of game ids and receives the render, remove and marker frames for them.
package overlay

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/preston-bernstein/gamecast-service/internal/animation"
	"github.com/preston-bernstein/gamecast-service/internal/field"
	"github.com/preston-bernstein/gamecast-service/internal/logging"
)

// Options configures a Hub.
type Options struct {
	Logger *slog.Logger
	// CheckOrigin gates upgrades; nil allows every origin.
	CheckOrigin func(r *http.Request) bool
}

// Hub tracks connected overlays and the effects currently shown per game.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader
	now      func() time.Time
	ctx      context.Context
	cancel   context.CancelFunc

	mu               sync.RWMutex
	clients          map[*Client]struct{}
	active           map[string]map[string]animation.Effect
	closed           bool
	totalConnections int64
}

func NewHub(opts Options) *Hub {
	checkOrigin := opts.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		logger: opts.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
		clients: make(map[*Client]struct{}),
		active:  make(map[string]map[string]animation.Effect),
	}
}

// ServeHTTP upgrades the request and starts the client's pumps.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn(h.logger, "overlay upgrade failed", "err", err)
		return
	}

	c := newClient(uuid.NewString(), conn, h, h.logger)
	if !h.Register(c) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}
	h.sendTo(c, ServerMessage{
		Type:      MessageTypeWelcome,
		Payload:   map[string]string{"clientId": c.ID},
		Timestamp: h.now(),
	})

	go c.WritePump(h.ctx)
	go c.ReadPump(h.ctx)
}

// Register adds a client. It reports false once the hub is closed.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.totalConnections++
	logging.Info(h.logger, "overlay client connected", "client_id", c.ID, logging.FieldCount, len(h.clients))
	return true
}

// Unregister removes a client and closes its send queue.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	logging.Info(h.logger, "overlay client disconnected", "client_id", c.ID, logging.FieldCount, len(h.clients))
}

// ClientCount returns the number of connected overlays.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConnections returns the number of overlays ever registered.
func (h *Hub) TotalConnections() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalConnections
}

// Active returns the effects currently shown for a game ordered by task id.
func (h *Hub) Active(gameID string) []animation.Effect {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return sortedEffects(h.active[gameID])
}

// Close disconnects every overlay and refuses new ones.
func (h *Hub) Close() {
	h.cancel()
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// Card returns the render surface for a game. Frames go to every overlay watching it.
func (h *Hub) Card(gameID string) animation.Card {
	return &card{hub: h, gameID: gameID}
}

// Broadcast sends a message to every overlay watching the game. Overlays whose queue is full
// are disconnected.
func (h *Hub) Broadcast(gameID string, msg ServerMessage) int {
	msg.GameID = gameID
	if msg.Timestamp.IsZero() {
		msg.Timestamp = h.now()
	}

	h.mu.RLock()
	sent := 0
	var slow []*Client
	for c := range h.clients {
		if !c.Watching(gameID) {
			continue
		}
		if c.trySend(msg) {
			sent++
		} else {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		logging.Warn(h.logger, "overlay client too slow, disconnecting", "client_id", c.ID)
		h.Unregister(c)
	}
	return sent
}

func (h *Hub) sendTo(c *Client, msg ServerMessage) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	return c.trySend(msg)
}

// replay sends the effects already showing on newly watched games.
func (h *Hub) replay(c *Client, gameIDs []string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	for _, id := range gameIDs {
		for _, e := range sortedEffects(h.active[id]) {
			c.trySend(ServerMessage{Type: MessageTypeRender, GameID: id, Payload: e, Timestamp: h.now()})
		}
	}
}

func (h *Hub) setActive(gameID string, e animation.Effect) {
	h.mu.Lock()
	defer h.mu.Unlock()
	byTask, ok := h.active[gameID]
	if !ok {
		byTask = make(map[string]animation.Effect)
		h.active[gameID] = byTask
	}
	byTask[e.TaskID] = e
}

func (h *Hub) clearActive(gameID, taskID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.active[gameID], taskID)
	if len(h.active[gameID]) == 0 {
		delete(h.active, gameID)
	}
}

func sortedEffects(byTask map[string]animation.Effect) []animation.Effect {
	out := make([]animation.Effect, 0, len(byTask))
	for _, e := range byTask {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TaskID < out[j].TaskID })
	return out
}

// card forwards scheduler calls for one game to the hub.
type card struct {
	hub    *Hub
	gameID string
}

func (c *card) Render(e animation.Effect) {
	c.hub.setActive(c.gameID, e)
	c.hub.Broadcast(c.gameID, ServerMessage{Type: MessageTypeRender, Payload: e})
}

func (c *card) Remove(taskID string) {
	c.hub.clearActive(c.gameID, taskID)
	c.hub.Broadcast(c.gameID, ServerMessage{Type: MessageTypeRemove, Payload: RemovePayload{TaskID: taskID}})
}

func (c *card) Marker() field.Marker {
	return marker{hub: c.hub, gameID: c.gameID}
}

type marker struct {
	hub    *Hub
	gameID string
}

func (m marker) Move(f field.Frame) {
	m.hub.Broadcast(m.gameID, ServerMessage{Type: MessageTypeMarker, Payload: f})
}

func (m marker) Remove() {
	m.hub.Broadcast(m.gameID, ServerMessage{Type: MessageTypeMarkerRemove})
}
