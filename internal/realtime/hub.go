package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBuffer     = 32
)

// Authenticator resolves the user behind an upgrade request.
type Authenticator func(r *http.Request) (userID string, err error)

// Dispatcher handles inbound client events other than joinRoom.
type Dispatcher interface {
	Dispatch(ctx context.Context, userID string, env Envelope) error
}

// Hub keeps one room per user id and fans events out to its connections.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*conn]struct{}

	auth       Authenticator
	dispatcher Dispatcher
	logger     *slog.Logger
	upgrader   websocket.Upgrader
}

type HubOptions struct {
	Authenticator  Authenticator
	Dispatcher     Dispatcher
	Logger         *slog.Logger
	AllowedOrigins []string
}

func NewHub(opts HubOptions) *Hub {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	h := &Hub{
		rooms:      make(map[string]map[*conn]struct{}),
		auth:       opts.Authenticator,
		dispatcher: opts.Dispatcher,
		logger:     opts.Logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(opts.AllowedOrigins),
	}
	return h
}

// SetDispatcher wires inbound handling after construction.
func (h *Hub) SetDispatcher(d Dispatcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dispatcher = d
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// native mobile clients send no origin
		return origin == "" || set["*"] || set[origin]
	}
}

// ServeHTTP authenticates, upgrades and joins the connection to the caller's room.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		http.Error(w, "realtime authentication is not configured", http.StatusServiceUnavailable)
		return
	}
	userID, err := h.auth(r)
	if err != nil || userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	c := &conn{hub: h, ws: ws, userID: userID, send: make(chan []byte, sendBuffer)}
	h.join(userID, c)
	h.logger.Info("Realtime client connected", "user_id", userID)

	go c.writePump()
	go c.readPump()
}

func (h *Hub) join(room string, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*conn]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
}

func (h *Hub) leave(room string, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	if _, ok := members[c]; ok {
		delete(members, c)
		close(c.send)
	}
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Connections is the number of open connections in a room.
func (h *Hub) Connections(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// EmitToUser sends event to every connection in the user's room. Slow
// connections whose buffer is full are dropped.
func (h *Hub) EmitToUser(userID string, event string, payload interface{}) error {
	env, err := NewEnvelope(event, payload)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(env)
	if err != nil {
		return err
	}

	var slow []*conn
	h.mu.RLock()
	for c := range h.rooms[userID] {
		select {
		case c.send <- frame:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("Dropping slow realtime client", "user_id", userID)
		h.leave(userID, c)
	}
	return nil
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, members := range h.rooms {
		for c := range members {
			close(c.send)
		}
		delete(h.rooms, room)
	}
}

func (h *Hub) dispatch(userID string, env Envelope) error {
	h.mu.RLock()
	d := h.dispatcher
	h.mu.RUnlock()
	if d == nil {
		return errors.New("event not supported")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return d.Dispatch(ctx, userID, env)
}

type conn struct {
	hub    *Hub
	ws     *websocket.Conn
	userID string
	send   chan []byte
}

func (c *conn) reply(event string, payload interface{}) {
	env, err := NewEnvelope(event, payload)
	if err != nil {
		return
	}
	frame, err := json.Marshal(env)
	if err != nil {
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.rooms[c.userID][c]; !ok {
		return
	}
	select {
	case c.send <- frame:
	default:
	}
}

func (c *conn) readPump() {
	defer func() {
		c.hub.leave(c.userID, c)
		_ = c.ws.Close()
		c.hub.logger.Info("Realtime client disconnected", "user_id", c.userID)
	}()
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env Envelope
		if err := c.ws.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("Realtime read failed", "user_id", c.userID, "error", err)
			}
			return
		}

		switch env.Event {
		case EventJoinRoom:
			// The room is fixed by the authenticated identity; a join for another
			// user is refused.
			var join JoinRoom
			_ = json.Unmarshal(env.Data, &join)
			if join.UserID != "" && join.UserID != c.userID {
				c.reply(EventError, ErrorPayload{Event: env.Event, Message: "cannot join another user's room"})
			}
		default:
			if err := c.hub.dispatch(c.userID, env); err != nil {
				c.reply(EventError, ErrorPayload{Event: env.Event, Message: err.Error()})
			}
		}
	}
}

func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case frame, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
