package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	DefaultReconnectAttempts = 5
	DefaultReconnectDelay    = 2 * time.Second
)

// ErrGaveUp is returned by Run once every reconnection attempt has failed.
var ErrGaveUp = errors.New("realtime: reconnection attempts exhausted")

// Message is one decoded inbound event.
type Message struct {
	Event   string
	Payload interface{}
}

// Subscriber is the client end of the channel. It joins the user's room and
// reconnects a fixed number of times with a fixed delay.
type Subscriber struct {
	URL               string
	Token             string
	UserID            string
	ReconnectAttempts int
	ReconnectDelay    time.Duration
	Dialer            *websocket.Dialer
	Logger            *slog.Logger

	mu sync.Mutex
	ws *websocket.Conn
}

func (s *Subscriber) attempts() int {
	if s.ReconnectAttempts <= 0 {
		return DefaultReconnectAttempts
	}
	return s.ReconnectAttempts
}

func (s *Subscriber) delay() time.Duration {
	if s.ReconnectDelay <= 0 {
		return DefaultReconnectDelay
	}
	return s.ReconnectDelay
}

func (s *Subscriber) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *Subscriber) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := s.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	header := http.Header{}
	if s.Token != "" {
		header.Set("Authorization", "Bearer "+s.Token)
	}
	ws, resp, err := dialer.DialContext(ctx, s.URL, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	if err := ws.WriteJSON(mustEnvelope(EventJoinRoom, JoinRoom{UserID: s.UserID})); err != nil {
		ws.Close()
		return nil, fmt.Errorf("join room: %w", err)
	}
	return ws, nil
}

func mustEnvelope(event string, payload interface{}) Envelope {
	env, err := NewEnvelope(event, payload)
	if err != nil {
		return Envelope{Event: event}
	}
	return env
}

// Run connects and delivers decoded events to out until ctx is done or the
// reconnection budget is spent. Unknown events are logged and skipped.
func (s *Subscriber) Run(ctx context.Context, out chan<- Message) error {
	failures := 0
	for {
		ws, err := s.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failures++
			s.logger().Warn("Realtime connect failed", "attempt", failures, "error", err)
			if failures >= s.attempts() {
				return ErrGaveUp
			}
			if !sleep(ctx, s.delay()) {
				return ctx.Err()
			}
			continue
		}
		failures = 0
		s.setConn(ws)

		err = s.readLoop(ctx, ws, out)
		s.setConn(nil)
		ws.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger().Warn("Realtime connection lost", "error", err)
		if !sleep(ctx, s.delay()) {
			return ctx.Err()
		}
	}
}

func (s *Subscriber) readLoop(ctx context.Context, ws *websocket.Conn, out chan<- Message) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			ws.Close()
		case <-stop:
		}
	}()

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			return err
		}
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			s.logger().Warn("Realtime frame is not an envelope", "error", err)
			continue
		}
		payload, err := Decode(env)
		if err != nil {
			s.logger().Warn("Realtime event skipped", "event", env.Event, "error", err)
			continue
		}
		select {
		case out <- Message{Event: env.Event, Payload: payload}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Subscriber) setConn(ws *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ws = ws
}

// Emit sends a client event on the current connection.
func (s *Subscriber) Emit(event string, payload interface{}) error {
	env, err := NewEnvelope(event, payload)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ws == nil {
		return errors.New("realtime: not connected")
	}
	_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return s.ws.WriteJSON(env)
}

// Connected reports whether a connection is currently open.
func (s *Subscriber) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws != nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
