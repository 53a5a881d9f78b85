package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"HostPulse/internal/service/ratelimit"
	applogger "HostPulse/pkg/logger"

	"github.com/gorilla/websocket"
)

// TransportOptions tune the websocket pumps.
type TransportOptions struct {
	SendBuffer       int
	WriteWait        time.Duration
	PongWait         time.Duration
	MaxMessageSize   int64
	MessageRateLimit float64 // inbound messages per second per connection
}

// Transport owns the websocket side of the realtime layer: it admits
// upgraded connections into the registry and runs their read/write pumps.
type Transport struct {
	registry *Registry
	limiter  *ratelimit.Limiter
	logger   *applogger.Logger
	opts     TransportOptions
	nextID   atomic.Uint64
}

func NewTransport(registry *Registry, logger *applogger.Logger, opts TransportOptions) *Transport {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 256
	}
	if opts.WriteWait <= 0 {
		opts.WriteWait = 2 * time.Second
	}
	if opts.PongWait <= 0 {
		opts.PongWait = 60 * time.Second
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = 64 * 1024
	}
	if opts.MessageRateLimit <= 0 {
		opts.MessageRateLimit = 10
	}
	return &Transport{
		registry: registry,
		limiter:  ratelimit.New(),
		logger:   logger,
		opts:     opts,
	}
}

// Handle admits an upgraded websocket and blocks until it disconnects.
func (t *Transport) Handle(ctx context.Context, ws *websocket.Conn) {
	s := &session{
		ws:   ws,
		send: make(chan ServerMessage, t.opts.SendBuffer),
		done: make(chan struct{}),
	}
	conn := t.registry.Admit(s)
	key := fmt.Sprintf("conn:%d", t.nextID.Add(1))

	go t.writePump(s)
	t.readPump(ctx, s, conn, key)
}

func (t *Transport) readPump(ctx context.Context, s *session, conn *Conn, key string) {
	defer func() {
		t.registry.Remove(conn)
		t.limiter.Forget(key)
	}()

	s.ws.SetReadLimit(t.opts.MaxMessageSize)
	_ = s.ws.SetReadDeadline(time.Now().Add(t.opts.PongWait))
	s.ws.SetPongHandler(func(string) error {
		return s.ws.SetReadDeadline(time.Now().Add(t.opts.PongWait))
	})

	for {
		_, raw, err := s.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && t.logger != nil {
				t.logger.Warn("websocket read error", applogger.Error(err))
			}
			return
		}

		if !t.limiter.Allow(key, t.opts.MessageRateLimit, t.opts.MessageRateLimit) {
			_ = s.Send(ErrorMessage("message rate limit exceeded"))
			continue
		}

		msg, err := DecodeClientMessage(raw)
		if err != nil {
			_ = s.Send(ErrorMessage(err.Error()))
			continue
		}

		switch msg.Type {
		case KindAuthenticate:
			t.registry.Authenticate(ctx, conn, msg.Token)
		case KindSubscribe:
			t.registry.Subscribe(conn, msg.Topics)
		case KindUnsubscribe:
			t.registry.Unsubscribe(conn, msg.Topics)
		}
	}
}

func (t *Transport) writePump(s *session) {
	ping := time.NewTicker(t.opts.PongWait * 9 / 10)
	defer func() {
		ping.Stop()
		_ = s.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			_ = s.ws.SetWriteDeadline(time.Now().Add(t.opts.WriteWait))
			if !ok {
				_ = s.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.ws.WriteJSON(msg); err != nil {
				return
			}
		case <-ping.C:
			_ = s.ws.SetWriteDeadline(time.Now().Add(t.opts.WriteWait))
			if err := s.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

// session adapts one websocket to the registry's Sender.
type session struct {
	ws        *websocket.Conn
	send      chan ServerMessage
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.Mutex
	closed    bool
}

var errSlowClient = errors.New("send buffer full")

// Send enqueues an envelope without blocking. A full buffer means the
// client cannot keep up; the error makes the registry drop it.
func (s *session) Send(msg ServerMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("connection closed")
	}
	select {
	case s.send <- msg:
		return nil
	default:
		return errSlowClient
	}
}

func (s *session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.done)
		_ = s.ws.Close()
	})
}
