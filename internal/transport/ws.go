package transport

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	defaultWriteTimeout = 10 * time.Second
	defaultPingInterval = 30 * time.Second
	defaultPongTimeout  = 60 * time.Second
	defaultCloseTimeout = 5 * time.Second
)

// WSDialer opens gorilla/websocket connections.
type WSDialer struct {
	dialer *websocket.Dialer
	clock  quartz.Clock
	logger *log.Logger

	WriteTimeout time.Duration
	PingInterval time.Duration
	PongTimeout  time.Duration
	// CloseTimeout bounds how long a normal closure waits for the server
	// to answer the close frame before the connection is dropped.
	CloseTimeout time.Duration
}

// NewWSDialer creates a dialer with the given handshake timeout.
func NewWSDialer(handshakeTimeout time.Duration, clock quartz.Clock, logger *log.Logger) *WSDialer {
	return &WSDialer{
		dialer: &websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: handshakeTimeout,
		},
		clock:        clock,
		logger:       logger.WithPrefix("transport"),
		WriteTimeout: defaultWriteTimeout,
		PingInterval: defaultPingInterval,
		PongTimeout:  defaultPongTimeout,
		CloseTimeout: defaultCloseTimeout,
	}
}

// Open implements Dialer.
func (d *WSDialer) Open(rawURL string, h Handlers) (Socket, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid socket URL: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("invalid socket URL %q: scheme must be ws or wss", rawURL)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &wsSocket{
		id:       uuid.NewString(),
		url:      u.String(),
		dialer:   d,
		handlers: h,
		cancel:   cancel,
	}
	s.logger = d.logger.With("socket", s.id)
	s.state.Store(int32(Connecting))

	s.logger.Info("Connecting", "url", s.url)
	go s.run(ctx)

	return s, nil
}

type wsSocket struct {
	id       string
	url      string
	dialer   *WSDialer
	handlers Handlers
	logger   *log.Logger
	cancel   context.CancelFunc

	state atomic.Int32

	mu             sync.Mutex
	conn           *websocket.Conn
	closeRequested bool
	closeTimer     *quartz.Timer

	writeMu sync.Mutex
}

func (s *wsSocket) ID() string { return s.id }

func (s *wsSocket) ReadyState() ReadyState {
	return ReadyState(s.state.Load())
}

func (s *wsSocket) setState(state ReadyState) {
	s.state.Store(int32(state))
}

func (s *wsSocket) Send(data []byte) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if s.ReadyState() != Open || conn == nil {
		return ErrNotOpen
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_ = conn.SetWriteDeadline(s.dialer.clock.Now().Add(s.dialer.WriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func (s *wsSocket) Close() error {
	s.mu.Lock()
	switch s.ReadyState() {
	case Connecting:
		s.closeRequested = true
		s.mu.Unlock()
		s.logger.Debug("Aborting connection attempt")
		s.cancel()
		return nil
	case Open:
		s.setState(Closing)
		conn := s.conn
		s.closeTimer = s.dialer.clock.AfterFunc(s.dialer.CloseTimeout, func() {
			s.logger.Warn("Close handshake timed out, dropping connection")
			_ = conn.Close()
		})
		s.mu.Unlock()

		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		deadline := s.dialer.clock.Now().Add(s.dialer.WriteTimeout)
		if err := conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
			_ = conn.Close() // read loop reports the closure
			return fmt.Errorf("write close frame: %w", err)
		}
		return nil
	default:
		s.mu.Unlock()
		return nil
	}
}

// run owns the connection: it dials, reads until the connection ends and
// emits every callback for this socket.
func (s *wsSocket) run(ctx context.Context) {
	defer s.cancel()

	conn, resp, err := s.dialer.dialer.DialContext(ctx, s.url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		s.setState(Closed)
		if ctx.Err() == nil {
			if resp != nil {
				err = fmt.Errorf("dial failed (HTTP %d): %w", resp.StatusCode, err)
			}
			s.logger.Warn("Dial failed", "error", err)
			s.emitError(err)
		}
		s.emitClose(websocket.CloseAbnormalClosure, "")
		return
	}

	s.mu.Lock()
	if s.closeRequested {
		s.mu.Unlock()
		_ = conn.Close()
		s.setState(Closed)
		s.emitClose(websocket.CloseAbnormalClosure, "")
		return
	}
	s.conn = conn
	s.setState(Open)
	s.mu.Unlock()

	s.logger.Info("Connected")
	s.emitOpen()

	pingCtx, stopPing := context.WithCancel(ctx)
	pinger := s.dialer.clock.TickerFunc(pingCtx, s.dialer.PingInterval, func() error {
		return s.ping(conn)
	}, "ping")

	code, reason, readErr := s.readLoop(conn)

	stopPing()
	_ = pinger.Wait()
	_ = conn.Close()

	s.mu.Lock()
	if s.closeTimer != nil {
		s.closeTimer.Stop()
	}
	closing := s.ReadyState() == Closing
	s.mu.Unlock()

	s.setState(Closed)
	if code == websocket.CloseAbnormalClosure && !closing && readErr != nil {
		s.emitError(readErr)
	}
	s.logger.Info("Closed", "code", code, "reason", reason)
	s.emitClose(code, reason)
}

func (s *wsSocket) readLoop(conn *websocket.Conn) (int, string, error) {
	pongTimeout := s.dialer.PongTimeout
	_ = conn.SetReadDeadline(s.dialer.clock.Now().Add(pongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(s.dialer.clock.Now().Add(pongTimeout))
	})

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return closeErr.Code, closeErr.Text, nil
			}
			return websocket.CloseAbnormalClosure, "", err
		}
		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}
		s.emitMessage(data)
	}
}

func (s *wsSocket) ping(conn *websocket.Conn) error {
	if s.ReadyState() != Open {
		return nil
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	deadline := s.dialer.clock.Now().Add(s.dialer.WriteTimeout)
	if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
		s.logger.Debug("Ping failed", "error", err)
		return err
	}
	return nil
}

func (s *wsSocket) emitOpen() {
	if s.handlers.OnOpen != nil {
		s.handlers.OnOpen()
	}
}

func (s *wsSocket) emitMessage(data []byte) {
	if s.handlers.OnMessage != nil {
		s.handlers.OnMessage(data)
	}
}

func (s *wsSocket) emitError(err error) {
	if s.handlers.OnError != nil {
		s.handlers.OnError(err)
	}
}

func (s *wsSocket) emitClose(code int, reason string) {
	if s.handlers.OnClose != nil {
		s.handlers.OnClose(code, reason)
	}
}
