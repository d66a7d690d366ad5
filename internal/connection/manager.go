package connection

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/pokerclient/internal/protocol"
	"github.com/lox/pokerclient/internal/session"
	"github.com/lox/pokerclient/internal/transport"
)

// RoomResolver builds the socket URL for a room.
type RoomResolver interface {
	RoomURL(roomID string) string
}

// Config wires a Manager to its collaborators. Health may be nil, in which
// case closes without a status code are always retried.
type Config struct {
	Endpoint RoomResolver
	Dialer   transport.Dialer
	Sessions session.Provider
	Health   HealthChecker
	Policy   Policy
	Clock    quartz.Clock
	Logger   *log.Logger
}

// Manager owns one table connection at a time. Its lifecycle is
// NewManager, any number of Connect/Disconnect calls, then Close.
type Manager struct {
	endpoint RoomResolver
	dialer   transport.Dialer
	sessions session.Provider
	health   HealthChecker
	policy   Policy
	clock    quartz.Clock
	logger   *log.Logger
	hub      *Hub

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	state     State
	roomID    string
	connected bool
	gameState *protocol.GameState
	closed    bool
}

// NewManager creates a manager. Nothing is dialed until Connect.
func NewManager(cfg Config) *Manager {
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if cfg.Policy.MaxAttempts == 0 {
		cfg.Policy = DefaultPolicy()
	}

	ctx, cancel := context.WithCancel(context.Background())
	logger := cfg.Logger.WithPrefix("connection")

	return &Manager{
		endpoint: cfg.Endpoint,
		dialer:   cfg.Dialer,
		sessions: cfg.Sessions,
		health:   cfg.Health,
		policy:   cfg.Policy,
		clock:    cfg.Clock,
		logger:   logger,
		hub:      NewHub(cfg.Logger),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Hub returns the notification channels.
func (m *Manager) Hub() *Hub {
	return m.hub
}

// Connected reports whether the server has acknowledged the current join.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// RoomID returns the room of the most recent Connect.
func (m *Manager) RoomID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roomID
}

// GameState returns the most recent snapshot received from the server.
func (m *Manager) GameState() (protocol.GameState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gameState == nil {
		return protocol.GameState{}, false
	}
	return *m.gameState, true
}

// ReconnectAttempts returns the number of retries scheduled since the last
// successful join.
func (m *Manager) ReconnectAttempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.ReconnectAttempts()
}

// ReconnectPending reports whether a retry timer is armed.
func (m *Manager) ReconnectPending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.ReconnectTimer() != nil
}

// Connect opens a socket to roomID, first tearing down any live socket so
// that at most one is ever open or connecting. Failures are published to
// the hub rather than returned.
func (m *Manager) Connect(roomID string) {
	var out outbox
	m.mu.Lock()
	m.connectLocked(roomID, &out)
	m.mu.Unlock()
	out.flush()
}

func (m *Manager) connectLocked(roomID string, out *outbox) {
	if m.closed {
		m.logger.Warn("Connect called on closed manager", "room", roomID)
		return
	}

	sess, ok := m.sessions.Current()
	if !ok {
		m.logger.Warn("Refusing to connect without a session", "room", roomID)
		m.publishError(out, "Authentication Error", "You must be logged in to join a room.")
		return
	}

	m.state.ClearReconnectTimer()

	if old := m.state.Socket(); old != nil {
		m.logger.Debug("Existing socket", "socket", old.ID(), "state", old.ReadyState())
		if old.ReadyState().Live() {
			m.state.SetIntentionalClose(true)
			if err := old.Close(); err != nil {
				m.logger.Warn("Failed to close previous socket", "socket", old.ID(), "error", err)
			}
			m.logger.Info("Closed previous socket", "socket", old.ID())
		}
	}

	m.state.SetIntentionalClose(false)
	m.roomID = roomID
	m.connected = false

	url := m.endpoint.RoomURL(roomID)
	m.logger.Info("Connecting to room", "room", roomID, "url", url, "attempt", m.state.ReconnectAttempts())

	b := newBinding(m, roomID, sess)
	sock, err := m.dialer.Open(url, b.handlers())
	if err != nil {
		m.logger.Error("Failed to create socket", "room", roomID, "error", err)
		m.state.SetSocket(nil)
		m.publishError(out, "Connection Error", "Failed to create WebSocket connection. Please check if the server is running.")
		return
	}

	b.sock = sock
	b.logger = b.logger.With("socket", sock.ID())
	m.state.SetSocket(sock)
}

// Disconnect leaves the room. Any pending retry is cancelled and the
// attempt counter reset; the close that follows never schedules a retry.
// It is safe to call with no socket.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.disconnectLocked()
	m.mu.Unlock()
}

func (m *Manager) disconnectLocked() {
	m.state.ClearReconnectTimer()
	m.state.ResetReconnectAttempts()

	sock := m.state.Socket()
	if sock == nil {
		m.logger.Debug("No active socket to disconnect")
		return
	}

	m.logger.Debug("Disconnecting", "socket", sock.ID(), "state", sock.ReadyState())
	m.state.SetIntentionalClose(true)

	switch sock.ReadyState() {
	case transport.Open:
		m.sendLeave(sock)
		if err := sock.Close(); err != nil {
			m.logger.Warn("Failed to close socket", "socket", sock.ID(), "error", err)
		}
		m.logger.Info("Socket closed intentionally", "socket", sock.ID())
	case transport.Connecting:
		if err := sock.Close(); err != nil {
			m.logger.Warn("Failed to abort connecting socket", "socket", sock.ID(), "error", err)
		}
		m.logger.Info("Aborted connecting socket", "socket", sock.ID())
	}

	m.state.SetSocket(nil)
	m.connected = false
}

// sendLeave is best effort: failures are logged and the close proceeds.
func (m *Manager) sendLeave(sock transport.Socket) {
	sess, ok := m.sessions.Current()
	if !ok {
		m.logger.Warn("No session, skipping leave frame")
		return
	}
	data, err := protocol.Encode(protocol.NewLeave(sess.PlayerID))
	if err == nil {
		err = sock.Send(data)
	}
	if err != nil {
		m.logger.Warn("Failed to send leave frame", "error", err)
	}
}

// Close disconnects and makes every later call a no-op.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.disconnectLocked()
	m.closed = true
	m.cancel()
	m.logger.Debug("Manager closed")
}

// ActionOption customises an action frame.
type ActionOption func(*protocol.Action)

// WithAmount attaches a chip amount to bet-like actions.
func WithAmount(amount int) ActionOption {
	return func(a *protocol.Action) {
		a.Amount = &amount
	}
}

// SendPlayerAction sends a player decision such as "fold" or, with
// WithAmount, "bet". Nothing is queued: if the socket is not open the
// action is dropped and an error published.
func (m *Manager) SendPlayerAction(action string, opts ...ActionOption) {
	sess, ok := m.sessions.Current()
	if !ok {
		var out outbox
		m.publishError(&out, "Authentication Error", "You must be logged in to play.")
		out.flush()
		return
	}

	frame := protocol.NewAction(action, sess.PlayerID, nil)
	for _, opt := range opts {
		opt(&frame)
	}
	m.send(frame)
}

// send is the only path for outbound game frames.
func (m *Manager) send(frame any) {
	var out outbox
	defer out.flush()

	m.mu.Lock()
	sock := m.state.Socket()
	m.mu.Unlock()

	if sock == nil || sock.ReadyState() != transport.Open {
		m.logger.Warn("Dropping frame, not connected", "frame", fmt.Sprintf("%+v", frame))
		m.publishError(&out, "Connection Error", "Not connected to the game server.")
		return
	}

	data, err := protocol.Encode(frame)
	if err == nil {
		err = sock.Send(data)
	}
	if err != nil {
		m.logger.Error("Failed to send frame", "socket", sock.ID(), "error", err)
		m.publishError(&out, "Message Error", "Failed to send your message to the server.")
	}
}

func (m *Manager) publishError(out *outbox, title, description string) {
	out.add(func() {
		m.hub.Errors.Publish(description)
		m.hub.Notices.Publish(Notice{Level: LevelError, Title: title, Description: description})
	})
}

func (m *Manager) publishNotice(out *outbox, level Level, title, description string) {
	out.add(func() {
		m.hub.Notices.Publish(Notice{Level: level, Title: title, Description: description})
	})
}

// scheduleReconnectLocked arms the retry timer, or gives up once the
// policy's attempts are exhausted.
func (m *Manager) scheduleReconnectLocked(roomID string, out *outbox) {
	m.state.ClearReconnectTimer()

	if m.state.ReconnectAttempts() >= m.policy.MaxAttempts {
		m.logger.Error("Giving up reconnecting", "room", roomID, "attempts", m.state.ReconnectAttempts())
		m.publishError(out, "Connection Failed", "Maximum reconnection attempts reached. Please try again later.")
		return
	}

	attempt := m.state.IncrementReconnectAttempts()
	delay := m.policy.Delay(attempt)

	gen := m.state.NextReconnectGen()
	m.state.SetReconnectTimer(m.clock.AfterFunc(delay, func() {
		m.retry(roomID, gen)
	}, "reconnect"))

	m.logger.Info("Reconnect scheduled", "room", roomID, "attempt", attempt, "max", m.policy.MaxAttempts, "delay", delay)
	m.publishNotice(out, LevelWarning, "Connection Lost",
		fmt.Sprintf("Attempting to reconnect (%d/%d)...", attempt, m.policy.MaxAttempts))
}

// retry runs when a reconnect timer fires. A timer that was cleared or
// replaced after firing but before acquiring the mutex is ignored.
func (m *Manager) retry(roomID string, gen uint64) {
	var out outbox
	m.mu.Lock()
	defer func() {
		m.mu.Unlock()
		out.flush()
	}()

	if m.closed || !m.state.ReconnectArmed(gen) {
		m.logger.Debug("Ignoring stale reconnect timer", "room", roomID)
		return
	}
	m.state.SetReconnectTimer(nil)

	if sock := m.state.Socket(); sock != nil && sock.ReadyState().Live() {
		m.logger.Info("Socket is live, not reconnecting", "socket", sock.ID(), "state", sock.ReadyState())
		return
	}

	m.logger.Info("Reconnecting", "room", roomID, "attempt", m.state.ReconnectAttempts(), "max", m.policy.MaxAttempts)
	m.connectLocked(roomID, &out)
}
