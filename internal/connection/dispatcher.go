package connection

import (
	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/pokerclient/internal/protocol"
	"github.com/lox/pokerclient/internal/session"
	"github.com/lox/pokerclient/internal/transport"
)

// binding ties one socket's callbacks to the Manager. Every callback first
// checks that its socket is still the Manager's current socket.
type binding struct {
	m       *Manager
	roomID  string
	session session.Session
	sock    transport.Socket // set under m.mu before any callback can run
	logger  *log.Logger
}

func newBinding(m *Manager, roomID string, sess session.Session) *binding {
	return &binding{
		m:       m,
		roomID:  roomID,
		session: sess,
		logger:  m.logger.With("room", roomID),
	}
}

func (b *binding) handlers() transport.Handlers {
	return transport.Handlers{
		OnOpen:    b.opened,
		OnMessage: b.received,
		OnClose:   b.closed,
		OnError:   b.failed,
	}
}

// current must be called with m.mu held.
func (b *binding) current() bool {
	sock := b.m.state.Socket()
	return sock != nil && sock == b.sock
}

// opened sends the join frame. Connected status waits for the server's
// acknowledgement, not the socket opening.
func (b *binding) opened() {
	var out outbox
	defer out.flush()

	b.m.mu.Lock()
	if !b.current() {
		b.m.mu.Unlock()
		b.logger.Debug("Ignoring open from superseded socket")
		return
	}
	sock := b.sock
	b.m.mu.Unlock()

	b.logger.Info("Socket open, joining room", "player", b.session.PlayerID)

	data, err := protocol.Encode(protocol.NewJoin(b.session.PlayerID, b.session.Username))
	if err == nil {
		err = sock.Send(data)
	}
	if err != nil {
		b.logger.Error("Failed to send join frame", "error", err)
		b.m.publishError(&out, "Connection Error", "Failed to join the game room")
	}
}

// received parses and routes one inbound frame. Malformed frames are
// logged and dropped.
func (b *binding) received(data []byte) {
	env, err := protocol.Decode(data)
	if err != nil {
		b.logger.Warn("Dropping malformed frame", "error", err, "size", len(data))
		return
	}

	var out outbox
	defer out.flush()

	b.m.mu.Lock()
	defer b.m.mu.Unlock()

	if !b.current() {
		b.logger.Debug("Ignoring frame from superseded socket", "type", env.Type)
		return
	}

	switch env.Type {
	case protocol.TypeGameState:
		if env.State == nil {
			b.logger.Warn("Dropping game_state frame without state")
			return
		}
		state := *env.State
		b.m.gameState = &state
		b.logger.Debug("Game state", "phase", state.Phase, "pot", state.Pot, "players", len(state.Players))
		out.add(func() { b.m.hub.GameState.Publish(state) })

	case protocol.TypeError:
		b.logger.Warn("Server error", "message", env.Message)
		b.m.publishError(&out, "Game Error", env.Message)

	case protocol.TypeJoinSuccess, protocol.TypeConnected:
		b.m.state.ResetReconnectAttempts()
		b.m.connected = true
		b.logger.Info("Joined room", "ack", env.Type)
		description := env.Message
		if description == "" {
			description = "Successfully joined the poker table."
		}
		out.add(func() { b.m.hub.Status.Publish(true) })
		b.m.publishNotice(&out, LevelSuccess, "Joined Game", description)

	default:
		b.logger.Debug("Ignoring unknown frame type", "type", env.Type)
	}
}

// closed publishes the disconnect and decides whether to retry. Only the
// current socket, closed without a local request, is retried; a close with
// no status code is retried only if the server still answers its health
// check.
func (b *binding) closed(code int, reason string) {
	m := b.m
	text := CloseReason(code, reason)

	m.mu.Lock()
	current := b.current()
	if !current && m.state.Socket() != nil {
		m.mu.Unlock()
		b.logger.Debug("Ignoring close from superseded socket", "code", code)
		return
	}
	intentional := !current || m.state.IsIntentionalClose() || m.closed
	m.connected = false
	m.mu.Unlock()

	if intentional {
		b.logger.Info("Socket closed", "code", code, "reason", text)
	} else {
		b.logger.Warn("Socket closed unexpectedly", "code", code, "reason", text)
	}
	m.hub.Status.Publish(false)

	if intentional {
		b.logger.Debug("Intentional close, not reconnecting")
		return
	}

	if code == websocket.CloseNoStatusReceived && m.health != nil {
		if !m.health.Check(m.ctx) {
			var out outbox
			m.mu.Lock()
			if b.current() && !m.state.IsIntentionalClose() && !m.closed {
				b.logger.Error("Server unavailable, not reconnecting")
				m.publishError(&out, "Server Unavailable", "The game server appears to be down. Please try again later.")
			}
			m.mu.Unlock()
			out.flush()
			return
		}
	}

	var out outbox
	m.mu.Lock()
	// A Connect or Disconnect may have run while the health check was in flight.
	if b.current() && !m.state.IsIntentionalClose() && !m.closed {
		m.scheduleReconnectLocked(b.roomID, &out)
	}
	m.mu.Unlock()
	out.flush()
}

// failed reports a transport error. The close that always follows owns the
// reconnect decision.
func (b *binding) failed(err error) {
	b.m.mu.Lock()
	current := b.current()
	b.m.mu.Unlock()

	if !current {
		b.logger.Debug("Ignoring error from superseded socket", "error", err)
		return
	}

	b.logger.Error("Socket error", "error", err)
	b.m.hub.Errors.Publish("Error connecting to the game server")
}
