package connection

import (
	"github.com/coder/quartz"
	"github.com/lox/pokerclient/internal/transport"
)

// State is the mutable record of the current connection. It has no locking
// of its own; the owning Manager serializes access.
type State struct {
	socket            transport.Socket
	intentionalClose  bool
	reconnectAttempts int
	reconnectTimer    *quartz.Timer
	reconnectGen      uint64
}

func (s *State) Socket() transport.Socket { return s.socket }

func (s *State) SetSocket(sock transport.Socket) { s.socket = sock }

func (s *State) IsIntentionalClose() bool { return s.intentionalClose }

func (s *State) SetIntentionalClose(v bool) { s.intentionalClose = v }

func (s *State) ReconnectAttempts() int { return s.reconnectAttempts }

// IncrementReconnectAttempts bumps the counter and returns the new value.
func (s *State) IncrementReconnectAttempts() int {
	s.reconnectAttempts++
	return s.reconnectAttempts
}

func (s *State) ResetReconnectAttempts() { s.reconnectAttempts = 0 }

func (s *State) ReconnectTimer() *quartz.Timer { return s.reconnectTimer }

// SetReconnectTimer arms the single timer slot. Callers clear any previous
// timer first.
func (s *State) SetReconnectTimer(t *quartz.Timer) { s.reconnectTimer = t }

// NextReconnectGen starts a new timer generation. A timer callback holds
// the generation it was armed with and only acts while it is current.
func (s *State) NextReconnectGen() uint64 {
	s.reconnectGen++
	return s.reconnectGen
}

// ReconnectArmed reports whether gen is the generation of the armed timer.
func (s *State) ReconnectArmed(gen uint64) bool {
	return s.reconnectTimer != nil && s.reconnectGen == gen
}

// ClearReconnectTimer stops and forgets the pending timer. Clearing an
// empty slot is a no-op.
func (s *State) ClearReconnectTimer() {
	if s.reconnectTimer == nil {
		return
	}
	s.reconnectTimer.Stop()
	s.reconnectTimer = nil
	s.reconnectGen++
}
