// Package transport resolves table endpoints and opens bidirectional sockets
// that report their lifecycle through callbacks.
package transport

import "errors"

// ErrNotOpen is returned when sending on a socket that is not open.
var ErrNotOpen = errors.New("transport: socket is not open")

// ReadyState mirrors the lifecycle of a socket.
type ReadyState int32

const (
	Connecting ReadyState = iota
	Open
	Closing
	Closed
)

func (s ReadyState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Live reports whether the socket is open or still connecting.
func (s ReadyState) Live() bool {
	return s == Connecting || s == Open
}

// Handlers receives socket lifecycle events. For a given socket the
// callbacks are invoked sequentially from a single goroutine: OnOpen at most
// once, OnMessage for each inbound frame, OnError at most once, and OnClose
// exactly once as the final event.
type Handlers struct {
	OnOpen    func()
	OnMessage func(data []byte)
	OnClose   func(code int, reason string)
	OnError   func(err error)
}

// Socket is a handle to a single connection attempt.
type Socket interface {
	// ID identifies the socket in logs.
	ID() string
	ReadyState() ReadyState
	// Send writes one text frame. It fails with ErrNotOpen unless the
	// socket is open and never buffers.
	Send(data []byte) error
	// Close starts a normal closure. Closing a connecting socket aborts the
	// attempt. Closing a closed socket is a no-op.
	Close() error
}

// Dialer creates sockets. Open returns immediately with a socket in the
// Connecting state; an error means the socket could not be constructed at
// all and no callbacks will fire.
type Dialer interface {
	Open(url string, h Handlers) (Socket, error)
}
