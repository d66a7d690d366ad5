package connection

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lox/pokerclient/internal/protocol"
)

// Level classifies a user-facing notice.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Notice is a short user-facing notification, shown by the UI as a toast
// or log line.
type Notice struct {
	Level       Level
	Title       string
	Description string
}

// Channel is an ordered list of listeners for one kind of event. The same
// function may be subscribed more than once; each subscription is removed
// independently.
type Channel[T any] struct {
	name   string
	logger *log.Logger

	mu     sync.RWMutex
	nextID uint64
	subs   []subscription[T]
}

type subscription[T any] struct {
	id uint64
	fn func(T)
}

func newChannel[T any](name string, logger *log.Logger) *Channel[T] {
	return &Channel[T]{name: name, logger: logger}
}

// Subscribe appends fn and returns a function that removes this
// subscription. Calling the returned function more than once is harmless.
func (c *Channel[T]) Subscribe(fn func(T)) func() {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscription[T]{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { c.remove(id) })
	}
}

func (c *Channel[T]) remove(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.subs[:0:0]
	for _, sub := range c.subs {
		if sub.id != id {
			kept = append(kept, sub)
		}
	}
	c.subs = kept
}

// Len returns the number of active subscriptions.
func (c *Channel[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs)
}

// Publish delivers v to every listener in subscription order. A panicking
// listener is logged and skipped; the rest still run.
func (c *Channel[T]) Publish(v T) {
	c.mu.RLock()
	subs := make([]subscription[T], len(c.subs))
	copy(subs, c.subs)
	c.mu.RUnlock()

	for _, sub := range subs {
		c.deliver(sub, v)
	}
}

func (c *Channel[T]) deliver(sub subscription[T], v T) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Listener panicked", "channel", c.name, "subscription", sub.id, "panic", r)
		}
	}()
	sub.fn(v)
}

// Hub is the set of channels UI code subscribes to instead of touching the
// socket.
type Hub struct {
	GameState *Channel[protocol.GameState]
	Status    *Channel[bool]
	Errors    *Channel[string]
	Notices   *Channel[Notice]
}

// NewHub creates a hub with empty channels.
func NewHub(logger *log.Logger) *Hub {
	logger = logger.WithPrefix("hub")
	return &Hub{
		GameState: newChannel[protocol.GameState]("game_state", logger),
		Status:    newChannel[bool]("status", logger),
		Errors:    newChannel[string]("error", logger),
		Notices:   newChannel[Notice]("notice", logger),
	}
}

// outbox collects publications made while the Manager's mutex is held so
// they can be delivered after it is released.
type outbox []func()

func (o *outbox) add(fn func()) {
	*o = append(*o, fn)
}

func (o *outbox) flush() {
	for _, fn := range *o {
		fn()
	}
}
