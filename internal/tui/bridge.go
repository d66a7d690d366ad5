package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lox/pokerclient/internal/connection"
	"github.com/lox/pokerclient/internal/protocol"
)

// Sender delivers messages to a running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Bridge subscribes to a connection hub and forwards every notification to
// the UI as a tea.Msg. Hub listeners run on socket goroutines and may run
// inside Update, so messages are queued and a single goroutine sends them
// in publication order.
type Bridge struct {
	sender Sender
	logger *log.Logger

	mu     sync.Mutex
	queue  []tea.Msg
	wake   chan struct{}
	done   chan struct{}
	unsubs []func()
	once   sync.Once
}

// NewBridge subscribes to hub and starts forwarding.
func NewBridge(hub *connection.Hub, sender Sender, logger *log.Logger) *Bridge {
	b := &Bridge{
		sender: sender,
		logger: logger.WithPrefix("tui"),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	b.unsubs = []func(){
		hub.GameState.Subscribe(func(s protocol.GameState) { b.enqueue(GameStateMsg{State: s}) }),
		hub.Status.Subscribe(func(connected bool) { b.enqueue(StatusMsg{Connected: connected}) }),
		hub.Errors.Subscribe(func(msg string) { b.enqueue(ErrorMsg{Message: msg}) }),
		hub.Notices.Subscribe(func(n connection.Notice) { b.enqueue(NoticeMsg{Notice: n}) }),
	}

	go b.run()
	return b
}

func (b *Bridge) enqueue(msg tea.Msg) {
	b.mu.Lock()
	b.queue = append(b.queue, msg)
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Bridge) next() (tea.Msg, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return nil, false
	}
	msg := b.queue[0]
	b.queue = b.queue[1:]
	return msg, true
}

func (b *Bridge) run() {
	for {
		select {
		case <-b.done:
			return
		case <-b.wake:
		}
		for {
			msg, ok := b.next()
			if !ok {
				break
			}
			b.sender.Send(msg)
		}
	}
}

// Close unsubscribes from the hub and stops forwarding. Queued messages
// that have not been sent are dropped.
func (b *Bridge) Close() {
	b.once.Do(func() {
		for _, unsub := range b.unsubs {
			unsub()
		}
		close(b.done)
		b.logger.Debug("Bridge closed")
	})
}
