package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/pokerclient/internal/protocol"
	"github.com/lox/pokerclient/internal/session"
	"github.com/lox/pokerclient/internal/transport"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// fakeSocket is driven explicitly by tests; nothing fires on its own.
type fakeSocket struct {
	id  string
	url string
	h   transport.Handlers

	mu         sync.Mutex
	state      transport.ReadyState
	sent       [][]byte
	sendErr    error
	closeCalls int
}

func (s *fakeSocket) ID() string { return s.id }

func (s *fakeSocket) ReadyState() transport.ReadyState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *fakeSocket) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != transport.Open {
		return transport.ErrNotOpen
	}
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, append([]byte(nil), data...))
	return nil
}

func (s *fakeSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeCalls++
	if s.state.Live() {
		s.state = transport.Closing
	}
	return nil
}

func (s *fakeSocket) setState(state transport.ReadyState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *fakeSocket) open() {
	s.setState(transport.Open)
	s.h.OnOpen()
}

func (s *fakeSocket) receive(frame string) {
	s.h.OnMessage([]byte(frame))
}

func (s *fakeSocket) fail(err error) {
	s.h.OnError(err)
}

func (s *fakeSocket) drop(code int) {
	s.setState(transport.Closed)
	s.h.OnClose(code, "")
}

func (s *fakeSocket) frames(t *testing.T) []map[string]any {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	var frames []map[string]any
	for _, data := range s.sent {
		var frame map[string]any
		require.NoError(t, json.Unmarshal(data, &frame))
		frames = append(frames, frame)
	}
	return frames
}

func (s *fakeSocket) closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCalls
}

type fakeDialer struct {
	mu      sync.Mutex
	sockets []*fakeSocket
	err     error
}

func (d *fakeDialer) Open(url string, h transport.Handlers) (transport.Socket, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	s := &fakeSocket{
		id:    fmt.Sprintf("sock-%d", len(d.sockets)+1),
		url:   url,
		h:     h,
		state: transport.Connecting,
	}
	d.sockets = append(d.sockets, s)
	return s, nil
}

func (d *fakeDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sockets)
}

func (d *fakeDialer) last(t *testing.T) *fakeSocket {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	require.NotEmpty(t, d.sockets, "no socket was opened")
	return d.sockets[len(d.sockets)-1]
}

func (d *fakeDialer) live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, s := range d.sockets {
		if s.ReadyState().Live() {
			n++
		}
	}
	return n
}

type fakeHealth struct {
	mu      sync.Mutex
	healthy bool
	calls   int
}

func (h *fakeHealth) Check(ctx context.Context) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	return h.healthy
}

type staticResolver struct{}

func (staticResolver) RoomURL(roomID string) string {
	return "ws://localhost:3000/game/" + roomID
}

// recorder subscribes to every hub channel.
type recorder struct {
	mu      sync.Mutex
	states  []int
	status  []bool
	errors  []string
	notices []Notice
}

func record(h *Hub) *recorder {
	r := &recorder{}
	h.GameState.Subscribe(func(s protocol.GameState) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.states = append(r.states, s.Pot)
	})
	h.Status.Subscribe(func(v bool) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.status = append(r.status, v)
	})
	h.Errors.Subscribe(func(msg string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.errors = append(r.errors, msg)
	})
	h.Notices.Subscribe(func(n Notice) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.notices = append(r.notices, n)
	})
	return r
}

func (r *recorder) pots() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.states...)
}

func (r *recorder) errorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errors)
}

func (r *recorder) statuses() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.status...)
}

func (r *recorder) errs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.errors...)
}

func (r *recorder) noticeTitles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var titles []string
	for _, n := range r.notices {
		titles = append(titles, n.Title)
	}
	return titles
}

type harness struct {
	manager  *Manager
	dialer   *fakeDialer
	clock    *quartz.Mock
	health   *fakeHealth
	sessions *session.Store
	events   *recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	sessions := session.NewStore("", quietLogger())
	require.NoError(t, sessions.Set(session.Session{PlayerID: "p1", Username: "alice"}))

	h := &harness{
		dialer:   &fakeDialer{},
		clock:    quartz.NewMock(t),
		health:   &fakeHealth{healthy: true},
		sessions: sessions,
	}
	h.manager = NewManager(Config{
		Endpoint: staticResolver{},
		Dialer:   h.dialer,
		Sessions: sessions,
		Health:   h.health,
		Policy:   DefaultPolicy(),
		Clock:    h.clock,
		Logger:   quietLogger(),
	})
	h.events = record(h.manager.Hub())
	t.Cleanup(h.manager.Close)
	return h
}

// timerArmed reports whether any reconnect timer is pending on the mock clock.
func (h *harness) timerArmed() bool {
	_, ok := h.clock.Peek()
	return ok
}

// fire advances to the pending reconnect timer and returns its delay.
func (h *harness) fire(t *testing.T) int64 {
	t.Helper()
	require.True(t, h.timerArmed(), "expected a pending reconnect timer")
	d, w := h.clock.AdvanceNext()
	w.MustWait(context.Background())
	return d.Milliseconds()
}

// join opens the latest socket and acknowledges the join.
func (h *harness) join(t *testing.T) *fakeSocket {
	t.Helper()
	sock := h.dialer.last(t)
	sock.open()
	sock.receive(`{"type":"join_success"}`)
	return sock
}
