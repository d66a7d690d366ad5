package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/pokerclient/internal/connection"
	"github.com/lox/pokerclient/internal/transport"
)

// ProbeCmd checks the health endpoint and, given a room, that a socket to
// it can be opened.
type ProbeCmd struct {
	Room string `help:"Also open a socket to this room and close it again"`
}

func (c *ProbeCmd) Run(g *Globals) error {
	e, err := g.setup(nil)
	if err != nil {
		return err
	}

	healthURL := e.endpoint.HTTPURL("/health")
	probe := connection.NewHealthProbe(healthURL, e.cfg.HealthTimeout(), e.logger)
	if !probe.Check(context.Background()) {
		return fmt.Errorf("server at %s is not healthy", healthURL)
	}
	fmt.Printf("health: ok (%s)\n", healthURL)

	if c.Room == "" {
		return nil
	}

	url := e.endpoint.RoomURL(c.Room)
	code, reason, err := openAndClose(url, e.cfg.HandshakeTimeout(), quartz.NewReal(), e)
	if err != nil {
		return fmt.Errorf("socket %s: %w", url, err)
	}
	fmt.Printf("socket: ok (%s, closed with %s)\n", url, connection.CloseReason(code, reason))
	return nil
}

func openAndClose(url string, timeout time.Duration, clock quartz.Clock, e *env) (int, string, error) {
	dialer := transport.NewWSDialer(timeout, clock, e.logger)

	type closed struct {
		code   int
		reason string
	}
	opened := make(chan struct{}, 1)
	done := make(chan closed, 1)
	failed := make(chan error, 1)

	sock, err := dialer.Open(url, transport.Handlers{
		OnOpen:    func() { opened <- struct{}{} },
		OnMessage: func([]byte) {},
		OnClose:   func(code int, reason string) { done <- closed{code, reason} },
		OnError: func(err error) {
			select {
			case failed <- err:
			default:
			}
		},
	})
	if err != nil {
		return 0, "", err
	}

	timer := clock.NewTimer(timeout+time.Second, "probe")
	defer timer.Stop()

	select {
	case <-opened:
		_ = sock.Close()
	case c := <-done:
		select {
		case err := <-failed:
			return c.code, c.reason, err
		default:
			return c.code, c.reason, errors.New("closed before opening")
		}
	case <-timer.C:
		_ = sock.Close()
		return 0, "", errors.New("timed out opening socket")
	}

	select {
	case c := <-done:
		return c.code, c.reason, nil
	case <-timer.C:
		return 0, "", errors.New("timed out closing socket")
	}
}
