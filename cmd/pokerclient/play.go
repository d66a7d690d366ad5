package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coder/quartz"
	"github.com/lox/pokerclient/internal/client"
	"github.com/lox/pokerclient/internal/connection"
	"github.com/lox/pokerclient/internal/protocol"
	"github.com/lox/pokerclient/internal/tui"
	"github.com/lox/pokerclient/internal/transport"
	"golang.org/x/sync/errgroup"
)

type PlayCmd struct {
	Room string `arg:"" optional:"" help:"Room id to join directly instead of opening the lobby"`
}

func (c *PlayCmd) Run(g *Globals) error {
	var logFile *os.File
	e, err := g.setup(func(cfg *client.Config) (io.Writer, error) {
		f, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logFile = f
		return f, nil
	})
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()

	sess, ok := e.sessions.Current()
	if !ok {
		return errors.New("not logged in: run 'pokerclient login <username>' first")
	}

	e.logger.Info("Starting pokerclient",
		"version", version,
		"server", e.cfg.Server.URL,
		"dev", e.cfg.Server.DevMode,
		"player", sess.Username,
		"config", g.Config)

	clock := quartz.NewReal()
	manager := connection.NewManager(connection.Config{
		Endpoint: e.endpoint,
		Dialer:   transport.NewWSDialer(e.cfg.HandshakeTimeout(), clock, e.logger),
		Sessions: e.sessions,
		Health:   connection.NewHealthProbe(e.endpoint.HTTPURL("/health"), e.cfg.HealthTimeout(), e.logger),
		Policy:   e.cfg.ReconnectPolicy(),
		Clock:    clock,
		Logger:   e.logger,
	})
	defer manager.Close()

	lobby := tui.NewLobbyModel(e.api, clock, e.cfg.LobbyRefresh(), e.cfg.RequestTimeout(), sess.Username, e.logger)

	var room *protocol.Room
	if c.Room != "" {
		room = &protocol.Room{ID: c.Room, Name: c.Room}
	}
	app := tui.NewApp(lobby, manager, sess, room, e.logger)

	program := tea.NewProgram(app, tea.WithAltScreen())
	bridge := tui.NewBridge(manager.Hub(), program, e.logger)
	defer bridge.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer stop()
		_, err := program.Run()
		return err
	})
	group.Go(func() error {
		<-gctx.Done()
		program.Quit()
		return nil
	})

	err = group.Wait()
	e.logger.Info("Exiting", "error", err)
	return err
}
