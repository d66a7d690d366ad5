package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/lox/pokerclient/internal/api"
	"github.com/lox/pokerclient/internal/protocol"
	"github.com/muesli/termenv"
)

type RoomsCmd struct {
	NoColor bool `help:"Disable colored output"`
}

func (c *RoomsCmd) Run(g *Globals) error {
	e, err := g.setup(nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.RequestTimeout())
	defer cancel()

	rooms, err := e.api.Rooms(ctx)
	if errors.Is(err, api.ErrNotLoggedIn) || errors.Is(err, api.ErrSessionExpired) {
		return fmt.Errorf("%w: run 'pokerclient login <username>'", err)
	}
	if err != nil {
		return err
	}

	out := termenv.NewOutput(os.Stdout)
	if c.NoColor {
		out = termenv.NewOutput(os.Stdout, termenv.WithProfile(termenv.Ascii))
	}

	if len(rooms) == 0 {
		fmt.Fprintln(out, "No rooms available at the moment.")
		return nil
	}

	fmt.Fprintln(out, out.String(fmt.Sprintf("%-12s %-24s %-9s %-9s %s", "ID", "NAME", "STAKES", "PLAYERS", "STATUS")).Bold())
	for _, room := range rooms {
		line := fmt.Sprintf("%-12s %-24s %-9s %-9s %s",
			room.ID, room.Name, room.Stakes(), fmt.Sprintf("%d/%d", room.PlayerCount, room.MaxPlayers), room.Status)
		fmt.Fprintln(out, styleRoom(out, room, line))
	}
	return nil
}

func styleRoom(out *termenv.Output, room protocol.Room, line string) termenv.Style {
	s := out.String(line)
	switch {
	case room.IsFull():
		return s.Faint()
	case room.Status == protocol.RoomWaiting:
		return s.Foreground(out.Color("#04B575"))
	case room.Status == protocol.RoomPlaying:
		return s.Foreground(out.Color("#FFD700"))
	default:
		return s
	}
}
