package main

import (
	"context"
	"fmt"
)

type LoginCmd struct {
	Username string `arg:"" help:"Name to play as"`
}

func (c *LoginCmd) Run(g *Globals) error {
	e, err := g.setup(nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.RequestTimeout())
	defer cancel()

	player, err := e.api.Login(ctx, c.Username)
	if err != nil {
		return err
	}

	fmt.Printf("Logged in as %s (id %s, balance $%d)\n", player.Username, player.ID, player.Balance)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(g *Globals) error {
	e, err := g.setup(nil)
	if err != nil {
		return err
	}
	if err := e.api.Logout(); err != nil {
		return err
	}
	fmt.Println("Logged out")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(g *Globals) error {
	e, err := g.setup(nil)
	if err != nil {
		return err
	}

	sess, ok := e.sessions.Current()
	if !ok {
		fmt.Println("Not logged in")
		return nil
	}
	fmt.Printf("%s (id %s) on %s\n", sess.Username, sess.PlayerID, e.cfg.Server.URL)
	return nil
}
