package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" help:"Show version"`
	Login   LoginCmd         `cmd:"" help:"Log in with a username"`
	Logout  LogoutCmd        `cmd:"" help:"Forget the stored login"`
	Whoami  WhoamiCmd        `cmd:"" help:"Show the stored login"`
	Rooms   RoomsCmd         `cmd:"" help:"List the server's rooms"`
	Probe   ProbeCmd         `cmd:"" help:"Check that the server is reachable"`
	Play    PlayCmd          `cmd:"" default:"withargs" help:"Open the lobby and play"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pokerclient"),
		kong.Description("Terminal client for multiplayer poker tables"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
