package tui

import (
	"fmt"
	"strconv"
	"strings"
)

type commandKind int

const (
	cmdAction commandKind = iota
	cmdRetry
	cmdLeave
	cmdQuit
	cmdHelp
)

// command is a parsed line from the table input.
type command struct {
	kind   commandKind
	action string
	amount *int
}

const helpText = "Actions: fold, check, call, bet <amount>, all-in. Commands: /retry, /leave, /quit, /help"

// parseCommand turns user input into a command. Legality of an action is
// left to the server.
func parseCommand(input string) (command, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(input)))
	if len(fields) == 0 {
		return command{}, fmt.Errorf("enter an action, or /help")
	}

	switch fields[0] {
	case "/retry", "/reconnect":
		return command{kind: cmdRetry}, nil
	case "/leave":
		return command{kind: cmdLeave}, nil
	case "/quit", "quit", "exit":
		return command{kind: cmdQuit}, nil
	case "/help", "help", "?":
		return command{kind: cmdHelp}, nil
	case "fold", "f":
		return command{kind: cmdAction, action: "fold"}, nil
	case "check", "k":
		return command{kind: cmdAction, action: "check"}, nil
	case "call", "c":
		return command{kind: cmdAction, action: "call"}, nil
	case "allin", "all-in", "a":
		return command{kind: cmdAction, action: "all-in"}, nil
	case "bet", "raise", "b", "r":
		if len(fields) < 2 {
			return command{}, fmt.Errorf("%s needs an amount, e.g. %s 50", fields[0], fields[0])
		}
		amount, err := strconv.Atoi(strings.TrimPrefix(fields[1], "$"))
		if err != nil || amount <= 0 {
			return command{}, fmt.Errorf("invalid amount %q", fields[1])
		}
		return command{kind: cmdAction, action: "bet", amount: &amount}, nil
	}

	return command{}, fmt.Errorf("unknown action %q, try /help", fields[0])
}
