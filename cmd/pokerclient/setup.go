package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/pokerclient/internal/api"
	"github.com/lox/pokerclient/internal/client"
	"github.com/lox/pokerclient/internal/session"
	"github.com/lox/pokerclient/internal/transport"
)

// Globals holds flags shared by every command. Flags override the config file.
type Globals struct {
	Config      string `short:"c" default:"pokerclient.hcl" help:"Path to HCL configuration file"`
	Server      string `short:"s" help:"Server URL, e.g. https://poker.example.com (overrides config)"`
	DevMode     bool   `help:"Connect to the dev host over plain ws/http (overrides config)"`
	LogLevel    string `short:"l" help:"Log level (overrides config)"`
	LogFile     string `help:"Log file path for play (overrides config)"`
	SessionFile string `help:"Session file path (overrides config)"`
}

func (g *Globals) loadConfig() (*client.Config, error) {
	cfg, err := client.LoadConfig(g.Config)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if g.Server != "" {
		cfg.Server.URL = g.Server
	}
	if g.DevMode {
		cfg.Server.DevMode = true
	}
	if g.LogLevel != "" {
		cfg.UI.LogLevel = g.LogLevel
	}
	if g.LogFile != "" {
		cfg.UI.LogFile = g.LogFile
	}
	if g.SessionFile != "" {
		cfg.Session.File = g.SessionFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	switch level {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

// env is everything a command needs once config and logging are set up.
type env struct {
	cfg      *client.Config
	logger   *log.Logger
	endpoint *transport.Endpoint
	sessions *session.Store
	api      *api.Client
}

// setup loads config and builds the shared collaborators. Short commands
// log warnings to stderr; play passes its log file instead.
func (g *Globals) setup(logTo func(cfg *client.Config) (io.Writer, error)) (*env, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}

	var w io.Writer = os.Stderr
	level := "warn"
	if logTo != nil {
		if w, err = logTo(cfg); err != nil {
			return nil, err
		}
		level = cfg.UI.LogLevel
	} else if g.LogLevel != "" {
		level = g.LogLevel
	}
	logger := newLogger(w, level)

	endpoint, err := transport.NewEndpoint(cfg.Server.URL, cfg.Server.DevMode, cfg.Server.DevHost, logger)
	if err != nil {
		return nil, err
	}

	sessions, err := session.Open(cfg.Session.File, logger)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	return &env{
		cfg:      cfg,
		logger:   logger,
		endpoint: endpoint,
		sessions: sessions,
		api:      api.NewClient(endpoint, sessions, cfg.RequestTimeout(), nil, logger),
	}, nil
}
