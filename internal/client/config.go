package client

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/pokerclient/internal/connection"
)

// DefaultConfigFile is read when no --config flag is given.
const DefaultConfigFile = "pokerclient.hcl"

// Config represents the complete client configuration. Every block is
// optional; anything left out takes its default.
type Config struct {
	Server    *ServerSettings    `hcl:"server,block"`
	Reconnect *ReconnectSettings `hcl:"reconnect,block"`
	Session   *SessionSettings   `hcl:"session,block"`
	UI        *UISettings        `hcl:"ui,block"`
}

// ServerSettings locates the table server.
type ServerSettings struct {
	URL              string `hcl:"url,optional"`
	DevMode          bool   `hcl:"dev_mode,optional"`
	DevHost          string `hcl:"dev_host,optional"`
	HandshakeTimeout string `hcl:"handshake_timeout,optional"`
	HealthTimeout    string `hcl:"health_timeout,optional"`
	RequestTimeout   string `hcl:"request_timeout,optional"`
}

// ReconnectSettings bounds automatic reconnection.
type ReconnectSettings struct {
	MaxAttempts  int     `hcl:"max_attempts,optional"`
	BaseDelayMS  int     `hcl:"base_delay_ms,optional"`
	GrowthFactor float64 `hcl:"growth_factor,optional"`
	MaxDelayMS   int     `hcl:"max_delay_ms,optional"`
}

// SessionSettings controls where the login is persisted.
type SessionSettings struct {
	File string `hcl:"file,optional"`
}

// UISettings contains user interface settings
type UISettings struct {
	LogLevel            string `hcl:"log_level,optional"`
	LogFile             string `hcl:"log_file,optional"`
	LobbyRefreshSeconds int    `hcl:"lobby_refresh_seconds,optional"`
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".pokerclient", "session.json")
	}
	return filepath.Join(home, ".pokerclient", "session.json")
}

// DefaultConfig returns default client configuration
func DefaultConfig() *Config {
	return &Config{
		Server: &ServerSettings{
			URL:              "http://localhost:3000",
			DevHost:          "localhost:3000",
			HandshakeTimeout: "10s",
			HealthTimeout:    "3s",
			RequestTimeout:   "10s",
		},
		Reconnect: &ReconnectSettings{
			MaxAttempts:  5,
			BaseDelayMS:  3000,
			GrowthFactor: 1.5,
			MaxDelayMS:   15000,
		},
		Session: &SessionSettings{
			File: defaultSessionFile(),
		},
		UI: &UISettings{
			LogLevel:            "info",
			LogFile:             "pokerclient.log",
			LobbyRefreshSeconds: 30,
		},
	}
}

// LoadConfig loads client configuration from an HCL file. A missing file
// yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults(DefaultConfig())
	return &config, nil
}

func (c *Config) applyDefaults(d *Config) {
	if c.Server == nil {
		c.Server = d.Server
	}
	if c.Server.URL == "" {
		c.Server.URL = d.Server.URL
	}
	if c.Server.DevHost == "" {
		c.Server.DevHost = d.Server.DevHost
	}
	if c.Server.HandshakeTimeout == "" {
		c.Server.HandshakeTimeout = d.Server.HandshakeTimeout
	}
	if c.Server.HealthTimeout == "" {
		c.Server.HealthTimeout = d.Server.HealthTimeout
	}
	if c.Server.RequestTimeout == "" {
		c.Server.RequestTimeout = d.Server.RequestTimeout
	}

	if c.Reconnect == nil {
		c.Reconnect = d.Reconnect
	}
	if c.Reconnect.MaxAttempts == 0 {
		c.Reconnect.MaxAttempts = d.Reconnect.MaxAttempts
	}
	if c.Reconnect.BaseDelayMS == 0 {
		c.Reconnect.BaseDelayMS = d.Reconnect.BaseDelayMS
	}
	if c.Reconnect.GrowthFactor == 0 {
		c.Reconnect.GrowthFactor = d.Reconnect.GrowthFactor
	}
	if c.Reconnect.MaxDelayMS == 0 {
		c.Reconnect.MaxDelayMS = d.Reconnect.MaxDelayMS
	}

	if c.Session == nil {
		c.Session = d.Session
	}
	if c.Session.File == "" {
		c.Session.File = d.Session.File
	}

	if c.UI == nil {
		c.UI = d.UI
	}
	if c.UI.LogLevel == "" {
		c.UI.LogLevel = d.UI.LogLevel
	}
	if c.UI.LogFile == "" {
		c.UI.LogFile = d.UI.LogFile
	}
	if c.UI.LobbyRefreshSeconds == 0 {
		c.UI.LobbyRefreshSeconds = d.UI.LobbyRefreshSeconds
	}
}

// Validate validates the client configuration
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server URL is required")
	}
	if c.Server.DevMode && c.Server.DevHost == "" {
		return fmt.Errorf("dev_host is required in dev mode")
	}

	for name, value := range map[string]string{
		"handshake_timeout": c.Server.HandshakeTimeout,
		"health_timeout":    c.Server.HealthTimeout,
		"request_timeout":   c.Server.RequestTimeout,
	} {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	if c.Reconnect.MaxAttempts < 0 {
		return fmt.Errorf("max attempts cannot be negative")
	}
	if c.Reconnect.BaseDelayMS <= 0 {
		return fmt.Errorf("base delay must be positive")
	}
	if c.Reconnect.MaxDelayMS < c.Reconnect.BaseDelayMS {
		return fmt.Errorf("max delay must be at least the base delay")
	}
	if c.Reconnect.GrowthFactor < 1 {
		return fmt.Errorf("growth factor must be at least 1")
	}

	if c.UI.LobbyRefreshSeconds <= 0 {
		return fmt.Errorf("lobby refresh interval must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.UI.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.UI.LogLevel)
	}

	return nil
}

// HandshakeTimeout bounds the socket opening handshake.
func (c *Config) HandshakeTimeout() time.Duration {
	return mustDuration(c.Server.HandshakeTimeout)
}

// HealthTimeout bounds a single health probe.
func (c *Config) HealthTimeout() time.Duration {
	return mustDuration(c.Server.HealthTimeout)
}

// RequestTimeout bounds login and room listing requests.
func (c *Config) RequestTimeout() time.Duration {
	return mustDuration(c.Server.RequestTimeout)
}

// LobbyRefresh is how often the lobby re-fetches the room list.
func (c *Config) LobbyRefresh() time.Duration {
	return time.Duration(c.UI.LobbyRefreshSeconds) * time.Second
}

// ReconnectPolicy converts the reconnect block for the connection manager.
func (c *Config) ReconnectPolicy() connection.Policy {
	return connection.Policy{
		MaxAttempts: c.Reconnect.MaxAttempts,
		BaseDelay:   time.Duration(c.Reconnect.BaseDelayMS) * time.Millisecond,
		Factor:      c.Reconnect.GrowthFactor,
		MaxDelay:    time.Duration(c.Reconnect.MaxDelayMS) * time.Millisecond,
	}
}

// mustDuration is only used after Validate; an unparsable value yields zero.
func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
