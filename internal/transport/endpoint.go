package transport

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
)

// Endpoint derives socket and HTTP URLs for the table server. The server
// origin decides between encrypted and plain transport; dev mode pins the
// host to a fixed loopback address regardless of the origin's scheme.
type Endpoint struct {
	origin  *url.URL
	devMode bool
	devHost string
	logger  *log.Logger
}

// NewEndpoint validates origin (e.g. "https://poker.example.com") once so
// that URL derivation cannot fail later.
func NewEndpoint(origin string, devMode bool, devHost string, logger *log.Logger) (*Endpoint, error) {
	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	default:
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", origin)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q: missing host", origin)
	}
	if devMode && devHost == "" {
		return nil, fmt.Errorf("dev mode requires a dev host")
	}

	return &Endpoint{
		origin:  u,
		devMode: devMode,
		devHost: devHost,
		logger:  logger.WithPrefix("transport"),
	}, nil
}

// Secure reports whether the origin uses an encrypted channel.
func (e *Endpoint) Secure() bool {
	return e.origin.Scheme == "https"
}

func (e *Endpoint) host() string {
	if e.devMode {
		return e.devHost
	}
	return e.origin.Host
}

// RoomURL returns the socket URL for a room.
func (e *Endpoint) RoomURL(roomID string) string {
	scheme := "ws"
	if e.Secure() && !e.devMode {
		scheme = "wss"
	}

	u := url.URL{
		Scheme: scheme,
		Host:   e.host(),
		Path:   "/game/" + roomID,
	}
	e.logger.Debug("Resolved room endpoint", "room", roomID, "url", u.String(), "dev", e.devMode)
	return u.String()
}

// HTTPURL returns the request/response URL for path on the same server.
func (e *Endpoint) HTTPURL(path string) string {
	scheme := e.origin.Scheme
	if e.devMode {
		scheme = "http"
	}

	u := url.URL{
		Scheme: scheme,
		Host:   e.host(),
		Path:   "/" + strings.TrimPrefix(path, "/"),
	}
	return u.String()
}
