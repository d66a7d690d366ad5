// Package api talks to the table server's request/response endpoints: login
// and the room listing. It populates the session the connection core reads.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/pokerclient/internal/protocol"
	"github.com/lox/pokerclient/internal/session"
)

var (
	// ErrNotLoggedIn indicates a call that needs a session was made without one.
	ErrNotLoggedIn = errors.New("api: not logged in")

	// ErrSessionExpired indicates the server no longer knows the stored
	// player. The session has been cleared.
	ErrSessionExpired = errors.New("api: session expired, please log in again")

	// ErrUnavailable indicates the server could not be reached or answered
	// with something other than the expected JSON.
	ErrUnavailable = errors.New("api: server unavailable")
)

const userNotFound = "User not found"

// maxBody bounds how much of a response is read.
const maxBody = 1 << 20

// URLResolver builds request URLs on the table server.
type URLResolver interface {
	HTTPURL(path string) string
}

// SessionStore is the part of session.Store the client updates.
type SessionStore interface {
	Current() (session.Session, bool)
	Set(session.Session) error
	Clear() error
}

// Client performs login and room listing requests.
type Client struct {
	urls     URLResolver
	sessions SessionStore
	client   *http.Client
	clock    quartz.Clock
	logger   *log.Logger
}

// NewClient creates a client. A nil clock uses the real clock.
func NewClient(urls URLResolver, sessions SessionStore, timeout time.Duration, clock quartz.Clock, logger *log.Logger) *Client {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Client{
		urls:     urls,
		sessions: sessions,
		client:   &http.Client{Timeout: timeout},
		clock:    clock,
		logger:   logger.WithPrefix("api"),
	}
}

type loginRequest struct {
	Username string `json:"username"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// roomResponse is the listing's wire shape, which uses snake_case.
type roomResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PlayerCount int    `json:"player_count"`
	MaxPlayers  int    `json:"max_players"`
	SmallBlind  int    `json:"small_blind"`
	BigBlind    int    `json:"big_blind"`
	Status      string `json:"status"`
}

func (r roomResponse) room() protocol.Room {
	return protocol.Room{
		ID:          r.ID,
		Name:        r.Name,
		PlayerCount: r.PlayerCount,
		MaxPlayers:  r.MaxPlayers,
		SmallBlind:  r.SmallBlind,
		BigBlind:    r.BigBlind,
		Status:      protocol.RoomStatus(r.Status),
	}
}

// Login registers username with the server and stores the returned identity
// as the current session.
func (c *Client) Login(ctx context.Context, username string) (*protocol.Player, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("username is required")
	}

	body, err := json.Marshal(loginRequest{Username: username})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.urls.HTTPURL("/login"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := readError(resp.Body)
		c.logger.Warn("Login rejected", "username", username, "status", resp.StatusCode, "error", msg)
		if msg != "" {
			return nil, fmt.Errorf("login failed: %s", msg)
		}
		return nil, fmt.Errorf("login failed: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var player protocol.Player
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&player); err != nil {
		return nil, fmt.Errorf("%w: invalid login response: %v", ErrUnavailable, err)
	}

	if err := c.sessions.Set(session.Session{PlayerID: player.ID, Username: player.Username}); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	c.logger.Info("Logged in", "playerId", player.ID, "username", player.Username, "balance", player.Balance)
	return &player, nil
}

// Logout forgets the current session. The server is not contacted.
func (c *Client) Logout() error {
	return c.sessions.Clear()
}

// Rooms lists the server's tables for the logged in player. If the server no
// longer recognises the player the session is cleared and ErrSessionExpired
// returned.
func (c *Client) Rooms(ctx context.Context) ([]protocol.Room, error) {
	sess, ok := c.sessions.Current()
	if !ok {
		return nil, ErrNotLoggedIn
	}

	u, err := url.Parse(c.urls.HTTPURL("/rooms"))
	if err != nil {
		return nil, fmt.Errorf("build rooms url: %w", err)
	}
	q := u.Query()
	q.Set("playerId", sess.PlayerID)
	q.Set("_t", strconv.FormatInt(c.clock.Now().UnixMilli(), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := readError(resp.Body)
		if msg == userNotFound {
			c.logger.Warn("Server does not recognise player, clearing session", "playerId", sess.PlayerID)
			if err := c.sessions.Clear(); err != nil {
				c.logger.Error("Failed to clear session", "error", err)
			}
			return nil, ErrSessionExpired
		}
		if msg == "" {
			msg = "Failed to fetch rooms"
		}
		c.logger.Warn("Room listing failed", "status", resp.StatusCode, "error", msg)
		return nil, fmt.Errorf("list rooms: %s", msg)
	}

	var listing []roomResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&listing); err != nil {
		return nil, fmt.Errorf("%w: invalid room listing: %v", ErrUnavailable, err)
	}

	rooms := make([]protocol.Room, 0, len(listing))
	for _, r := range listing {
		rooms = append(rooms, r.room())
	}
	c.logger.Debug("Fetched rooms", "count", len(rooms))
	return rooms, nil
}

// readError extracts {"error": "..."} from a failed response, or "" if the
// body is not in that shape.
func readError(body io.Reader) string {
	var e errorResponse
	if err := json.NewDecoder(io.LimitReader(body, maxBody)).Decode(&e); err != nil {
		return ""
	}
	return e.Error
}
