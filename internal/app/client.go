package app

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"gameroom-service/internal/domain"
	"gameroom-service/internal/game"
)

// Client is everything the server tracks about one connection.
type Client struct {
	id          string
	connectedAt time.Time
	now         func() time.Time

	mu      sync.RWMutex
	name    string
	room    string
	matchID string
	// waitingOn is the topic the client is queued for; only a client still
	// waiting on a topic can be claimed by a match formed there.
	waitingOn string
	history   map[string][]domain.ChatMessage
	game      game.Game
}

// NewClient is exported for registry implementations.
func NewClient(id string) *Client {
	return NewClientWithClock(id, time.Now)
}

// NewClientWithClock is test-only for deterministic connection times.
func NewClientWithClock(id string, now func() time.Time) *Client {
	return &Client{
		id:          id,
		connectedAt: now(),
		now:         now,
		history:     make(map[string][]domain.ChatMessage),
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

func (c *Client) SetName(name string) {
	c.mu.Lock()
	c.name = name
	c.mu.Unlock()
}

func (c *Client) Room() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room
}

func (c *Client) SetRoom(room string) {
	c.mu.Lock()
	c.room = room
	c.mu.Unlock()
}

func (c *Client) ClearRoom() { c.SetRoom("") }

func (c *Client) MatchID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.matchID
}

func (c *Client) ClearMatchID() {
	c.mu.Lock()
	c.matchID = ""
	c.mu.Unlock()
}

// WaitingOn returns the topic the client is queued for, if any.
func (c *Client) WaitingOn() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.waitingOn
}

// ResetPlacement marks the client as waiting on topic ("" for nowhere) and
// detaches it from its match, returning the id of the match it held.
func (c *Client) ResetPlacement(topic string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.matchID
	c.matchID = ""
	c.waitingOn = topic
	return prev
}

// StopWaiting clears the waiting topic and keeps any match.
func (c *Client) StopWaiting() {
	c.mu.Lock()
	c.waitingOn = ""
	c.mu.Unlock()
}

// ClaimForMatch places the client in matchID if it is still waiting on topic.
func (c *Client) ClaimForMatch(topic, matchID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if topic == "" || c.waitingOn != topic || c.matchID != "" {
		return false
	}
	c.matchID = matchID
	c.waitingOn = ""
	return true
}

// ReleaseClaim undoes ClaimForMatch when the match could not start. It
// reports false if the client has moved on since the claim.
func (c *Client) ReleaseClaim(topic, matchID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.matchID != matchID || c.waitingOn != "" {
		return false
	}
	c.matchID = ""
	c.waitingOn = topic
	return true
}

// Messages returns the client's history for room, oldest first.
func (c *Client) Messages(room string) ([]domain.ChatMessage, error) {
	if room == "" {
		return nil, domain.ErrNotInRoom
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs, ok := c.history[room]
	if !ok {
		msgs = []domain.ChatMessage{}
		c.history[room] = msgs
	}
	return append([]domain.ChatMessage(nil), msgs...), nil
}

// AddMessage appends msg to the room history. Blank texts are not stored.
func (c *Client) AddMessage(room string, msg domain.ChatMessage) error {
	if room == "" {
		return domain.ErrNotInRoom
	}
	if strings.TrimSpace(msg.Text) == "" {
		return nil
	}
	c.mu.Lock()
	c.history[room] = append(c.history[room], msg)
	c.mu.Unlock()
	return nil
}

// CreateGame replaces the client's game with a fresh one of the named kind.
func (c *Client) CreateGame(kind string) error {
	var g game.Game
	switch strings.ToLower(kind) {
	case "riddle":
		g = game.NewRiddle(game.DefaultRiddles())
	case "trivia":
		g = game.NewTriviaMatch("")
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownGame, kind)
	}
	c.mu.Lock()
	c.game = g
	c.mu.Unlock()
	return nil
}

// Game returns the owned game or nil.
func (c *Client) Game() game.Game {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.game
}

func (c *Client) ConnectedAt() time.Time { return c.connectedAt }

// ConnectionTime formats the time since connect as HH:MM:SS.
func (c *Client) ConnectionTime() string {
	d := c.now().Sub(c.connectedAt)
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}
