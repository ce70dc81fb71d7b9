package canvas

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// GridSize bounds both axes of the pixel grid: valid coordinates are [0, GridSize).
const GridSize = 200

// MaxMessages caps the per-room chat history (sliding window, oldest dropped).
const MaxMessages = 100

// MinUsernameLen is the shortest accepted username, in runes.
const MinUsernameLen = 2

// ValidateUsername checks a trimmed username against MinUsernameLen.
func ValidateUsername(name string) error {
	if utf8.RuneCountInString(name) < MinUsernameLen {
		return ErrUsernameTooShort
	}
	return nil
}

// Coord identifies one cell of the sparse pixel grid. It serializes as the
// "x,y" text key used in snapshots and roomState payloads.
type Coord struct {
	X int
	Y int
}

// InBounds reports whether the coordinate lies on the grid.
func (c Coord) InBounds() bool {
	return c.X >= 0 && c.X < GridSize && c.Y >= 0 && c.Y < GridSize
}

// MarshalText renders the coordinate as "x,y" for JSON map keys.
func (c Coord) MarshalText() ([]byte, error) {
	return []byte(strconv.Itoa(c.X) + "," + strconv.Itoa(c.Y)), nil
}

// UnmarshalText parses an "x,y" key.
func (c *Coord) UnmarshalText(b []byte) error {
	xs, ys, ok := strings.Cut(string(b), ",")
	if !ok {
		return fmt.Errorf("bad coordinate key %q", b)
	}
	x, err := strconv.Atoi(xs)
	if err != nil {
		return fmt.Errorf("bad coordinate key %q: %w", b, err)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return fmt.Errorf("bad coordinate key %q: %w", b, err)
	}
	c.X, c.Y = x, y
	return nil
}

// Message is one chat entry.
type Message struct {
	Username  string `json:"username"`
	Text      string `json:"message"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

// Room holds all shared state for one canvas: who is present, the sparse
// pixel grid, and the capped chat log. Occupancy is never persisted.
type Room struct {
	Code     string
	Users    map[string]struct{}
	Pixels   map[Coord]string
	Messages []Message
}

// NewRoom creates an empty room.
func NewRoom(code string) *Room {
	return &Room{
		Code:   code,
		Users:  make(map[string]struct{}),
		Pixels: make(map[Coord]string),
	}
}

// HasUser reports whether username currently occupies the room.
func (r *Room) HasUser(username string) bool {
	_, ok := r.Users[username]
	return ok
}

// SetPixel records a placement. The caller validates bounds and occupancy.
func (r *Room) SetPixel(c Coord, color string) {
	r.Pixels[c] = color
}

// PlacePixel records a placement after checking occupancy and bounds.
func (r *Room) PlacePixel(username string, c Coord, color string) error {
	if !r.HasUser(username) {
		return ErrNotInRoom
	}
	if !c.InBounds() {
		return ErrBadCoordinates
	}
	r.SetPixel(c, color)
	return nil
}

// ClearPixels empties the grid.
func (r *Room) ClearPixels() {
	r.Pixels = make(map[Coord]string)
}

// AddMessage appends a chat entry and enforces the sliding window.
func (r *Room) AddMessage(username, text string, at time.Time) Message {
	m := Message{Username: username, Text: text, Timestamp: at.UnixMilli()}
	r.Messages = append(r.Messages, m)
	if len(r.Messages) > MaxMessages {
		r.Messages = r.Messages[len(r.Messages)-MaxMessages:]
	}
	return m
}

// AppendMessage validates occupancy and content before appending chat.
func (r *Room) AppendMessage(username, text string, at time.Time) (Message, error) {
	if !r.HasUser(username) {
		return Message{}, ErrNotInRoom
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}
	return r.AddMessage(username, text, at), nil
}

// UserList returns the occupant usernames (unordered).
func (r *Room) UserList() []string {
	out := make([]string, 0, len(r.Users))
	for u := range r.Users {
		out = append(out, u)
	}
	return out
}
