package canvas

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCoordKeySerialization(t *testing.T) {
	room := NewRoom("global")
	room.SetPixel(Coord{X: 5, Y: 5}, "#ff0000")

	raw, err := json.Marshal(room.Pixels)
	require.NoError(t, err)
	require.JSONEq(t, `{"5,5":"#ff0000"}`, string(raw))

	var back map[Coord]string
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Equal(t, "#ff0000", back[Coord{X: 5, Y: 5}])
}

func TestCoordBounds(t *testing.T) {
	require.True(t, Coord{X: 0, Y: 0}.InBounds())
	require.True(t, Coord{X: 199, Y: 199}.InBounds())
	require.False(t, Coord{X: 200, Y: 0}.InBounds())
	require.False(t, Coord{X: 0, Y: -1}.InBounds())
}

func TestValidateUsername(t *testing.T) {
	require.ErrorIs(t, ValidateUsername(""), ErrUsernameTooShort)
	require.ErrorIs(t, ValidateUsername("a"), ErrUsernameTooShort)
	require.NoError(t, ValidateUsername("ab"))
}

func TestPlacePixelChecksOccupancyAndBounds(t *testing.T) {
	room := NewRoom("global")
	c := Coord{X: 5, Y: 5}
	require.ErrorIs(t, room.PlacePixel("alice", c, "#fff"), ErrNotInRoom)

	room.Users["alice"] = struct{}{}
	require.ErrorIs(t, room.PlacePixel("alice", Coord{X: 200, Y: 0}, "#fff"), ErrBadCoordinates)
	require.NoError(t, room.PlacePixel("alice", c, "#fff"))
	require.Equal(t, "#fff", room.Pixels[c])
}

func TestAppendMessageChecksOccupancyAndContent(t *testing.T) {
	room := NewRoom("global")
	now := time.Now()

	_, err := room.AppendMessage("alice", "hi", now)
	require.ErrorIs(t, err, ErrNotInRoom)

	room.Users["alice"] = struct{}{}
	_, err = room.AppendMessage("alice", "   ", now)
	require.ErrorIs(t, err, ErrEmptyMessage)

	m, err := room.AppendMessage("alice", "  hi  ", now)
	require.NoError(t, err)
	require.Equal(t, "hi", m.Text)
	require.Len(t, room.Messages, 1)
}

func TestPixelLastWriteWins(t *testing.T) {
	room := NewRoom("global")
	c := Coord{X: 10, Y: 20}
	room.SetPixel(c, "#000000")
	room.SetPixel(c, "#ffffff")
	require.Equal(t, "#ffffff", room.Pixels[c])
	require.Len(t, room.Pixels, 1)
}

func TestMessageHistorySlidingWindow(t *testing.T) {
	room := NewRoom("global")
	now := time.Now()
	for i := 0; i < MaxMessages+1; i++ {
		room.AddMessage("alice", fmt.Sprintf("msg %d", i), now)
	}

	require.Len(t, room.Messages, MaxMessages)
	require.Equal(t, "msg 1", room.Messages[0].Text, "oldest entry must be discarded")
	require.Equal(t, fmt.Sprintf("msg %d", MaxMessages), room.Messages[len(room.Messages)-1].Text)
}

func TestClearPixels(t *testing.T) {
	room := NewRoom("global")
	room.SetPixel(Coord{X: 1, Y: 1}, "#abc")
	room.SetPixel(Coord{X: 2, Y: 2}, "#def")
	room.ClearPixels()
	require.Empty(t, room.Pixels)
}
