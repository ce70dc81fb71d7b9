package canvas

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetOrCreate(t *testing.T) {
	reg := NewRegistry("global")

	rm := reg.GetOrCreate("r1")
	require.NotNil(t, rm)
	require.Equal(t, "r1", rm.Code)
	require.Same(t, rm, reg.GetOrCreate("r1"), "second call must return the same room")
	require.Equal(t, 2, reg.Count())
}

func TestDeleteIfEmpty(t *testing.T) {
	reg := NewRegistry("global")
	reg.GetOrCreate("r1")

	reg.DeleteIfEmpty("r1")
	require.Nil(t, reg.Get("r1"))

	// The default room survives even when empty.
	reg.DeleteIfEmpty("global")
	require.NotNil(t, reg.Get("global"))

	// Occupied rooms survive.
	rm := reg.GetOrCreate("r2")
	rm.Users["alice"] = struct{}{}
	reg.DeleteIfEmpty("r2")
	require.NotNil(t, reg.Get("r2"))
}

func TestDirtyFlag(t *testing.T) {
	reg := NewRegistry("global")
	reg.ConsumeDirty()

	require.False(t, reg.Dirty())
	reg.GetOrCreate("r1")
	require.True(t, reg.Dirty())
	require.True(t, reg.ConsumeDirty())
	require.False(t, reg.ConsumeDirty())
}

func TestExportImportRoundTrip(t *testing.T) {
	reg := NewRegistry("global")
	rm := reg.Get("global")
	rm.Users["alice"] = struct{}{}
	rm.SetPixel(Coord{X: 5, Y: 5}, "#ff0000")
	rm.AddMessage("alice", "hello", time.Now())

	snap := reg.Export()

	loaded := NewRegistry("global")
	loaded.Import(snap)
	got := loaded.Get("global")
	require.Equal(t, "#ff0000", got.Pixels[Coord{X: 5, Y: 5}])
	require.Len(t, got.Messages, 1)
	require.Empty(t, got.Users, "occupancy is never persisted")
}

func TestExportIsDeepCopy(t *testing.T) {
	reg := NewRegistry("global")
	rm := reg.Get("global")
	rm.SetPixel(Coord{X: 1, Y: 1}, "#111")

	snap := reg.Export()
	rm.SetPixel(Coord{X: 1, Y: 1}, "#222")

	require.Equal(t, "#111", snap["global"].Pixels[Coord{X: 1, Y: 1}])
}

func TestImportKeepsDefaultRoom(t *testing.T) {
	reg := NewRegistry("global")
	reg.Import(Snapshot{"r1": {Code: "r1"}})
	require.NotNil(t, reg.Get("global"))
	require.NotNil(t, reg.Get("r1"))
}
