package store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"log/slog"

	"github.com/stretchr/testify/require"

	"github.com/YekSoft-Technology/pikselliyo/internal/canvas"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gamedata.json")
	fs := NewFileStore(path, testLogger())
	ctx := context.Background()

	snap := canvas.Snapshot{
		"global": {
			Code:     "global",
			Pixels:   map[canvas.Coord]string{{X: 5, Y: 5}: "#ff0000"},
			Messages: []canvas.Message{{Username: "alice", Text: "hi", Timestamp: 123}},
		},
	}
	require.NoError(t, fs.Save(ctx, snap))

	got, err := fs.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, snap, got)
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "nope.json"), testLogger())
	snap, err := fs.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, snap)
}

func TestFileStoreWritesAreAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gamedata.json")
	fs := NewFileStore(path, testLogger())
	ctx := context.Background()

	require.NoError(t, fs.Save(ctx, canvas.Snapshot{"global": {Code: "global"}}))
	require.NoError(t, fs.Save(ctx, canvas.Snapshot{"global": {Code: "global"}, "r1": {Code: "r1"}}))

	// Only the target file remains; no temp files leak.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "gamedata.json", entries[0].Name())
}

func TestSnapshotLayoutUsesCoordKeys(t *testing.T) {
	raw, err := encodeSnapshot(canvas.Snapshot{
		"global": {
			Code:   "global",
			Pixels: map[canvas.Coord]string{{X: 12, Y: 34}: "#abcdef"},
		},
	})
	require.NoError(t, err)
	require.Contains(t, string(raw), `"12,34"`)

	snap, err := decodeSnapshot(raw)
	require.NoError(t, err)
	require.Equal(t, "#abcdef", snap["global"].Pixels[canvas.Coord{X: 12, Y: 34}])
}
