package store

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/YekSoft-Technology/pikselliyo/internal/canvas"
)

// FileStore writes the snapshot as one JSON file, replaced atomically:
// a temp file in the same directory is renamed over the target, so a crash
// mid-write never leaves a partial snapshot behind.
type FileStore struct {
	path string
	log  *slog.Logger
}

// NewFileStore persists snapshots at path.
func NewFileStore(path string, log *slog.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

// Save encodes the snapshot and replaces the file via temp + rename.
func (s *FileStore) Save(_ context.Context, snap canvas.Snapshot) error {
	raw, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return err
	}

	s.log.Debug("snapshot.saved", "path", s.path, "rooms", len(snap), "bytes", len(raw))
	return nil
}

// Load reads the snapshot file. A missing file is not an error: the service
// starts empty on first run.
func (s *FileStore) Load(_ context.Context) (canvas.Snapshot, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return canvas.Snapshot{}, nil
		}
		return nil, err
	}
	return decodeSnapshot(raw)
}

func (s *FileStore) Close() {}
