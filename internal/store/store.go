package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/YekSoft-Technology/pikselliyo/internal/app"
	"github.com/YekSoft-Technology/pikselliyo/internal/canvas"
)

// SnapshotStore persists and restores the full room snapshot. Writes replace
// the previous snapshot wholesale; a failed write must leave the old one
// intact.
type SnapshotStore interface {
	Save(ctx context.Context, snap canvas.Snapshot) error
	Load(ctx context.Context) (canvas.Snapshot, error)
	Close()
}

// Open selects a backend from cfg.StoreDriver.
func Open(ctx context.Context, cfg app.Config, log *slog.Logger) (SnapshotStore, error) {
	switch cfg.StoreDriver {
	case "file":
		return NewFileStore(cfg.DataFile, log), nil
	case "postgres":
		return NewPostgres(ctx, cfg, log)
	case "redis":
		return NewRedisStore(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// encodeSnapshot renders the persisted layout: room code -> {code, "x,y"
// pixel keys, last-100 messages}.
func encodeSnapshot(snap canvas.Snapshot) ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}

func decodeSnapshot(raw []byte) (canvas.Snapshot, error) {
	snap := make(canvas.Snapshot)
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return snap, nil
}
