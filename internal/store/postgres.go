package store

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"log/slog"

	"github.com/YekSoft-Technology/pikselliyo/internal/app"
	"github.com/YekSoft-Technology/pikselliyo/internal/canvas"
)

// Postgres stores one row per room. A save runs in a transaction that
// upserts every room and deletes rows absent from the snapshot, so readers
// never observe a half-written snapshot.
type Postgres struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPostgres connects, verifies connectivity, and applies migrations.
func NewPostgres(ctx context.Context, cfg app.Config, log *slog.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, cfg.PGURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	p := &Postgres{pool: pool, log: log}
	if err := runMigrations(ctx, p, log); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) Close() { p.pool.Close() }

// Save replaces the stored snapshot inside one transaction.
func (p *Postgres) Save(ctx context.Context, snap canvas.Snapshot) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	codes := make([]string, 0, len(snap))
	for code, rs := range snap {
		pixels, err := json.Marshal(rs.Pixels)
		if err != nil {
			return err
		}
		messages, err := json.Marshal(rs.Messages)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO rooms (code, pixels, messages, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (code) DO UPDATE
			SET pixels = EXCLUDED.pixels, messages = EXCLUDED.messages, updated_at = NOW()
		`, code, pixels, messages); err != nil {
			return err
		}
		codes = append(codes, code)
	}

	// Rooms destroyed since the last snapshot disappear from storage too.
	if _, err := tx.Exec(ctx, `DELETE FROM rooms WHERE code <> ALL($1)`, codes); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	p.log.Debug("snapshot.saved", "driver", "postgres", "rooms", len(snap))
	return nil
}

// Load reads every stored room.
func (p *Postgres) Load(ctx context.Context) (canvas.Snapshot, error) {
	rows, err := p.pool.Query(ctx, `SELECT code, pixels, messages FROM rooms`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snap := make(canvas.Snapshot)
	for rows.Next() {
		var code string
		var pixels, messages []byte
		if err := rows.Scan(&code, &pixels, &messages); err != nil {
			return nil, err
		}
		rs := canvas.RoomSnapshot{Code: code}
		if err := json.Unmarshal(pixels, &rs.Pixels); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(messages, &rs.Messages); err != nil {
			return nil, err
		}
		snap[code] = rs
	}
	return snap, rows.Err()
}
