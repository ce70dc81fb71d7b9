package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"log/slog"

	"github.com/YekSoft-Technology/pikselliyo/internal/app"
	"github.com/YekSoft-Technology/pikselliyo/internal/canvas"
)

const redisSnapshotKey = "pikselliyo:snapshot"

// RedisStore keeps the whole snapshot under one key. SET is atomic, so a
// reader sees either the previous or the new snapshot, never a partial one.
type RedisStore struct {
	rdb *redis.Client
	log *slog.Logger
}

// NewRedisStore connects to redis and verifies connectivity.
func NewRedisStore(ctx context.Context, cfg app.Config, log *slog.Logger) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisStore{rdb: rdb, log: log}, nil
}

// Save encodes and replaces the snapshot key.
func (s *RedisStore) Save(ctx context.Context, snap canvas.Snapshot) error {
	raw, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, redisSnapshotKey, raw, 0).Err(); err != nil {
		return err
	}
	s.log.Debug("snapshot.saved", "driver", "redis", "rooms", len(snap), "bytes", len(raw))
	return nil
}

// Load reads the snapshot key; a missing key means a fresh start.
func (s *RedisStore) Load(ctx context.Context) (canvas.Snapshot, error) {
	raw, err := s.rdb.Get(ctx, redisSnapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return canvas.Snapshot{}, nil
		}
		return nil, err
	}
	return decodeSnapshot(raw)
}

// Close shuts down the redis connection.
func (s *RedisStore) Close() { _ = s.rdb.Close() }
