// Package presence mirrors the room's live membership into Redis so
// occupancy can be inspected without touching the signaling server. The
// in-memory registry stays the source of truth; the mirror is best effort
// and never gates signaling.
package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/relaycall/signaling/config"
)

const (
	peersKey    = "room:peers"
	peersExpiry = 24 * time.Hour
)

type Store interface {
	Join(ctx context.Context, id string) error
	Leave(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	Close() error
}

// Noop is the store used when no Redis address is configured.
type Noop struct{}

func (Noop) Join(context.Context, string) error   { return nil }
func (Noop) Leave(context.Context, string) error  { return nil }
func (Noop) Count(context.Context) (int64, error) { return 0, nil }
func (Noop) Close() error                         { return nil }

// RedisStore keeps the live peer ids in a Redis set. The expiry is refreshed
// on every join so a crashed server's stale set eventually clears itself.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Join(ctx context.Context, id string) error {
	if err := s.client.SAdd(ctx, peersKey, id).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, peersKey, peersExpiry).Err()
}

func (s *RedisStore) Leave(ctx context.Context, id string) error {
	return s.client.SRem(ctx, peersKey, id).Err()
}

func (s *RedisStore) Count(ctx context.Context) (int64, error) {
	return s.client.SCard(ctx, peersKey).Result()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
