package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hackgods/clinic-appointments/internal/appointment"
)

const DefaultRedisKey = "clinic:appointments:snapshot"

// RedisSink stores the snapshot under a single key with no expiry.
type RedisSink struct {
	client *redis.Client
	key    string
}

func NewRedisSink(client *redis.Client, key string) *RedisSink {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisSink{client: client, key: key}
}

func (s *RedisSink) Write(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set snapshot key %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisSink) Read(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appointment.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("get snapshot key %s: %w", s.key, err)
	}
	return data, nil
}

func (s *RedisSink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
