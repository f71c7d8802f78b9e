package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultRedisKey = "locations:data"
	redisTimeout    = 5 * time.Second
)

// ErrSourceMissing is returned by Read when the backing resource does not exist yet.
var ErrSourceMissing = errors.New("source resource missing")

type redisSource struct {
	redis *redis.Client
	key   string
}

// NewRedisSource stores the FeatureCollection document under one key, without TTL.
func NewRedisSource(rdb *redis.Client, key string) Source {
	if key == "" {
		key = DefaultRedisKey
	}
	return &redisSource{
		redis: rdb,
		key:   key,
	}
}

func (s *redisSource) Name() string {
	return "redis:" + s.key
}

func (s *redisSource) Exists(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	n, err := s.redis.Exists(ctx, s.key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisSource) Read(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	val, err := s.redis.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis key=%s: %w", s.key, ErrSourceMissing)
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *redisSource) Write(ctx context.Context, raw []byte) error {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	if err := s.redis.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save redis key=%s: %w", s.key, err)
	}
	return nil
}

// Ping reports whether the Redis server answers.
func (s *redisSource) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}
