package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cognition-berries/pkg/config"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Store is a JSON cache and pub/sub facade. A Store without a client
// misses on every read and drops every write.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Enabled() bool {
	return s != nil && s.client != nil
}

func (s *Store) GetJSON(ctx context.Context, key string, dest interface{}) error {
	if !s.Enabled() {
		return ErrCacheMiss
	}
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.client.Set(ctx, key, raw, ttl).Err()
}

// Incr bumps a counter and returns its new value. Disabled stores report 0.
func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	if !s.Enabled() {
		return 0, nil
	}
	return s.client.Incr(ctx, key).Result()
}

func (s *Store) PublishJSON(ctx context.Context, channel string, value interface{}) error {
	if !s.Enabled() {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return s.client.Publish(ctx, channel, raw).Err()
}

// Subscribe returns nil when Redis is not configured.
func (s *Store) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	if !s.Enabled() {
		return nil
	}
	return s.client.Subscribe(ctx, channel)
}
