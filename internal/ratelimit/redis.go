package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements CounterStore on a Redis server. Records are stored
// as compact JSON values with no TTL; window expiry is tracked inside the
// record itself.
type RedisStore struct {
	client *redis.Client
}

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
// It fails fast when the server is unreachable; the service must not start
// serving traffic without its counter store.
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	host := opts.Host
	if host == "" {
		host = "localhost"
	}
	port := opts.Port
	if port == 0 {
		port = 6379
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %v", ErrStoreUnavailable, err)
	}

	return &RedisStore{client: client}, nil
}

// Read returns the record stored under key, or absent when no value exists.
func (s *RedisStore) Read(ctx context.Context, key string) (Record, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("%w: get %s: %v", ErrStoreUnavailable, key, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false, fmt.Errorf("decode counter record %s: %w", key, err)
	}
	return rec, true, nil
}

// Write persists the record under key with no TTL.
func (s *RedisStore) Write(ctx context.Context, key string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode counter record %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrStoreUnavailable, key, err)
	}
	return nil
}

// Delete removes the record for key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: del %s: %v", ErrStoreUnavailable, key, err)
	}
	return nil
}

// Ping verifies the Redis server is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
