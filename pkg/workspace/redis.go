package workspace

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces workspace keys in a shared redis.
const DefaultRedisPrefix = "panels:"

// RedisOptions configures RedisStorage.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every key. Empty uses DefaultRedisPrefix.
	Prefix string
	// DialTimeout bounds the initial ping. Zero uses 5s.
	DialTimeout time.Duration
}

// RedisStorage stores blobs as plain redis strings without expiry.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage connects to redis and verifies the connection with PING.
func NewRedisStorage(ctx context.Context, opts RedisOptions) (*RedisStorage, error) {
	if opts.Addr == "" {
		opts.Addr = "localhost:6379"
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultRedisPrefix
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewRedisStorageFromClient(client, opts.Prefix), nil
}

// NewRedisStorageFromClient wraps an existing client.
func NewRedisStorageFromClient(client *redis.Client, prefix string) *RedisStorage {
	return &RedisStorage{client: client, prefix: prefix}
}

func (s *RedisStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *RedisStorage) Set(ctx context.Context, key string, data []byte) error {
	return s.client.Set(ctx, s.prefix+key, data, 0).Err()
}

func (s *RedisStorage) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

// Close closes the client.
func (s *RedisStorage) Close() error { return s.client.Close() }

var _ Storage = (*RedisStorage)(nil)
