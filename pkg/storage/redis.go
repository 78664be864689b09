package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/raykavin/futwatch/pkg/core"
	"github.com/redis/go-redis/v9"
)

var _ core.Store = (*RedisStorage)(nil)

// RedisStorage implements core.Store on a redis server. Subscribers live in a
// sorted set scored by a registration counter, known symbols in a plain set.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// RedisConfig holds the connection settings
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	Namespace string // key prefix, usually the exchange name
}

// NewRedisStorage connects to redis and checks the connection
func NewRedisStorage(ctx context.Context, config RedisConfig) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", config.Addr, err)
	}

	namespace := config.Namespace
	if namespace == "" {
		namespace = "default"
	}

	return &RedisStorage{
		client: client,
		prefix: "futwatch:" + namespace + ":",
	}, nil
}

func (r *RedisStorage) subscribersKey() string { return r.prefix + "subscribers" }
func (r *RedisStorage) sequenceKey() string    { return r.prefix + "subscriber_seq" }
func (r *RedisStorage) knownKey() string       { return r.prefix + "known" }

// Subscribers implements core.Store
func (r *RedisStorage) Subscribers(ctx context.Context) ([]string, error) {
	subscribers, err := r.client.ZRange(ctx, r.subscribersKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	return subscribers, nil
}

// AddSubscriber implements core.Store
func (r *RedisStorage) AddSubscriber(ctx context.Context, id string) (bool, error) {
	seq, err := r.client.Incr(ctx, r.sequenceKey()).Result()
	if err != nil {
		return false, fmt.Errorf("failed to allocate subscriber sequence: %w", err)
	}

	added, err := r.client.ZAddNX(ctx, r.subscribersKey(), redis.Z{
		Score:  float64(seq),
		Member: id,
	}).Result()
	if err != nil {
		return false, fmt.Errorf("failed to add subscriber: %w", err)
	}
	return added > 0, nil
}

// RemoveSubscriber implements core.Store
func (r *RedisStorage) RemoveSubscriber(ctx context.Context, id string) (bool, error) {
	removed, err := r.client.ZRem(ctx, r.subscribersKey(), id).Result()
	if err != nil {
		return false, fmt.Errorf("failed to remove subscriber: %w", err)
	}
	return removed > 0, nil
}

// KnownSymbols implements core.Store
func (r *RedisStorage) KnownSymbols(ctx context.Context) ([]string, error) {
	symbols, err := r.client.SMembers(ctx, r.knownKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list known symbols: %w", err)
	}
	sort.Strings(symbols)
	return symbols, nil
}

// ReplaceKnownSymbols implements core.Store inside a MULTI/EXEC block
func (r *RedisStorage) ReplaceKnownSymbols(ctx context.Context, symbols []string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.knownKey())
		if len(symbols) > 0 {
			members := make([]interface{}, len(symbols))
			for i, symbol := range symbols {
				members[i] = symbol
			}
			pipe.SAdd(ctx, r.knownKey(), members...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace known symbols: %w", err)
	}
	return nil
}

// Close closes the redis client
func (r *RedisStorage) Close() error {
	return r.client.Close()
}
