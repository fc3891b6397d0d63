package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/8ria/pulse/internal/contract"
	"github.com/8ria/pulse/schema"
	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces schedule keys inside a shared Redis database.
const redisKeyPrefix = "pulse:schedule:"

// RedisScheduleStore keeps each schedule as a plain string value.
type RedisScheduleStore struct {
	client *redis.Client
	addr   string
}

var _ contract.ScheduleStore = &RedisScheduleStore{} // Compile-time check

// NewRedisScheduleStore connects to the redis:// URL in connStr.
func NewRedisScheduleStore(ctx context.Context, connStr string) (*RedisScheduleStore, error) {
	opts, err := redis.ParseURL(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w. Check connection format: redis://[:password@]host:port/db", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return &RedisScheduleStore{client: client, addr: opts.Addr}, nil
}

// Get implements the ScheduleStore interface.
func (s *RedisScheduleStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, contract.ErrNotFound
	}
	return v, err
}

// PutIfAbsent implements the ScheduleStore interface.
func (s *RedisScheduleStore) PutIfAbsent(ctx context.Context, key string, value []byte) (bool, error) {
	return s.client.SetNX(ctx, redisKeyPrefix+key, value, 0).Result()
}

// Keys implements the ScheduleStore interface.
func (s *RedisScheduleStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), redisKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan schedule keys: %w", err)
	}
	slices.Sort(keys)
	return slices.Compact(keys), nil
}

// Delete implements the ScheduleStore interface.
func (s *RedisScheduleStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, redisKeyPrefix+key).Err()
}

// Close implements the ScheduleStore interface.
func (s *RedisScheduleStore) Close() error {
	return s.client.Close()
}

// GetStatus implements the ScheduleStore interface.
func (s *RedisScheduleStore) GetStatus(ctx context.Context) (schema.ScheduleStoreStatus, error) {
	status := schema.ScheduleStoreStatus{
		Backend:  string(schema.RedisBackend),
		Location: s.addr,
	}
	if err := s.client.Ping(ctx).Err(); err != nil {
		return status, nil
	}
	status.Connected = true

	keys, err := s.Keys(ctx)
	if err != nil {
		return status, err
	}
	status.TotalEntries = len(keys)
	if len(keys) > 0 {
		status.OldestKey = keys[0]
		status.NewestKey = keys[len(keys)-1]
	}
	for _, key := range keys {
		n, err := s.client.StrLen(ctx, redisKeyPrefix+key).Result()
		if err != nil {
			return status, fmt.Errorf("failed to size key %s: %w", key, err)
		}
		status.SizeBytes += n
	}
	return status, nil
}
