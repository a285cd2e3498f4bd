package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clubtrips/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Get when the key does not exist
var ErrCacheMiss = errors.New("cache miss")

type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePattern(ctx context.Context, pattern string) error

	// GetOrSet implements cache-aside: on a miss the fetcher result is
	// stored before it is returned.
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error

	Ping(ctx context.Context) error
}

type service struct {
	client *redis.Client
	logger *logger.Logger
}

func NewService(client *redis.Client, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{client: client, logger: log}
}

func (s *service) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}
	return nil
}

func (s *service) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}

	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

func (s *service) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

// DeletePattern walks matching keys with SCAN and deletes them in batches
func (s *service) DeletePattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("cache scan error: %w", err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache delete pattern error: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (s *service) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	err := s.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.logger.WarnContext(ctx, "cache read failed, falling back to source", "key", key, "error", err)
	}

	data, err := fetcher()
	if err != nil {
		return err
	}

	if setErr := s.Set(ctx, key, data, ttl); setErr != nil {
		s.logger.WarnContext(ctx, "cache write failed", "key", key, "error", setErr)
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal fetched data error: %w", err)
	}
	return json.Unmarshal(jsonData, dest)
}

func (s *service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
