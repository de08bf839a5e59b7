package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/logging"
)

const (
	idempotencyLockPrefix = "idemp:"
	idempotencyMapPrefix  = "idemp:map:"
	defaultIdempotencyTTL = 24 * time.Hour
)

// NewRedisClient connects to the configured Redis server.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// RedisIdempotencyStore implements IdempotencyStore with expiring Redis keys.
type RedisIdempotencyStore struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *logging.LoggerV2
}

// NewRedisIdempotencyStore creates a store whose keys expire after ttl.
func NewRedisIdempotencyStore(rdb redis.Cmdable, ttl time.Duration, logger *logging.LoggerV2) *RedisIdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &RedisIdempotencyStore{rdb: rdb, ttl: ttl, logger: logger}
}

func (s *RedisIdempotencyStore) TryLock(ctx context.Context, scope, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, idempotencyLockPrefix+scope+":"+key, "1", s.ttl).Result()
	if err != nil {
		s.logger.Error("Idempotency lock failed", logging.Fields{"key": key, "error": err.Error()})
	}
	return ok, err
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, scope, key string) error {
	return s.rdb.Del(ctx, idempotencyLockPrefix+scope+":"+key).Err()
}

func (s *RedisIdempotencyStore) Remember(ctx context.Context, scope, key, value string) error {
	return s.rdb.Set(ctx, idempotencyMapPrefix+scope+":"+key, value, s.ttl).Err()
}

func (s *RedisIdempotencyStore) Recall(ctx context.Context, scope, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, idempotencyMapPrefix+scope+":"+key).Result()
	if err == redis.Nil {
		s.logger.Debug("Idempotency miss", logging.Fields{"key": key})
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// MemoryIdempotencyStore implements IdempotencyStore in process memory for
// single-instance deployments and tests.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	locks   map[string]time.Time
	results map[string]memoryResult
	ttl     time.Duration
	now     func() time.Time
}

type memoryResult struct {
	value   string
	expires time.Time
}

// NewMemoryIdempotencyStore creates an in-memory store whose keys expire
// after ttl.
func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &MemoryIdempotencyStore{
		locks:   make(map[string]time.Time),
		results: make(map[string]memoryResult),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryIdempotencyStore) TryLock(ctx context.Context, scope, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := scope + ":" + key
	now := s.now()
	if exp, ok := s.locks[k]; ok && now.Before(exp) {
		return false, nil
	}
	s.locks[k] = now.Add(s.ttl)
	return true, nil
}

func (s *MemoryIdempotencyStore) Release(ctx context.Context, scope, key string) error {
	s.mu.Lock()
	delete(s.locks, scope+":"+key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryIdempotencyStore) Remember(ctx context.Context, scope, key, value string) error {
	s.mu.Lock()
	s.results[scope+":"+key] = memoryResult{value: value, expires: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryIdempotencyStore) Recall(ctx context.Context, scope, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := scope + ":" + key
	r, ok := s.results[k]
	if !ok {
		return "", false, nil
	}
	if !s.now().Before(r.expires) {
		delete(s.results, k)
		return "", false, nil
	}
	return r.value, true, nil
}

var (
	_ IdempotencyStore = (*RedisIdempotencyStore)(nil)
	_ IdempotencyStore = (*MemoryIdempotencyStore)(nil)
)
