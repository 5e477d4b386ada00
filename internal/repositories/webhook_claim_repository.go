package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClaimStore dedups webhook deliveries. The payment processor delivers
// at-least-once: a claim is taken before the backend call and released again
// if that call fails, so the processor's own redelivery can retry the work
// while a completed event stays a no-op.
//
// The platform backend dedups by order id as well; this store just keeps
// redundant license calls from leaving this service in the common case.
type ClaimStore interface {
	// Claim returns true if the key was free and is now held by this caller.
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// ------- Redis -------

type RedisClaimStore struct {
	RDB *redis.Client
	TTL time.Duration
}

func claimKey(key string) string {
	return "webhook:claim:" + key
}

func (s *RedisClaimStore) Claim(ctx context.Context, key string) (bool, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	ok, err := s.RDB.SetNX(ctx, claimKey(key), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", key, err)
	}
	return ok, nil
}

func (s *RedisClaimStore) Release(ctx context.Context, key string) error {
	if err := s.RDB.Del(ctx, claimKey(key)).Err(); err != nil {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}

// ------- In-memory (dev without Redis, tests) -------

type MemoryClaimStore struct {
	mu     sync.Mutex
	claims map[string]struct{}
}

func NewMemoryClaimStore() *MemoryClaimStore {
	return &MemoryClaimStore{claims: make(map[string]struct{})}
}

func (s *MemoryClaimStore) Claim(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, held := s.claims[key]; held {
		return false, nil
	}
	s.claims[key] = struct{}{}
	return true, nil
}

func (s *MemoryClaimStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claims, key)
	return nil
}
