package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"tellweb/internal/models"
)

var ErrSessionNotFound = models.ErrSessionNotFound

// SessionStore holds login state between requests. Set on a successful code
// exchange, cleared on logout or when the platform answers 401. Handlers get
// the store injected; nothing reaches for ambient global state.
type SessionStore interface {
	Get(ctx context.Context, id string) (models.Session, error)
	Set(ctx context.Context, session models.Session, ttl time.Duration) error
	Clear(ctx context.Context, id string) error
}

// ------- Redis -------

type RedisSessionStore struct {
	RDB *redis.Client
}

func sessionKey(id string) string {
	return "session:" + id
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (models.Session, error) {
	raw, err := s.RDB.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("get session: %w", err)
	}
	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return models.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

func (s *RedisSessionStore) Set(ctx context.Context, session models.Session, ttl time.Duration) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.RDB.Set(ctx, sessionKey(session.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Clear(ctx context.Context, id string) error {
	if err := s.RDB.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// ------- In-memory (dev without Redis, tests) -------

type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
}

type memorySession struct {
	session models.Session
	expires time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]memorySession)}
}

func (s *MemorySessionStore) Get(ctx context.Context, id string) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}
	if !entry.expires.IsZero() && time.Now().After(entry.expires) {
		delete(s.sessions, id)
		return models.Session{}, ErrSessionNotFound
	}
	return entry.session, nil
}

func (s *MemorySessionStore) Set(ctx context.Context, session models.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	s.sessions[session.ID] = memorySession{session: session, expires: expires}
	return nil
}

func (s *MemorySessionStore) Clear(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
