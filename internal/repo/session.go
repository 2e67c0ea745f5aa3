package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionBinding associates a session with the room it currently occupies.
type SessionBinding struct {
	RoomCode    string `json:"roomCode"`
	DisplayName string `json:"displayName"`
}

type SessionStore interface {
	Get(ctx context.Context, sessionID string) (SessionBinding, bool, error)
	Set(ctx context.Context, sessionID string, binding SessionBinding) error
	Delete(ctx context.Context, sessionID string) error
}

type MemorySessionStore struct {
	mu       sync.RWMutex
	bindings map[string]SessionBinding
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{bindings: make(map[string]SessionBinding)}
}

func (m *MemorySessionStore) Get(_ context.Context, sessionID string) (SessionBinding, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bindings[sessionID]
	return b, ok, nil
}

func (m *MemorySessionStore) Set(_ context.Context, sessionID string, binding SessionBinding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindings[sessionID] = binding
	return nil
}

func (m *MemorySessionStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bindings, sessionID)
	return nil
}

// RedisSessionStore keeps bindings as JSON under session:<id> with a TTL.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

// Get slides the TTL forward, so a binding lives as long as its player keeps
// sending intents.
func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (SessionBinding, bool, error) {
	var b SessionBinding
	data, err := s.rdb.GetEx(ctx, buildSessionKey(sessionID), s.ttl).Result()
	if err != nil {
		if err == redis.Nil {
			return b, false, nil
		}
		return b, false, err
	}
	if err := json.Unmarshal([]byte(data), &b); err != nil {
		return b, false, err
	}
	return b, true, nil
}

func (s *RedisSessionStore) Set(ctx context.Context, sessionID string, binding SessionBinding) error {
	data, err := json.Marshal(binding)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, buildSessionKey(sessionID), data, s.ttl).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, buildSessionKey(sessionID)).Err()
}

func buildSessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}
