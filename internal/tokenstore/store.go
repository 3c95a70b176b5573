// Package tokenstore holds refresh-session state and the token revocation
// blacklist in a fast key-value store with TTL expiry. The Redis-backed
// implementation is used in production; outside production an unreachable
// Redis degrades to the in-memory implementation, selected once at startup.
package tokenstore

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type Store interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	SaveSession(ctx context.Context, sessionID string, userID uint, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID string) (uint, bool, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]memoryEntry)}
}

func (s *InMemoryStore) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.set("blacklist:"+jti, "1", ttl)
	return nil
}

func (s *InMemoryStore) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := s.get("blacklist:" + jti)
	return ok, nil
}

func (s *InMemoryStore) SaveSession(_ context.Context, sessionID string, userID uint, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.set("session:"+sessionID, strconv.FormatUint(uint64(userID), 10), ttl)
	return nil
}

func (s *InMemoryStore) GetSession(_ context.Context, sessionID string) (uint, bool, error) {
	v, ok := s.get("session:" + sessionID)
	if !ok {
		return 0, false, nil
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return uint(id), true, nil
}

func (s *InMemoryStore) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, "session:"+sessionID)
	return nil
}

func (s *InMemoryStore) set(key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{value: value, expiresAt: time.Now().UTC().Add(ttl)}
}

func (s *InMemoryStore) get(key string) (string, bool) {
	now := time.Now().UTC()
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return "", false
	}
	if now.After(e.expiresAt) {
		s.mu.Lock()
		if cur, ok2 := s.entries[key]; ok2 && now.After(cur.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return "", false
	}
	return e.value, true
}
