// Package session tracks issued session ids so logout can revoke a token before it expires.
package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned for unknown, expired or revoked sessions.
var ErrNotFound = errors.New("session: not found")

// Store records live sessions.
type Store interface {
	// Create registers a new session for userID and returns its id.
	Create(ctx context.Context, userID uint64, ttl time.Duration) (string, error)
	// Lookup returns the user owning a live session.
	Lookup(ctx context.Context, sessionID string) (uint64, error)
	// Revoke deletes a session. Revoking an unknown session is not an error.
	Revoke(ctx context.Context, sessionID string) error
}

// NewID returns a random session id.
func NewID() string {
	return uuid.NewString()
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

type memoryEntry struct {
	userID    uint64
	expiresAt time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memoryEntry), now: time.Now}
}

// Create registers a session.
func (s *MemoryStore) Create(ctx context.Context, userID uint64, ttl time.Duration) (string, error) {
	id := NewID()
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key, entry := range s.sessions {
		if !entry.expiresAt.After(now) {
			delete(s.sessions, key)
		}
	}
	s.sessions[id] = memoryEntry{userID: userID, expiresAt: now.Add(ttl)}
	return id, nil
}

// Lookup returns the session owner.
func (s *MemoryStore) Lookup(ctx context.Context, sessionID string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[sessionID]
	if !ok || !entry.expiresAt.After(s.now()) {
		return 0, ErrNotFound
	}
	return entry.userID, nil
}

// Revoke deletes a session.
func (s *MemoryStore) Revoke(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// RedisStore keeps sessions in redis with native expiry.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore builds a redis-backed store; keys are namespaced with prefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Create registers a session.
func (s *RedisStore) Create(ctx context.Context, userID uint64, ttl time.Duration) (string, error) {
	id := NewID()
	if err := s.client.Set(ctx, s.prefix+id, strconv.FormatUint(userID, 10), ttl).Err(); err != nil {
		return "", err
	}
	return id, nil
}

// Lookup returns the session owner.
func (s *RedisStore) Lookup(ctx context.Context, sessionID string) (uint64, error) {
	raw, err := s.client.Get(ctx, s.prefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	userID, errParse := strconv.ParseUint(raw, 10, 64)
	if errParse != nil {
		return 0, ErrNotFound
	}
	return userID, nil
}

// Revoke deletes a session.
func (s *RedisStore) Revoke(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.prefix+sessionID).Err()
}
