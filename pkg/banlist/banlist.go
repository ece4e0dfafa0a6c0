// Package banlist reads the set of blocked client identifiers. Entries are
// managed by an external administrative process; the gateway only checks
// membership.
package banlist

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store answers whether a client identifier is banned. A non-nil error
// means the underlying store could not be consulted; the caller decides
// the degraded-mode policy (the gateway fails open).
type Store interface {
	IsBanned(ctx context.Context, clientID string) (bool, error)
}

const banSetKey = "banned_ips"

// RedisStore checks membership in a shared Redis set so all gateway
// instances see the same ban list.
type RedisStore struct {
	Client  *redis.Client
	Timeout time.Duration
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{Client: client, Timeout: 2 * time.Second}
}

func (s *RedisStore) IsBanned(ctx context.Context, clientID string) (bool, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return false, nil
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.Client.SIsMember(ctx, banSetKey, clientID).Result()
}

// MemoryStore is a process-local ban list for tests and Redis-less runs.
type MemoryStore struct {
	mu     sync.RWMutex
	banned map[string]struct{}
}

func NewMemory(clientIDs ...string) *MemoryStore {
	m := &MemoryStore{banned: make(map[string]struct{}, len(clientIDs))}
	for _, id := range clientIDs {
		m.Ban(id)
	}
	return m
}

func (m *MemoryStore) Ban(clientID string) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return
	}
	m.mu.Lock()
	m.banned[clientID] = struct{}{}
	m.mu.Unlock()
}

func (m *MemoryStore) Unban(clientID string) {
	m.mu.Lock()
	delete(m.banned, strings.TrimSpace(clientID))
	m.mu.Unlock()
}

func (m *MemoryStore) IsBanned(ctx context.Context, clientID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.banned[strings.TrimSpace(clientID)]
	return ok, nil
}
