package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

type entry struct {
	value     json.RawMessage
	expiresAt time.Time
}

// Memory is an in-process TTL cache. Values are stored in marshaled form so
// callers never share mutable state through the cache.
type Memory struct {
	clock   clockwork.Clock
	mu      sync.RWMutex
	entries map[string]entry
}

// NewMemory creates an empty in-memory cache. Pass nil to use the real clock.
func NewMemory(clock clockwork.Clock) *Memory {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Memory{
		clock:   clock,
		entries: make(map[string]entry),
	}
}

func (m *Memory) Get(_ context.Context, key string) (json.RawMessage, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || !m.clock.Now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value %q: %w", key, err)
	}
	e := entry{value: data, expiresAt: m.clock.Now().Add(effectiveTTL(ttl))}

	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func effectiveTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return domain.DefaultCacheTTL
	}
	return ttl
}
