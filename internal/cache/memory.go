package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMemoryCapacity = 10_000

type MemoryProvider struct {
	mu    sync.Mutex
	cache *lru.Cache[string, entry]
	now   func() time.Time
}

type entry struct {
	value     string
	expiresAt time.Time
}

func NewMemoryProvider(capacity int) (*MemoryProvider, error) {
	if capacity <= 0 {
		capacity = defaultMemoryCapacity
	}
	c, err := lru.New[string, entry](capacity)
	if err != nil {
		return nil, err
	}
	return &MemoryProvider{cache: c, now: time.Now}, nil
}

// live returns the entry for key, dropping it when expired. Callers hold mu.
func (m *MemoryProvider) live(key string) (entry, bool) {
	cached, ok := m.cache.Get(key)
	if !ok {
		return entry{}, false
	}
	if !m.now().Before(cached.expiresAt) {
		m.cache.Remove(key)
		return entry{}, false
	}
	return cached, true
}

func (m *MemoryProvider) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cached, ok := m.live(key)
	if !ok {
		return "", ErrNotFound
	}
	return cached.value, nil
}

func (m *MemoryProvider) SetIfAbsent(_ context.Context, key string, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.live(key); ok {
		return false, nil
	}
	m.cache.Add(key, entry{value: value, expiresAt: m.now().Add(ttl)})
	return true, nil
}

func (m *MemoryProvider) Close() error {
	m.cache.Purge()
	return nil
}
