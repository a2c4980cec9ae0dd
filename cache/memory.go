package cache

import (
	"strings"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Store. Expired entries are dropped lazily on
// read; DeletePattern walks the key set, which is fine at this scale.
type Memory struct {
	mu    sync.RWMutex
	items map[string]entry

	// now is replaceable in tests
	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		items: make(map[string]entry),
		now:   time.Now,
	}
}

func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if m.now().After(e.expiresAt) {
		m.evictIfExpired(key)
		return nil, false
	}
	return e.value, true
}

// evictIfExpired re-checks expiry under the write lock: a Set racing
// the lock handoff may have refreshed the entry, which must survive.
func (m *Memory) evictIfExpired(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.items[key]; ok && m.now().After(e.expiresAt) {
		delete(m.items, key)
	}
}

func (m *Memory) Set(key string, value []byte, expiration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = entry{value: value, expiresAt: m.now().Add(expiration)}
}

func (m *Memory) Delete(keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.items, key)
	}
}

func (m *Memory) DeletePattern(prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
		}
	}
}
