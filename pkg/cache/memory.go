package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// memoryCache is an LRU cache with TTL, used when Redis is disabled or
// unreachable. Eviction happens on write when MaxEntries is exceeded.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List
	max     int
	done    chan struct{}
	once    sync.Once
}

// NewMemory creates an in-process cache. A background sweeper removes
// expired entries so idle keys do not pin memory.
func NewMemory(cfg MemoryConfig) Service {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 1024
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}

	m := &memoryCache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		max:     cfg.MaxEntries,
		done:    make(chan struct{}),
	}

	go m.sweep(cfg.CleanupInterval)

	return m
}

func (m *memoryCache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			now := time.Now()
			m.mu.Lock()
			for key, el := range m.entries {
				entry := el.Value.(*memoryEntry)
				if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
					m.order.Remove(el)
					delete(m.entries, key)
				}
			}
			m.mu.Unlock()
		}
	}
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	buf := make([]byte, len(value))
	copy(buf, value)

	if el, ok := m.entries[key]; ok {
		entry := el.Value.(*memoryEntry)
		entry.value = buf
		entry.expiresAt = expiresAt
		m.order.MoveToFront(el)
		return nil
	}

	el := m.order.PushFront(&memoryEntry{key: key, value: buf, expiresAt: expiresAt})
	m.entries[key] = el

	for len(m.entries) > m.max {
		oldest := m.order.Back()
		if oldest == nil {
			break
		}
		m.order.Remove(oldest)
		delete(m.entries, oldest.Value.(*memoryEntry).key)
	}

	return nil
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}

	entry := el.Value.(*memoryEntry)
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		m.order.Remove(el)
		delete(m.entries, key)
		return nil, ErrCacheMiss
	}

	m.order.MoveToFront(el)

	buf := make([]byte, len(entry.value))
	copy(buf, entry.value)
	return buf, nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.entries[key]; ok {
		m.order.Remove(el)
		delete(m.entries, key)
	}
	return nil
}

func (m *memoryCache) DeleteByPrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, el := range m.entries {
		if strings.HasPrefix(key, prefix) {
			m.order.Remove(el)
			delete(m.entries, key)
		}
	}
	return nil
}

func (m *memoryCache) Close() error {
	m.once.Do(func() {
		close(m.done)
	})
	return nil
}
