package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type entry struct {
	expiresAt time.Time
	page      *Page
	key       string
}

// Memory is an in-process page store with TTL expiry and optional LRU
// eviction. Expired entries are dropped when touched or when room is needed.
type Memory struct {
	items      map[string]*list.Element
	lru        *list.List
	now        func() time.Time
	defaultTTL time.Duration
	maxEntries int
	mu         sync.Mutex
}

// MemoryOption configures Memory.
type MemoryOption func(*Memory)

// WithDefaultTTL sets the TTL used when Set is given zero.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(m *Memory) {
		m.defaultTTL = d
	}
}

// WithMaxEntries caps the number of pages; the least recently used page is
// evicted first. Zero means unlimited.
func WithMaxEntries(n int) MemoryOption {
	return func(m *Memory) {
		m.maxEntries = n
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemory creates an empty in-memory store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		items:      make(map[string]*list.Element),
		lru:        list.New(),
		now:        time.Now,
		defaultTTL: DefaultTTL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key string) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	e := elem.Value.(*entry)
	if !m.now().Before(e.expiresAt) {
		m.remove(elem)
		return nil, ErrNotFound
	}
	m.lru.MoveToFront(elem)
	return e.page, nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, key string, page *Page, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiresAt := m.now().Add(resolveTTL(ttl, m.defaultTTL))
	if elem, ok := m.items[key]; ok {
		e := elem.Value.(*entry)
		e.page = page
		e.expiresAt = expiresAt
		m.lru.MoveToFront(elem)
		return nil
	}

	if m.maxEntries > 0 && len(m.items) >= m.maxEntries {
		m.evict()
	}
	m.items[key] = m.lru.PushFront(&entry{key: key, page: page, expiresAt: expiresAt})
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, ok := m.items[key]; ok {
		m.remove(elem)
	}
	return nil
}

// Len returns the number of stored pages, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// evict drops expired pages, or the least recently used one when none has
// expired. Caller holds the mutex.
func (m *Memory) evict() {
	now := m.now()
	removed := false
	for elem := m.lru.Back(); elem != nil; {
		prev := elem.Prev()
		if !now.Before(elem.Value.(*entry).expiresAt) {
			m.remove(elem)
			removed = true
		}
		elem = prev
	}
	if !removed {
		if back := m.lru.Back(); back != nil {
			m.remove(back)
		}
	}
}

func (m *Memory) remove(elem *list.Element) {
	m.lru.Remove(elem)
	delete(m.items, elem.Value.(*entry).key)
}

var _ Store = (*Memory)(nil)
