package cache

import (
	"strings"
	"sync"
	"time"
)

// Store is the response-cache abstraction injected into services. The
// default backend is process-local memory; a shared store can be swapped
// in for multi-instance deployments without touching the handlers.
type Store interface {
	// Get returns the cached payload if the entry exists and was
	// captured less than ttl ago.
	Get(key string, ttl time.Duration) ([]byte, bool)
	Set(key string, data []byte)
	Delete(key string)
	// DeletePrefix removes every entry whose key starts with prefix.
	// Used to invalidate all cached listings of an entity on write.
	DeletePrefix(prefix string)
	Clear()
	Len() int
}

// Route TTLs. Listings refresh every few minutes; featured and team
// content changes rarely and tolerates longer staleness.
const (
	ListingTTL  = 5 * time.Minute
	FeaturedTTL = 10 * time.Minute
	TeamTTL     = 20 * time.Minute
)

// DefaultMaxEntries bounds the in-memory store before oldest-entry eviction.
const DefaultMaxEntries = 100

type entry struct {
	data       []byte
	capturedAt time.Time
}

// Memory is a mutex-guarded in-memory Store. Eviction is by insertion
// order (oldest entry first), not by recency of access.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]*entry
	order      []string
	maxEntries int
	now        func() time.Time
}

// NewMemory creates an in-memory store holding at most maxEntries entries.
func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Memory{
		entries:    make(map[string]*entry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get implements Store
func (m *Memory) Get(key string, ttl time.Duration) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.now().Sub(e.capturedAt) >= ttl {
		m.removeLocked(key)
		return nil, false
	}
	return e.data, true
}

// Set implements Store. Re-setting an existing key counts as a fresh
// insertion for eviction ordering.
func (m *Memory) Set(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; ok {
		m.removeLocked(key)
	}
	if len(m.entries) >= m.maxEntries && len(m.order) > 0 {
		m.removeLocked(m.order[0])
	}
	m.entries[key] = &entry{data: data, capturedAt: m.now()}
	m.order = append(m.order, key)
}

// Delete implements Store
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(key)
}

// DeletePrefix implements Store
func (m *Memory) DeletePrefix(prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			m.removeLocked(key)
		}
	}
}

// Clear implements Store
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*entry)
	m.order = m.order[:0]
}

// Len implements Store
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) removeLocked(key string) {
	if _, ok := m.entries[key]; !ok {
		return
	}
	delete(m.entries, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Key builds a deterministic cache key from a route prefix and the
// ordered serialization of the effective request parameters.
func Key(prefix string, parts ...string) string {
	if len(parts) == 0 {
		return prefix
	}
	return prefix + ":" + strings.Join(parts, "|")
}
