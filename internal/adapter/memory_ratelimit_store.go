package adapter

import (
	"context"
	"sync"
	"time"

	"franklin/internal/domain"
)

// MemoryRateLimitStore is a process-local domain.RateLimitStore. State resets
// on restart and entries are never evicted; an expired window is reset by the
// next hit for that client.
type MemoryRateLimitStore struct {
	mu      sync.Mutex
	entries map[string]*domain.RateLimitEntry
}

func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{entries: make(map[string]*domain.RateLimitEntry)}
}

// Hit implements domain.RateLimitStore.
func (m *MemoryRateLimitStore) Hit(_ context.Context, clientKey string, window time.Duration, now time.Time) (domain.RateLimitEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[clientKey]
	if !ok {
		entry = &domain.RateLimitEntry{ClientKey: clientKey, WindowStart: now}
		m.entries[clientKey] = entry
	}
	if now.Sub(entry.WindowStart) >= window {
		entry.Count = 0
		entry.WindowStart = now
	}
	entry.Count++

	return *entry, nil
}

// Reset drops all usage. Tests use it to start from a clean table.
func (m *MemoryRateLimitStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*domain.RateLimitEntry)
}

// Len returns the number of tracked clients.
func (m *MemoryRateLimitStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

var _ domain.RateLimitStore = (*MemoryRateLimitStore)(nil)
