package cache

import (
	"context"
	"sync"
	"time"

	"storefront-analytics/internal/domain"
	"storefront-analytics/internal/ports"
)

type memoryEntry struct {
	status    domain.SyncStatus
	expiresAt time.Time
}

// MemorySyncStatusStore is the in-process fallback used when no Redis is configured
type MemorySyncStatusStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemorySyncStatusStore() *MemorySyncStatusStore {
	return &MemorySyncStatusStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

var _ ports.SyncStatusStore = (*MemorySyncStatusStore)(nil)

func (s *MemorySyncStatusStore) SaveStatus(_ context.Context, status *domain.SyncStatus, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memoryEntry{status: *status}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.entries[status.StoreID] = entry

	// Drop anything already expired so the map does not grow unbounded
	for id, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, id)
		}
	}
	return nil
}

func (s *MemorySyncStatusStore) GetStatus(_ context.Context, storeID string) (*domain.SyncStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[storeID]
	if !ok || s.expired(entry) {
		return nil, nil
	}
	status := entry.status
	return &status, nil
}

func (s *MemorySyncStatusStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}
