package idempotency

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	entry     Entry
	expiresAt time.Time
}

type InMemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{items: make(map[string]memoryItem)}
}

func (s *InMemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	normalized, err := NormalizeKey(key)
	if err != nil {
		return Entry{}, false, err
	}

	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[normalized]
	if !ok {
		return Entry{}, false, nil
	}
	if !item.expiresAt.IsZero() && now.After(item.expiresAt) {
		delete(s.items, normalized)
		return Entry{}, false, nil
	}

	entry := item.entry
	entry.Body = append([]byte(nil), entry.Body...)
	return entry, true, nil
}

func (s *InMemoryStore) Save(_ context.Context, key string, entry Entry, ttl time.Duration) error {
	normalized, err := NormalizeKey(key)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	cloned := entry
	cloned.Body = append([]byte(nil), entry.Body...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[normalized] = memoryItem{
		entry:     cloned,
		expiresAt: time.Now().UTC().Add(ttl),
	}
	return nil
}
