package lease

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	owner     string
	expiresAt time.Time
}

type InMemoryManager struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

func NewInMemoryManager() *InMemoryManager {
	return &InMemoryManager{entries: make(map[string]memoryEntry)}
}

func (m *InMemoryManager) Acquire(_ context.Context, resource, owner string, ttl time.Duration) (bool, error) {
	resource = strings.TrimSpace(resource)
	owner = strings.TrimSpace(owner)
	if resource == "" {
		return false, errors.New("resource is required")
	}
	if owner == "" {
		return false, errors.New("owner is required")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	now := time.Now().UTC()
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.entries[resource]; ok && now.Before(existing.expiresAt) && existing.owner != owner {
		return false, nil
	}
	m.entries[resource] = memoryEntry{owner: owner, expiresAt: now.Add(ttl)}
	return true, nil
}

func (m *InMemoryManager) Release(_ context.Context, resource, owner string) error {
	resource = strings.TrimSpace(resource)
	owner = strings.TrimSpace(owner)
	if resource == "" || owner == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.entries[resource]; ok && existing.owner == owner {
		delete(m.entries, resource)
	}
	return nil
}
