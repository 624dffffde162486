package session

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryStore keeps sessions in process. The least recently used session is
// evicted once maxSessions is reached.
type MemoryStore struct {
	cache *lru.LRU[string, *Session]
}

// NewMemoryStore creates an in-memory store whose entries expire after ttl
func NewMemoryStore(maxSessions int, ttl time.Duration) *MemoryStore {
	if maxSessions <= 0 {
		maxSessions = 10000
	}
	return &MemoryStore{
		cache: lru.NewLRU[string, *Session](maxSessions, nil, ttl),
	}
}

// Save implements Store
func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	copied := *s
	m.cache.Add(s.ID, &copied)
	return nil
}

// Get implements Store
func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s, ok := m.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	copied := *s
	return &copied, nil
}

// Delete implements Store
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.cache.Remove(id)
	return nil
}

// Len returns the number of cached sessions
func (m *MemoryStore) Len() int {
	return m.cache.Len()
}
