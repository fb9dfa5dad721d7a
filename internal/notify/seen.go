package notify

import (
	"context"
	"sync"
)

// SeenStore remembers which notification ids were already dispatched, so
// a poll result that duplicates a live message event produces nothing.
type SeenStore interface {
	// MarkIfNew records the id and reports whether it was unseen.
	MarkIfNew(ctx context.Context, id string) (bool, error)
}

const memorySeenCap = 4096

// MemorySeenStore is the in-process fallback used when no Redis is
// configured. Dedupe then only holds for the lifetime of the session.
type MemorySeenStore struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
}

func NewMemorySeenStore() *MemorySeenStore {
	return &MemorySeenStore{seen: make(map[string]struct{})}
}

func (s *MemorySeenStore) MarkIfNew(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[id]; ok {
		return false, nil
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
	if len(s.order) > memorySeenCap {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.seen, oldest)
	}
	return true, nil
}
