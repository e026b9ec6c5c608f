package sessions

import (
	"context"
	"sync"
)

// MemoryStore is the in-process implementation, used by tests and the
// CLI. cookie maps are copied on the way in and out so callers cannot
// mutate stored state behind the lock.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: map[string]map[string]string{},
	}
}

func copyCookies(cookies map[string]string) map[string]string {
	out := make(map[string]string, len(cookies))
	for k, v := range cookies {
		out[k] = v
	}
	return out
}

func (s *MemoryStore) GetSession(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cookies, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return &Session{Id: id, Cookies: copyCookies(cookies)}, nil
}

func (s *MemoryStore) CreateSession(ctx context.Context, id string, cookies map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = copyCookies(cookies)
	return nil
}

func (s *MemoryStore) UpdateSessionCookies(ctx context.Context, id string, cookies map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = copyCookies(cookies)
	return nil
}
