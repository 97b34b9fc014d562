package viewers

import (
	"context"
	"sort"
	"sync"
	"time"
)

// in-process store for tests and local development
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*ViewerSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*ViewerSession)}
}

func (s *MemoryStore) Create(_ context.Context, session *ViewerSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.SessionID] = session.clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*ViewerSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return session.clone(), nil
}

func (s *MemoryStore) Patch(_ context.Context, sessionID string, patch Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}

	if patch.LastSeen != nil {
		session.LastSeen = *patch.LastSeen
	}

	if patch.IsActive != nil {
		session.IsActive = *patch.IsActive
	}

	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

func (s *MemoryStore) CountActive(_ context.Context, productID string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0

	for _, session := range s.sessions {
		if session.ProductID == productID && session.IsActive && session.LastSeen.After(since) {
			count++
		}
	}

	return count, nil
}

func (s *MemoryStore) ListStale(_ context.Context, q StaleQuery) ([]*ViewerSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stale []*ViewerSession

	for _, session := range s.sessions {
		if q.ActiveOnly && !session.IsActive {
			continue
		}

		if session.LastSeen.Before(q.Before) {
			stale = append(stale, session.clone())
		}
	}

	sort.Slice(stale, func(i, j int) bool {
		return stale[i].LastSeen.Before(stale[j].LastSeen)
	})

	if q.Limit > 0 && len(stale) > q.Limit {
		stale = stale[:q.Limit]
	}

	return stale, nil
}

func (s *MemoryStore) Stats(_ context.Context, cutoff time.Time) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{TotalSessions: len(s.sessions)}

	for _, session := range s.sessions {
		if !session.IsActive {
			continue
		}

		switch {
		case session.LastSeen.After(cutoff):
			stats.ActiveSessions++
		case session.LastSeen.Before(cutoff):
			stats.PendingInactive++
		}
	}

	return stats, nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}
