package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type session struct {
	recent     []string
	lastIntent string
	hasIntent  bool
}

// MemoryStore keeps conversation memory in process. Sessions expire after
// the TTL and the least recently used ones are dropped past maxSessions.
type MemoryStore struct {
	mu        sync.Mutex
	sessions  *expirable.LRU[string, *session]
	maxRecent int
}

func NewMemoryStore(maxRecent, maxSessions int, ttl time.Duration) *MemoryStore {
	if maxRecent <= 0 {
		maxRecent = 3
	}
	if maxSessions <= 0 {
		maxSessions = 10000
	}
	return &MemoryStore{
		sessions:  expirable.NewLRU[string, *session](maxSessions, nil, ttl),
		maxRecent: maxRecent,
	}
}

func (s *MemoryStore) RecentQueries(_ context.Context, sessionID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil
	}
	out := make([]string, len(sess.recent))
	copy(out, sess.recent)
	return out, nil
}

func (s *MemoryStore) AppendQuery(_ context.Context, sessionID, query string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getOrCreate(sessionID)
	sess.recent = append(sess.recent, query)
	if over := len(sess.recent) - s.maxRecent; over > 0 {
		sess.recent = append([]string(nil), sess.recent[over:]...)
	}
	return nil
}

func (s *MemoryStore) LastIntent(_ context.Context, sessionID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions.Get(sessionID)
	if !ok || !sess.hasIntent {
		return "", false, nil
	}
	return sess.lastIntent, true, nil
}

func (s *MemoryStore) SetLastIntent(_ context.Context, sessionID, intent string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getOrCreate(sessionID)
	sess.lastIntent = intent
	sess.hasIntent = true
	return nil
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	return s.sessions.Len()
}

// getOrCreate must be called with mu held. Add refreshes the session TTL.
func (s *MemoryStore) getOrCreate(sessionID string) *session {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		sess = &session{}
	}
	s.sessions.Add(sessionID, sess)
	return sess
}
