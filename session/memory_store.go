package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a thread-safe in-memory session store. Expiry is enforced
// lazily on Get; a background sweep only reclaims memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]Session),
	}
	go s.cleanupLoop()
	return s
}

// Create stores a session under its ID.
func (s *MemoryStore) Create(_ context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = sess
	return nil
}

// Get retrieves a live session by ID. Expired or unknown sessions read as
// (nil, nil).
func (s *MemoryStore) Get(_ context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, found := s.sessions[sessionID]
	if !found || sess.Expired() {
		return nil, nil
	}
	return &sess, nil
}

// Delete removes a session. Deleting an absent session is a no-op.
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

// cleanup removes expired entries.
func (s *MemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		if sess.Expired() {
			delete(s.sessions, id)
		}
	}
}

// cleanupLoop runs periodic cleanup of expired entries.
func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.cleanup()
	}
}
