package chat

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/siadai/siadchat/internal/fetch"
	"github.com/siadai/siadchat/internal/observability"
)

var ErrSessionNotFound = errors.New("session not found")

// Store keeps sessions in memory for the lifetime of the process.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{sessions: map[string]*Session{}, now: time.Now}
}

// Create registers a new session for identity under a fresh id.
func (s *Store) Create(identity fetch.Identity) *Session {
	session := newSession(uuid.NewString(), identity, s.now)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
	observability.SetActiveSessions(len(s.sessions))
	return session
}

func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Delete ends a session and drops its table and history.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	observability.SetActiveSessions(len(s.sessions))
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
