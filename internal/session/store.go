package session

import (
	"errors"
	"sync"
)

var ErrSessionNotFound = errors.New("session not found")

// Store holds session state keyed by token.
type Store interface {
	Get(token string) (State, error)
	Set(token string, st State) error
	Destroy(token string) error
}

// MemoryStore is the in-process default. State is lost on restart; the
// Postgres store covers deployments that need sessions to survive one.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]State)}
}

func (s *MemoryStore) Get(token string) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.sessions[token]
	if !ok {
		return State{}, ErrSessionNotFound
	}
	return st, nil
}

func (s *MemoryStore) Set(token string, st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = st
	return nil
}

func (s *MemoryStore) Destroy(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
