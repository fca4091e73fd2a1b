package memory

import (
	"sync"

	"gameroom-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu      sync.RWMutex
	clients map[string]*app.Client
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		clients: make(map[string]*app.Client),
	}
}

// GetOrCreate returns the client for connID, inserting a fresh one on first touch.
func (s *SessionStore) GetOrCreate(connID string) (*app.Client, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if client, ok := s.clients[connID]; ok {
		return client, false
	}
	client := app.NewClient(connID)
	s.clients[connID] = client
	return client, true
}

func (s *SessionStore) Get(connID string) (*app.Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	client, ok := s.clients[connID]
	return client, ok
}

// Remove is a no-op for unknown ids.
func (s *SessionStore) Remove(connID string) {
	s.mu.Lock()
	delete(s.clients, connID)
	s.mu.Unlock()
}

func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
