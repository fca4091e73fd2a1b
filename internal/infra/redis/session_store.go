package redis

import (
	"context"
	"sync"
	"time"

	"gameroom-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Clients live in a local map; Redis only carries a presence marker per
// connection so operators can see who is online.
type SessionStore struct {
	client  *redis.Client
	ttl     time.Duration
	prefix  string
	mu      sync.RWMutex
	clients map[string]*app.Client
}

// markerTimeout bounds each presence marker round-trip.
const markerTimeout = time.Second

func NewSessionStore(client *redis.Client, ttl time.Duration, namespace string) *SessionStore {
	return &SessionStore{
		client:  client,
		ttl:     ttl,
		prefix:  "session:" + namespace + ":",
		clients: make(map[string]*app.Client),
	}
}

func (s *SessionStore) GetOrCreate(connID string) (*app.Client, bool) {
	s.mu.Lock()
	if client, ok := s.clients[connID]; ok {
		s.mu.Unlock()
		return client, false
	}
	client := app.NewClient(connID)
	s.clients[connID] = client
	s.mu.Unlock()

	// best-effort presence marker, written outside the lock
	ctx, cancel := context.WithTimeout(context.Background(), markerTimeout)
	defer cancel()
	_ = s.client.Set(ctx, s.key(connID), client.ConnectedAt().Unix(), s.ttl).Err()
	return client, true
}

func (s *SessionStore) Get(connID string) (*app.Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	client, ok := s.clients[connID]
	return client, ok
}

func (s *SessionStore) Remove(connID string) {
	s.mu.Lock()
	if _, ok := s.clients[connID]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.clients, connID)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), markerTimeout)
	defer cancel()
	_ = s.client.Del(ctx, s.key(connID)).Err()
}

func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *SessionStore) key(connID string) string {
	return s.prefix + connID
}
