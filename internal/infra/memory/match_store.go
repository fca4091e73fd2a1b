package memory

import (
	"sync"

	"gameroom-service/internal/game"
)

// MatchStore is an in-memory implementation of app.MatchRepository.
type MatchStore struct {
	mu      sync.RWMutex
	matches map[string]*game.TriviaMatch
}

func NewMatchStore() *MatchStore {
	return &MatchStore{matches: make(map[string]*game.TriviaMatch)}
}

func (s *MatchStore) GetOrCreate(matchID string) (*game.TriviaMatch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if match, ok := s.matches[matchID]; ok {
		return match, false
	}
	match := game.NewTriviaMatch(matchID)
	s.matches[matchID] = match
	return match, true
}

func (s *MatchStore) Get(matchID string) (*game.TriviaMatch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	match, ok := s.matches[matchID]
	return match, ok
}

func (s *MatchStore) Remove(matchID string) {
	s.mu.Lock()
	delete(s.matches, matchID)
	s.mu.Unlock()
}

func (s *MatchStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}
