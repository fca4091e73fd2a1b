// Package game holds the per-session game state machines.
package game

import "sync"

// Game is the capability shared by every game a client can own.
type Game interface {
	Question() (string, bool)
	AnswerText() string
	Score() int
	ScoreIncrement()
	ScoreDecrement()
}

// scoreboard keeps the score for a single owner. Score never drops below zero.
type scoreboard struct {
	mu    sync.Mutex
	score int
}

func (s *scoreboard) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

func (s *scoreboard) ScoreIncrement() {
	s.mu.Lock()
	s.score++
	s.mu.Unlock()
}

func (s *scoreboard) ScoreDecrement() {
	s.mu.Lock()
	if s.score > 0 {
		s.score--
	}
	s.mu.Unlock()
}
