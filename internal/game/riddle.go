package game

import (
	"sync"

	"gameroom-service/internal/domain"
)

// RiddleState is the lifecycle stage of a Riddle.
type RiddleState int

const (
	RiddleFresh RiddleState = iota
	RiddleInProgress
	RiddleExhausted
)

func (s RiddleState) String() string {
	switch s {
	case RiddleFresh:
		return "fresh"
	case RiddleInProgress:
		return "in_progress"
	case RiddleExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// DefaultRiddles is the static pool every new Riddle draws from.
func DefaultRiddles() []domain.RiddlePair {
	return []domain.RiddlePair{
		{Question: "Висит груша нельзя скушать?", Answer: "лампочка"},
		{Question: "Зимой и летом одним цветом", Answer: "Ёлка"},
	}
}

// Riddle is a single-player question/answer game. The backlog is copied
// from the pool on first use and consumed from the end.
type Riddle struct {
	scoreboard

	mu      sync.Mutex
	pool    []domain.RiddlePair
	backlog []domain.RiddlePair
	current *domain.RiddlePair
	state   RiddleState
}

// NewRiddle builds a riddle game over pool. The pool is copied.
func NewRiddle(pool []domain.RiddlePair) *Riddle {
	return &Riddle{pool: append([]domain.RiddlePair(nil), pool...)}
}

// NextQuestion pops the next riddle. When the backlog is empty the current
// question and answer become absent and the game is exhausted.
func (r *Riddle) NextQuestion() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == RiddleFresh {
		r.backlog = append(r.backlog, r.pool...)
		r.state = RiddleInProgress
	}
	if len(r.backlog) == 0 {
		r.current = nil
		r.state = RiddleExhausted
		return
	}
	last := r.backlog[len(r.backlog)-1]
	r.backlog = r.backlog[:len(r.backlog)-1]
	r.current = &last
	r.state = RiddleInProgress
}

// Recreate appends the full pool to the remaining backlog. Score is kept.
func (r *Riddle) Recreate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backlog = append(r.backlog, r.pool...)
	r.state = RiddleInProgress
}

func (r *Riddle) Question() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return "", false
	}
	return r.current.Question, true
}

// Answer returns the answer of the current riddle, if any.
func (r *Riddle) Answer() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return "", false
	}
	return r.current.Answer, true
}

func (r *Riddle) AnswerText() string {
	answer, _ := r.Answer()
	return answer
}

// Remaining is the number of riddles left in the backlog.
func (r *Riddle) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.backlog)
}

func (r *Riddle) State() RiddleState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}
