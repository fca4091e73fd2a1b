package game

import (
	"strconv"
	"sync"

	"gameroom-service/internal/domain"
)

// MatchState is the lifecycle stage of a TriviaMatch.
type MatchState int

const (
	MatchCreated MatchState = iota
	MatchLoaded
	MatchQuestionActive
	MatchRoundComplete
	MatchOver
)

func (s MatchState) String() string {
	switch s {
	case MatchCreated:
		return "created"
	case MatchLoaded:
		return "loaded"
	case MatchQuestionActive:
		return "question_active"
	case MatchRoundComplete:
		return "round_complete"
	case MatchOver:
		return "over"
	default:
		return "unknown"
	}
}

// PlayersPerMatch is the number of distinct answers that completes a round.
const PlayersPerMatch = 2

// TriviaMatch is a two-player synchronized trivia game. It also serves as the
// personal scorekeeping game of a trivia client.
type TriviaMatch struct {
	scoreboard

	mu      sync.Mutex
	id      string
	topic   string
	players []string
	backlog map[string][]domain.Question
	current *domain.Question
	answers []domain.RoundAnswer
	state   MatchState
}

// NewTriviaMatch creates an empty match with the given id.
func NewTriviaMatch(id string) *TriviaMatch {
	return &TriviaMatch{
		id:      id,
		backlog: make(map[string][]domain.Question),
	}
}

func (m *TriviaMatch) ID() string { return m.id }

// AddPlayer appends a participant; repeated ids and a third participant are ignored.
func (m *TriviaMatch) AddPlayer(connID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.players) >= PlayersPerMatch {
		return false
	}
	for _, p := range m.players {
		if p == connID {
			return false
		}
	}
	m.players = append(m.players, connID)
	return true
}

// Players returns the participant ids in join order.
func (m *TriviaMatch) Players() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.players...)
}

// HasPlayer reports whether connID participates in the match.
func (m *TriviaMatch) HasPlayer(connID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.players {
		if p == connID {
			return true
		}
	}
	return false
}

// SetTopic assigns the topic once; later calls are ignored.
func (m *TriviaMatch) SetTopic(topic string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.topic != "" {
		return
	}
	m.topic = topic
	if m.state == MatchCreated {
		m.state = MatchLoaded
	}
}

func (m *TriviaMatch) Topic() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.topic
}

// LoadQuestions appends questions to the per-topic backlog. Loading the same
// rows twice accumulates duplicates.
func (m *TriviaMatch) LoadQuestions(questions []domain.Question) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range questions {
		q.Options = append([]string(nil), q.Options...)
		m.backlog[q.Topic] = append(m.backlog[q.Topic], q)
	}
}

// RemainingQuestions counts the questions left for topic. Unknown topics have
// none; an empty topic is a caller error.
func (m *TriviaMatch) RemainingQuestions(topic string) (int, error) {
	if topic == "" {
		return 0, domain.ErrMissingTopic
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.backlog[topic]), nil
}

// NextQuestion pops the last loaded question for topic and opens a new round.
// An empty backlog leaves question, answer and options absent.
func (m *TriviaMatch) NextQuestion(topic string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.answers = m.answers[:0]
	queue := m.backlog[topic]
	if len(queue) == 0 {
		m.current = nil
		return
	}
	last := queue[len(queue)-1]
	m.backlog[topic] = queue[:len(queue)-1]
	m.current = &last
	m.state = MatchQuestionActive
}

func (m *TriviaMatch) Question() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return "", false
	}
	return m.current.Text, true
}

// Answer is the correct option index of the active question.
func (m *TriviaMatch) Answer() (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return 0, false
	}
	return m.current.Answer, true
}

func (m *TriviaMatch) AnswerText() string {
	answer, ok := m.Answer()
	if !ok {
		return ""
	}
	return strconv.Itoa(answer)
}

// Options of the active question.
func (m *TriviaMatch) Options() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	return append([]string(nil), m.current.Options...)
}

// AddAnswer records a submission for the active round. It reports false when
// the submitter already answered, is not a participant, or the round is
// already complete.
func (m *TriviaMatch) AddAnswer(connID string, optionIndex int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != MatchQuestionActive {
		return false
	}
	participant := false
	for _, p := range m.players {
		if p == connID {
			participant = true
			break
		}
	}
	if !participant {
		return false
	}
	for _, a := range m.answers {
		if a.ConnID == connID {
			return false
		}
	}
	m.answers = append(m.answers, domain.RoundAnswer{ConnID: connID, OptionIndex: optionIndex})
	if len(m.answers) == PlayersPerMatch {
		m.state = MatchRoundComplete
	}
	return true
}

// Answers returns a copy of the round's submissions.
func (m *TriviaMatch) Answers() []domain.RoundAnswer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.RoundAnswer(nil), m.answers...)
}

// ClearAnswers empties the round-scoped answer list.
func (m *TriviaMatch) ClearAnswers() {
	m.mu.Lock()
	m.answers = m.answers[:0]
	m.mu.Unlock()
}

// RoundComplete reports whether every participant answered the active question.
func (m *TriviaMatch) RoundComplete() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == MatchRoundComplete
}

// Finish marks the match terminal. No further answers are accepted.
func (m *TriviaMatch) Finish() {
	m.mu.Lock()
	m.state = MatchOver
	m.current = nil
	m.answers = m.answers[:0]
	m.mu.Unlock()
}

func (m *TriviaMatch) State() MatchState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
