package app_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"gameroom-service/internal/app"
	"gameroom-service/internal/content"
	"gameroom-service/internal/domain"
	"gameroom-service/internal/infra/memory"
)

type sent struct {
	Event   string
	Payload json.RawMessage
}

// recorder is an app.Broadcaster that keeps every event per connection.
type recorder struct {
	mu     sync.Mutex
	rooms  map[string]map[string]bool
	events map[string][]sent
}

func newRecorder() *recorder {
	return &recorder{
		rooms:  make(map[string]map[string]bool),
		events: make(map[string][]sent),
	}
}

func (r *recorder) Emit(connID, event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(connID, event, payload)
}

func (r *recorder) EmitRoom(room, event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for connID := range r.rooms[room] {
		r.record(connID, event, payload)
	}
}

func (r *recorder) EnterRoom(connID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rooms[room] == nil {
		r.rooms[room] = make(map[string]bool)
	}
	r.rooms[room][connID] = true
}

func (r *recorder) CloseRoom(room string) {
	r.mu.Lock()
	delete(r.rooms, room)
	r.mu.Unlock()
}

func (r *recorder) record(connID, event string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	r.events[connID] = append(r.events[connID], sent{Event: event, Payload: raw})
}

func (r *recorder) sentTo(connID string) []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sent(nil), r.events[connID]...)
}

func (r *recorder) names(connID string) []string {
	var out []string
	for _, s := range r.sentTo(connID) {
		out = append(out, s.Event)
	}
	return out
}

func (r *recorder) inRoom(room string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms[room])
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.events = make(map[string][]sent)
	r.mu.Unlock()
}

// last decodes the most recent event named event sent to connID.
func (r *recorder) last(t *testing.T, connID, event string, dst any) {
	t.Helper()
	events := r.sentTo(connID)
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Event == event {
			require.NoError(t, json.Unmarshal(events[i].Payload, dst))
			return
		}
	}
	t.Fatalf("%s never received %q; got %v", connID, event, r.names(connID))
}

func payload(t *testing.T, v any) json.RawMessage {
	t.Helper()
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

// questionBank is an app.QuestionRepository whose failure can be toggled and
// whose next load can be held open.
type questionBank struct {
	mu        sync.Mutex
	questions []domain.Question
	err       error
	entered   chan struct{}
	gate      chan struct{}
}

func (b *questionBank) GetQuestions(context.Context) ([]domain.Question, error) {
	b.mu.Lock()
	entered, gate := b.entered, b.gate
	b.entered, b.gate = nil, nil
	b.mu.Unlock()
	if gate != nil {
		close(entered)
		<-gate
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	return append([]domain.Question(nil), b.questions...), nil
}

func (b *questionBank) fail(err error) {
	b.mu.Lock()
	b.err = err
	b.mu.Unlock()
}

// hold blocks the next GetQuestions until release is called. The returned
// channel closes once that load has started.
func (b *questionBank) hold() (entered <-chan struct{}, release func()) {
	in, gate := make(chan struct{}), make(chan struct{})
	b.mu.Lock()
	b.entered, b.gate = in, gate
	b.mu.Unlock()
	return in, func() { close(gate) }
}

type topicList []domain.Topic

func (l topicList) LoadTopics(context.Context) ([]domain.Topic, error) {
	return append([]domain.Topic(nil), l...), nil
}

type triviaEnv struct {
	svc      *app.TriviaService
	out      *recorder
	sessions *memory.SessionStore
	waiting  *memory.WaitingRoom
	matches  *memory.MatchStore
	bank     *questionBank
	logs     *observer.ObservedLogs
}

func newTriviaEnv(t *testing.T) *triviaEnv {
	t.Helper()
	logger, logs := observedLogger()
	env := &triviaEnv{
		out:      newRecorder(),
		sessions: memory.NewSessionStore(),
		waiting:  memory.NewWaitingRoom(),
		matches:  memory.NewMatchStore(),
		bank: &questionBank{questions: []domain.Question{
			{Topic: "5", Text: "What is 1 + 1?", Answer: 0, Options: []string{"2", "3"}},
			{Topic: "5", Text: "What is 2 + 2?", Answer: 1, Options: []string{"3", "4"}},
			{Topic: "5", Text: "What is 3 + 3?", Answer: 2, Options: []string{"5", "7", "6"}},
			{Topic: "9", Text: "Capital of Peru?", Answer: 0, Options: []string{"Lima", "Quito"}},
		}},
		logs: logs,
	}
	topics := topicList{
		{PK: "5", Fields: map[string]string{"name": "Maths"}},
		{PK: "7", Fields: map[string]string{"name": "Empty"}},
		{PK: "9", Fields: map[string]string{"name": "Geography"}},
	}
	env.svc = app.NewTriviaService(app.TriviaDeps{
		Sessions:  env.sessions,
		Waiting:   env.waiting,
		Matches:   env.matches,
		Topics:    content.NewTopicStore(topics, env.waiting),
		Questions: env.bank,
		Out:       env.out,
		Logger:    logger,
	})
	return env
}

func (e *triviaEnv) connect(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, e.svc.Connect(context.Background(), id))
	}
}

func (e *triviaEnv) join(t *testing.T, connID string, topic any, name string) error {
	t.Helper()
	return e.svc.Handle(context.Background(), connID, "join_game",
		payload(t, map[string]any{"topic_pk": topic, "name": name}))
}

func (e *triviaEnv) answer(t *testing.T, connID, uid string, index int) error {
	t.Helper()
	return e.svc.Handle(context.Background(), connID, "answer",
		payload(t, map[string]any{"index": index, "game_uid": uid}))
}

// pair joins two clients on topic and returns the game both received.
func (e *triviaEnv) pair(t *testing.T, a, b, topic string) gameEvent {
	t.Helper()
	e.connect(t, a, b)
	require.NoError(t, e.join(t, a, topic, "Alice"))
	require.NoError(t, e.join(t, b, topic, "Bobby"))
	var g gameEvent
	e.out.last(t, a, app.EventGame, &g)
	return g
}

type gameEvent struct {
	UID             string     `json:"uid"`
	QuestionCount   int        `json:"question_count"`
	Players         []standing `json:"players"`
	Answer          int        `json:"answer"`
	CurrentQuestion struct {
		Text    string   `json:"text"`
		Options []string `json:"options"`
	} `json:"current_question"`
}

type standing struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type playersEvent struct {
	Players []standing `json:"players"`
}

func scores(players []standing) map[string]int {
	out := make(map[string]int, len(players))
	for _, p := range players {
		out[p.Name] = p.Score
	}
	return out
}

var _ app.Broadcaster = (*recorder)(nil)
