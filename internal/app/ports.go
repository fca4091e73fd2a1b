package app

import (
	"context"
	"encoding/json"

	"gameroom-service/internal/domain"
	"gameroom-service/internal/game"
)

// SessionRepository tracks connected clients (in-memory, Redis-marked, etc).
type SessionRepository interface {
	GetOrCreate(connID string) (*Client, bool)
	Get(connID string) (*Client, bool)
	Remove(connID string)
	Count() int
}

// MatchRepository owns the lifecycle of trivia matches.
type MatchRepository interface {
	GetOrCreate(matchID string) (*game.TriviaMatch, bool)
	Get(matchID string) (*game.TriviaMatch, bool)
	Remove(matchID string)
	Count() int
}

// WaitingRoom queues connection ids per topic until they can be paired.
type WaitingRoom interface {
	Enqueue(topic, connID string) bool
	Queue(topic string) ([]string, error)
	// Take atomically removes the n oldest ids, or returns nil if fewer wait.
	Take(topic string, n int) []string
	// Restore puts ids back at the head of a topic queue.
	Restore(topic string, connIDs ...string)
	ReleaseTopic(topic string) error
	DequeueAll(connID string)
	HasPlayers(topic string) bool
}

// QuestionRepository loads the trivia question bank (from cache/backing store).
type QuestionRepository interface {
	GetQuestions(ctx context.Context) ([]domain.Question, error)
}

// TopicCatalog refreshes and lists trivia topics.
type TopicCatalog interface {
	Reload(ctx context.Context) error
	Topics() []domain.Topic
}

// Broadcaster delivers events for one namespace. Emits never block.
type Broadcaster interface {
	Emit(connID, event string, payload any)
	EmitRoom(room, event string, payload any)
	EnterRoom(connID, room string)
	CloseRoom(room string)
}

// Namespace is what the transport drives for each connection of a namespace.
type Namespace interface {
	Connect(ctx context.Context, connID string) error
	Disconnect(ctx context.Context, connID string)
	Handle(ctx context.Context, connID, event string, payload json.RawMessage) error
}
