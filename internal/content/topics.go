package content

import (
	"context"
	"sync"

	"gameroom-service/internal/domain"
)

// TopicLoader produces the full topic list from a content source.
type TopicLoader interface {
	LoadTopics(ctx context.Context) ([]domain.Topic, error)
}

// QueueInspector reports whether anyone is waiting for a topic.
type QueueInspector interface {
	HasPlayers(topic string) bool
}

// TopicStore holds the current topic list. Reload is not re-entrant: two
// concurrent reloads race and the last one to finish wins.
type TopicStore struct {
	loader  TopicLoader
	waiting QueueInspector

	mu     sync.RWMutex
	topics []domain.Topic
}

func NewTopicStore(loader TopicLoader, waiting QueueInspector) *TopicStore {
	return &TopicStore{loader: loader, waiting: waiting}
}

// Reload replaces the topic list. The new list is built completely before the
// swap, so a failed load leaves the previous list in place.
func (s *TopicStore) Reload(ctx context.Context) error {
	loaded, err := s.loader.LoadTopics(ctx)
	if err != nil {
		return err
	}
	next := make([]domain.Topic, 0, len(loaded))
	for _, t := range loaded {
		t.HasPlayers = t.PK != "" && s.waiting.HasPlayers(t.PK)
		next = append(next, t)
	}

	s.mu.Lock()
	s.topics = next
	s.mu.Unlock()
	return nil
}

// Topics returns the last loaded list in source order.
func (s *TopicStore) Topics() []domain.Topic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Topic(nil), s.topics...)
}
