package memory

import (
	"sync"

	"gameroom-service/internal/domain"
)

// WaitingRoom is an in-memory implementation of app.WaitingRoom. A topic key
// stays known after its queue empties until ReleaseTopic drops it.
type WaitingRoom struct {
	mu     sync.RWMutex
	queues map[string][]string
}

func NewWaitingRoom() *WaitingRoom {
	return &WaitingRoom{queues: make(map[string][]string)}
}

// Enqueue appends connID to topic unless it is already queued there.
func (w *WaitingRoom) Enqueue(topic, connID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if contains(w.queues[topic], connID) {
		return false
	}
	w.queues[topic] = append(w.queues[topic], connID)
	return true
}

// Queue returns a copy of the ids waiting for topic, oldest first.
func (w *WaitingRoom) Queue(topic string) ([]string, error) {
	if topic == "" {
		return nil, domain.ErrMissingTopic
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.queues[topic]...), nil
}

// Take removes and returns the n oldest ids of topic, or nil when fewer are
// waiting. A topic emptied by Take is forgotten as by ReleaseTopic.
func (w *WaitingRoom) Take(topic string, n int) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	queue := w.queues[topic]
	if n <= 0 || len(queue) < n {
		return nil
	}
	taken := append([]string(nil), queue[:n]...)
	if len(queue) == n {
		delete(w.queues, topic)
		return taken
	}
	w.queues[topic] = append([]string(nil), queue[n:]...)
	return taken
}

// Restore puts ids back at the head of topic, skipping any already queued.
func (w *WaitingRoom) Restore(topic string, connIDs ...string) {
	if len(connIDs) == 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	queue := w.queues[topic]
	head := make([]string, 0, len(connIDs)+len(queue))
	for _, id := range connIDs {
		if !contains(queue, id) && !contains(head, id) {
			head = append(head, id)
		}
	}
	w.queues[topic] = append(head, queue...)
}

// ReleaseTopic forgets the topic and everyone queued under it.
func (w *WaitingRoom) ReleaseTopic(topic string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.queues[topic]; !ok {
		return domain.ErrUnknownTopic
	}
	delete(w.queues, topic)
	return nil
}

// DequeueAll removes connID from every topic.
func (w *WaitingRoom) DequeueAll(connID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for topic, queue := range w.queues {
		w.queues[topic] = without(queue, connID)
	}
}

func (w *WaitingRoom) HasPlayers(topic string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.queues[topic]) > 0
}

func without(queue []string, connIDs ...string) []string {
	out := queue[:0]
	for _, id := range queue {
		drop := false
		for _, c := range connIDs {
			if id == c {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, id)
		}
	}
	return out
}

func contains(queue []string, connID string) bool {
	for _, id := range queue {
		if id == connID {
			return true
		}
	}
	return false
}
