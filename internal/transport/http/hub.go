package http

import (
	"sync"

	"go.uber.org/zap"
)

const sendBuffer = 32

// Hub tracks the live connections and rooms of one namespace and implements
// app.Broadcaster on top of them.
type Hub struct {
	namespace string
	logger    *zap.Logger

	mu    sync.RWMutex
	conns map[string]chan outboundMessage
	rooms map[string]map[string]struct{}
}

func NewHub(namespace string, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		namespace: namespace,
		logger:    logger,
		conns:     make(map[string]chan outboundMessage),
		rooms:     make(map[string]map[string]struct{}),
	}
}

func (h *Hub) register(connID string) <-chan outboundMessage {
	send := make(chan outboundMessage, sendBuffer)
	h.mu.Lock()
	h.conns[connID] = send
	h.mu.Unlock()
	return send
}

// unregister drops the connection from every room and closes its send channel.
func (h *Hub) unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	send, ok := h.conns[connID]
	if !ok {
		return
	}
	delete(h.conns, connID)
	for room, members := range h.rooms {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	close(send)
}

// Emit queues an event for one connection. Unknown ids are ignored.
func (h *Hub) Emit(connID, event string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.deliver(connID, outboundMessage{Type: event, Payload: payload})
}

func (h *Hub) EmitRoom(room, event string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	msg := outboundMessage{Type: event, Payload: payload}
	for connID := range h.rooms[room] {
		h.deliver(connID, msg)
	}
}

func (h *Hub) EnterRoom(connID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[connID]; !ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		h.rooms[room] = members
	}
	members[connID] = struct{}{}
}

// CloseRoom removes every member from the room.
func (h *Hub) CloseRoom(room string) {
	h.mu.Lock()
	delete(h.rooms, room)
	h.mu.Unlock()
}

// Members lists the connections currently in room.
func (h *Hub) Members(room string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.rooms[room]))
	for connID := range h.rooms[room] {
		out = append(out, connID)
	}
	return out
}

// deliver never blocks; a full buffer drops the event. Callers hold h.mu.
func (h *Hub) deliver(connID string, msg outboundMessage) {
	send, ok := h.conns[connID]
	if !ok {
		return
	}
	select {
	case send <- msg:
	default:
		h.logger.Warn("send buffer full, dropping event",
			zap.String("namespace", h.namespace),
			zap.String("conn", connID),
			zap.String("event", msg.Type))
	}
}
