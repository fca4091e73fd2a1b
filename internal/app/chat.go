package app

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"gameroom-service/internal/domain"
)

// DefaultChatRooms is used when no rooms are configured.
var DefaultChatRooms = []string{"general", "music", "random"}

// ChatService implements the chat namespace.
type ChatService struct {
	sessions  SessionRepository
	out       Broadcaster
	rooms     []string
	occupancy ClientCounter
	logger    *zap.Logger
}

func NewChatService(sessions SessionRepository, out Broadcaster, rooms []string, logger *zap.Logger) *ChatService {
	if len(rooms) == 0 {
		rooms = DefaultChatRooms
	}
	return &ChatService{
		sessions:  sessions,
		out:       out,
		rooms:     append([]string(nil), rooms...),
		occupancy: sessions,
		logger:    logger,
	}
}

// WithOccupancy makes status lines count clients across namespaces.
func (s *ChatService) WithOccupancy(occupancy ClientCounter) *ChatService {
	s.occupancy = occupancy
	return s
}

func (s *ChatService) Connect(_ context.Context, connID string) error {
	s.sessions.GetOrCreate(connID)
	s.logger.Info("client connected", zap.String("conn", connID))
	logStatus(s.logger, s.occupancy)
	return nil
}

func (s *ChatService) Disconnect(_ context.Context, connID string) {
	if client, ok := s.sessions.Get(connID); ok {
		s.logger.Info("client disconnected",
			zap.String("conn", connID),
			zap.String("connection_time", client.ConnectionTime()))
	}
	s.sessions.Remove(connID)
	logStatus(s.logger, s.occupancy)
}

func (s *ChatService) Handle(_ context.Context, connID, event string, payload json.RawMessage) error {
	switch event {
	case "get_rooms":
		s.out.Emit(connID, EventRooms, s.rooms)
		return nil
	case "join":
		return s.join(connID, payload)
	case "leave":
		s.leave(connID)
		return nil
	case "send_message":
		return s.sendMessage(connID, payload)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedEvent, event)
	}
}

// join refuses the whole connection on invalid input, unlike the other namespaces.
func (s *ChatService) join(connID string, payload json.RawMessage) error {
	var req chatJoinRequest
	if err := decodeRequest(payload, &req); err != nil {
		s.out.Emit(connID, EventError, newErrorPayload(err))
		s.logger.Error("chat join rejected", zap.String("conn", connID), zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrConnectionRefused, err)
	}

	client, _ := s.sessions.GetOrCreate(connID)
	client.SetName(req.Name)
	client.SetRoom(req.Room)

	s.out.Emit(connID, EventMove, roomPayload{Room: req.Room})
	s.out.EnterRoom(connID, req.Room)
	s.logger.Info("client joined room",
		zap.String("conn", connID),
		zap.String("name", req.Name),
		zap.String("room", req.Room))

	history, err := client.Messages(req.Room)
	if err != nil {
		return err
	}
	if len(history) > 0 {
		s.out.Emit(connID, EventMessages, history)
	}
	s.out.Emit(connID, EventMessage, textPayload{Text: "welcome to " + req.Room})
	return nil
}

func (s *ChatService) leave(connID string) {
	client, _ := s.sessions.GetOrCreate(connID)
	room := client.Room()
	if room == "" {
		return
	}
	s.out.CloseRoom(room)
	client.ClearRoom()
	s.logger.Info("client left room",
		zap.String("conn", connID),
		zap.String("name", client.Name()),
		zap.String("room", room))
}

func (s *ChatService) sendMessage(connID string, payload json.RawMessage) error {
	var req chatMessageRequest
	if err := decodeRequest(payload, &req); err != nil {
		s.out.Emit(connID, EventError, newErrorPayload(err))
		return nil
	}

	client, _ := s.sessions.GetOrCreate(connID)
	room := client.Room()
	if room == "" {
		s.out.Emit(connID, EventError, newErrorPayload(domain.ErrNotInRoom))
		return nil
	}

	msg := domain.ChatMessage{Text: req.Text, Author: client.Name()}
	s.out.EmitRoom(room, EventMessage, msg)
	s.logger.Debug("message sent", zap.String("conn", connID), zap.String("room", room))
	return client.AddMessage(room, msg)
}
