package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"gameroom-service/internal/domain"
	"gameroom-service/internal/game"
)

// RiddleService implements the single-player riddle namespace.
type RiddleService struct {
	sessions  SessionRepository
	out       Broadcaster
	occupancy ClientCounter
	logger    *zap.Logger
}

func NewRiddleService(sessions SessionRepository, out Broadcaster, logger *zap.Logger) *RiddleService {
	return &RiddleService{sessions: sessions, out: out, occupancy: sessions, logger: logger}
}

// WithOccupancy makes status lines count clients across namespaces.
func (s *RiddleService) WithOccupancy(occupancy ClientCounter) *RiddleService {
	s.occupancy = occupancy
	return s
}

func (s *RiddleService) Connect(_ context.Context, connID string) error {
	client, _ := s.sessions.GetOrCreate(connID)
	if err := client.CreateGame("riddle"); err != nil {
		return err
	}
	s.logger.Info("client connected", zap.String("conn", connID))
	logStatus(s.logger, s.occupancy)
	return nil
}

func (s *RiddleService) Disconnect(_ context.Context, connID string) {
	if client, ok := s.sessions.Get(connID); ok {
		s.logger.Info("client disconnected",
			zap.String("conn", connID),
			zap.String("connection_time", client.ConnectionTime()))
	}
	s.sessions.Remove(connID)
	logStatus(s.logger, s.occupancy)
}

func (s *RiddleService) Handle(_ context.Context, connID, event string, payload json.RawMessage) error {
	switch event {
	case "next":
		riddle, err := s.riddleFor(connID)
		if err != nil {
			return err
		}
		riddle.NextQuestion()
		s.sendQuestion(connID, riddle)
		return nil
	case "recreate":
		riddle, err := s.riddleFor(connID)
		if err != nil {
			return err
		}
		riddle.Recreate()
		riddle.NextQuestion()
		s.sendQuestion(connID, riddle)
		return nil
	case "answer":
		return s.answer(connID, payload)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedEvent, event)
	}
}

// riddleFor returns the client's riddle, creating one if the client never
// connected through this namespace.
func (s *RiddleService) riddleFor(connID string) (*game.Riddle, error) {
	client, _ := s.sessions.GetOrCreate(connID)
	if riddle, ok := client.Game().(*game.Riddle); ok {
		return riddle, nil
	}
	if err := client.CreateGame("riddle"); err != nil {
		return nil, err
	}
	return client.Game().(*game.Riddle), nil
}

func (s *RiddleService) sendQuestion(connID string, riddle *game.Riddle) {
	question, ok := riddle.Question()
	if !ok {
		s.out.Emit(connID, EventOver, emptyPayload{})
		s.logger.Info("riddles exhausted", zap.String("conn", connID))
		return
	}
	s.out.Emit(connID, EventRiddle, textPayload{Text: question})
	s.logger.Info("riddle sent", zap.String("conn", connID), zap.String("riddle", question))
}

func (s *RiddleService) answer(connID string, payload json.RawMessage) error {
	var req riddleAnswerRequest
	if err := decodeRequest(payload, &req); err != nil {
		s.sendErrors(connID, err)
		return nil
	}
	riddle, err := s.riddleFor(connID)
	if err != nil {
		return err
	}
	question, hasQuestion := riddle.Question()
	answer, _ := riddle.Answer()
	if !hasQuestion {
		s.sendErrors(connID, &domain.ValidationError{Fields: []domain.FieldError{{Field: "riddle", Message: "no active riddle"}}})
		return nil
	}

	correct := IsRiddleAnswerCorrect(*req.Text, answer)
	if correct {
		riddle.ScoreIncrement()
	}
	s.out.Emit(connID, EventResult, riddleResultPayload{
		Riddle:    question,
		IsCorrect: strconv.FormatBool(correct),
		Answer:    answer,
	})
	s.out.Emit(connID, EventScore, scorePayload{Value: riddle.Score()})
	s.logger.Info("riddle answered",
		zap.String("conn", connID),
		zap.Bool("correct", correct),
		zap.Int("score", riddle.Score()))
	return nil
}

func (s *RiddleService) sendErrors(connID string, err error) {
	payload := newErrorPayload(err)
	s.out.Emit(connID, EventErrors, payload.Fields)
	s.logger.Error("riddle answer rejected", zap.String("conn", connID), zap.Error(err))
}

// IsRiddleAnswerCorrect reports whether the trimmed submission is contained in
// the known answer, ignoring case. A blank submission is never correct.
func IsRiddleAnswerCorrect(submitted, answer string) bool {
	text := strings.ToLower(strings.TrimSpace(submitted))
	if text == "" || answer == "" {
		return false
	}
	return strings.Contains(strings.ToLower(answer), text)
}
