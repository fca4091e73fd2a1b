package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gameroom-service/internal/domain"
	"gameroom-service/internal/game"
)

// TriviaService implements the two-player trivia namespace: topic listing,
// matchmaking and the synchronized answer/advance protocol.
type TriviaService struct {
	sessions  SessionRepository
	waiting   WaitingRoom
	matches   MatchRepository
	topics    TopicCatalog
	questions QuestionRepository
	out       Broadcaster
	occupancy ClientCounter
	logger    *zap.Logger
	newID     func() string

	topicLocks *keyedMutex
	matchLocks *keyedMutex
}

// TriviaDeps groups the collaborators of a TriviaService.
type TriviaDeps struct {
	Sessions  SessionRepository
	Waiting   WaitingRoom
	Matches   MatchRepository
	Topics    TopicCatalog
	Questions QuestionRepository
	Out       Broadcaster
	Logger    *zap.Logger
	// Occupancy counts clients for status lines; defaults to Sessions.
	Occupancy ClientCounter
	// NewID allocates match ids; defaults to random UUIDs.
	NewID func() string
}

func NewTriviaService(deps TriviaDeps) *TriviaService {
	newID := deps.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	occupancy := deps.Occupancy
	if occupancy == nil {
		occupancy = deps.Sessions
	}
	return &TriviaService{
		sessions:   deps.Sessions,
		occupancy:  occupancy,
		waiting:    deps.Waiting,
		matches:    deps.Matches,
		topics:     deps.Topics,
		questions:  deps.Questions,
		out:        deps.Out,
		logger:     logger,
		newID:      newID,
		topicLocks: newKeyedMutex(),
		matchLocks: newKeyedMutex(),
	}
}

func (s *TriviaService) Connect(_ context.Context, connID string) error {
	s.sessions.GetOrCreate(connID)
	s.logger.Info("client connected", zap.String("conn", connID))
	logStatus(s.logger, s.occupancy)
	return nil
}

// Disconnect removes every trace of the connection. It never fails.
func (s *TriviaService) Disconnect(_ context.Context, connID string) {
	if client, ok := s.sessions.Get(connID); ok {
		s.leaveMatch(client, client.ResetPlacement(""))
		s.logger.Info("client disconnected",
			zap.String("conn", connID),
			zap.String("connection_time", client.ConnectionTime()))
	}
	s.waiting.DequeueAll(connID)
	s.sessions.Remove(connID)
	logStatus(s.logger, s.occupancy)
}

func (s *TriviaService) Handle(ctx context.Context, connID, event string, payload json.RawMessage) error {
	switch event {
	case "get_topics":
		return s.getTopics(ctx, connID)
	case "join_game":
		return s.joinGame(ctx, connID, payload)
	case "answer":
		return s.answer(connID, payload)
	case "release_queue":
		if client, ok := s.sessions.Get(connID); ok {
			client.StopWaiting()
		}
		s.waiting.DequeueAll(connID)
		s.logger.Info("client released queue", zap.String("conn", connID))
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedEvent, event)
	}
}

func (s *TriviaService) getTopics(ctx context.Context, connID string) error {
	if err := s.topics.Reload(ctx); err != nil {
		return fmt.Errorf("load topics: %w", err)
	}
	s.out.Emit(connID, EventTopics, s.topics.Topics())
	return nil
}

func (s *TriviaService) joinGame(ctx context.Context, connID string, payload json.RawMessage) error {
	var req triviaJoinRequest
	if err := decodeRequest(payload, &req); err != nil {
		s.out.Emit(connID, EventError, newErrorPayload(err))
		s.logger.Error("join_game rejected", zap.String("conn", connID), zap.Error(err))
		return nil
	}
	topic := string(req.TopicPK)

	client, _ := s.sessions.GetOrCreate(connID)
	s.leaveMatch(client, client.ResetPlacement(topic))
	if err := client.CreateGame("trivia"); err != nil {
		return err
	}
	client.SetName(req.Name)

	s.waiting.DequeueAll(connID)

	unlock := s.topicLocks.Lock(topic)
	defer unlock()

	// A pairing on this topic may have claimed the client while it waited
	// for the lock; it already received its game.
	if client.WaitingOn() != topic {
		return nil
	}
	s.waiting.Enqueue(topic, connID)
	queue, err := s.waiting.Queue(topic)
	if err != nil {
		return err
	}
	if len(queue) >= game.PlayersPerMatch {
		// Questions are fetched before anyone leaves the queue so a load
		// failure keeps everyone waiting for the next attempt.
		questions, err := s.questions.GetQuestions(ctx)
		if err != nil {
			return fmt.Errorf("load questions: %w", err)
		}
		s.pairWaiting(topic, questions)
	}
	if client.WaitingOn() == topic {
		s.out.Emit(connID, EventAck, emptyPayload{})
		s.logger.Info("client waiting", zap.String("conn", connID), zap.String("topic", topic))
	}
	return nil
}

// pairWaiting promotes the two oldest claimable clients of topic to a match.
// Clients that left the queue while questions loaded are skipped. Callers
// hold the topic lock.
func (s *TriviaService) pairWaiting(topic string, questions []domain.Question) {
	for {
		pair := s.waiting.Take(topic, game.PlayersPerMatch)
		if pair == nil {
			return
		}
		if s.startMatch(topic, pair, questions) {
			return
		}
	}
}

// startMatch claims both clients for a new match and deals the first
// question. If either client is gone or has moved on, the other goes back to
// the head of the queue and no match is created.
func (s *TriviaService) startMatch(topic string, pair []string, questions []domain.Question) bool {
	uid := s.newID()
	unlock := s.matchLocks.Lock(uid)
	defer unlock()

	var claimed []*Client
	var departed []string
	for _, connID := range pair {
		if client, ok := s.sessions.Get(connID); ok && client.ClaimForMatch(topic, uid) {
			claimed = append(claimed, client)
			continue
		}
		departed = append(departed, connID)
	}
	if len(departed) > 0 {
		var back []string
		for _, client := range claimed {
			if client.ReleaseClaim(topic, uid) {
				back = append(back, client.ID())
			}
		}
		s.waiting.Restore(topic, back...)
		s.logger.Info("pairing skipped departed clients",
			zap.String("topic", topic),
			zap.Strings("departed", departed),
			zap.Strings("requeued", back))
		return false
	}

	match, _ := s.matches.GetOrCreate(uid)
	for _, client := range claimed {
		match.AddPlayer(client.ID())
		s.out.EnterRoom(client.ID(), uid)
	}
	match.LoadQuestions(questions)
	match.SetTopic(topic)
	s.logger.Info("match created",
		zap.String("match", uid),
		zap.String("topic", topic),
		zap.Strings("players", pair))

	remaining, _ := match.RemainingQuestions(topic)
	if remaining == 0 {
		match.Finish()
		s.out.EmitRoom(uid, EventNoQuestion, playersPayload{Players: s.standings(match)})
		s.logger.Info("no questions for topic", zap.String("match", uid), zap.String("topic", topic))
		return true
	}
	s.out.EmitRoom(uid, EventGame, s.dealQuestion(match))
	return true
}

// dealQuestion opens the next round. Callers hold the match lock.
func (s *TriviaService) dealQuestion(match *game.TriviaMatch) gamePayload {
	topic := match.Topic()
	match.NextQuestion(topic)
	remaining, _ := match.RemainingQuestions(topic)
	text, _ := match.Question()
	answer, _ := match.Answer()
	return gamePayload{
		UID:           match.ID(),
		QuestionCount: remaining,
		Players:       s.standings(match),
		Answer:        answer,
		CurrentQuestion: currentQuestion{
			Text:    text,
			Options: match.Options(),
		},
	}
}

func (s *TriviaService) answer(connID string, payload json.RawMessage) error {
	var req triviaAnswerRequest
	if err := decodeRequest(payload, &req); err != nil {
		s.out.Emit(connID, EventError, newErrorPayload(err))
		s.logger.Error("answer rejected", zap.String("conn", connID), zap.Error(err))
		return nil
	}

	client, _ := s.sessions.GetOrCreate(connID)
	uid := client.MatchID()
	if uid == "" || uid != req.GameUID {
		s.out.Emit(connID, EventError, newErrorPayload(domain.ErrNotInMatch))
		return nil
	}

	unlock := s.matchLocks.Lock(uid)
	defer unlock()

	match, ok := s.matches.Get(uid)
	if !ok {
		s.out.Emit(connID, EventError, newErrorPayload(domain.ErrMatchNotFound))
		return nil
	}
	if !match.AddAnswer(connID, *req.Index) {
		s.logger.Debug("answer ignored", zap.String("conn", connID), zap.String("match", uid))
		return nil
	}
	if !match.RoundComplete() {
		return nil
	}

	correct, _ := match.Answer()
	for _, a := range match.Answers() {
		if a.OptionIndex != correct {
			continue
		}
		if player, ok := s.sessions.Get(a.ConnID); ok && player.Game() != nil {
			player.Game().ScoreIncrement()
		}
	}
	match.ClearAnswers()

	remaining, err := match.RemainingQuestions(match.Topic())
	if err != nil {
		return err
	}
	if remaining > 0 {
		s.out.EmitRoom(uid, EventGame, s.dealQuestion(match))
		return nil
	}
	match.Finish()
	standings := s.standings(match)
	s.out.EmitRoom(uid, EventOver, playersPayload{Players: standings})
	s.logger.Info("match over", zap.String("match", uid), zap.Any("players", standings))
	return nil
}

// leaveMatch releases match uid, which client has already detached from,
// and tells the opponent.
func (s *TriviaService) leaveMatch(client *Client, uid string) {
	if uid == "" {
		return
	}
	unlock := s.matchLocks.Lock(uid)
	defer unlock()

	match, ok := s.matches.Get(uid)
	if !ok {
		return
	}
	s.matches.Remove(uid)
	abandoned := match.State() != game.MatchOver
	for _, connID := range match.Players() {
		if connID == client.ID() {
			continue
		}
		if opponent, ok := s.sessions.Get(connID); ok && opponent.MatchID() == uid {
			opponent.ClearMatchID()
		}
		if abandoned {
			s.out.Emit(connID, EventOpponentLeft, opponentLeftPayload{UID: uid})
		}
	}
	s.out.CloseRoom(uid)
	s.logger.Info("match released",
		zap.String("match", uid),
		zap.String("conn", client.ID()),
		zap.Bool("abandoned", abandoned))
}

func (s *TriviaService) standings(match *game.TriviaMatch) []domain.PlayerStanding {
	players := match.Players()
	out := make([]domain.PlayerStanding, 0, len(players))
	for _, connID := range players {
		client, ok := s.sessions.Get(connID)
		if !ok {
			continue
		}
		score := 0
		if g := client.Game(); g != nil {
			score = g.Score()
		}
		out = append(out, domain.PlayerStanding{Name: client.Name(), Score: score})
	}
	return out
}
