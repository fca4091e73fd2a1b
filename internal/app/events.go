package app

import (
	"errors"

	"gameroom-service/internal/domain"
)

// Outbound event names.
const (
	EventError        = "error"
	EventErrors       = "errors"
	EventRooms        = "rooms"
	EventMove         = "move"
	EventMessages     = "messages"
	EventMessage      = "message"
	EventRiddle       = "riddle"
	EventOver         = "over"
	EventResult       = "result"
	EventScore        = "score"
	EventTopics       = "topics"
	EventGame         = "game"
	EventNoQuestion   = "no_question"
	EventOpponentLeft = "opponent_left"
	// EventAck is the unnamed acknowledgment sent while a player waits for a pair.
	EventAck = ""
)

// ErrUnsupportedEvent is returned by Handle for event names a namespace does not know.
var ErrUnsupportedEvent = errors.New("unsupported event")

type errorPayload struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}

func newErrorPayload(err error) errorPayload {
	p := errorPayload{Error: err.Error()}
	var v *domain.ValidationError
	if errors.As(err, &v) {
		p.Fields = v.Fields
	}
	return p
}

type roomPayload struct {
	Room string `json:"room"`
}

type textPayload struct {
	Text string `json:"text"`
}

type riddleResultPayload struct {
	Riddle    string `json:"riddle"`
	IsCorrect string `json:"is_correct"`
	Answer    string `json:"answer"`
}

type scorePayload struct {
	Value int `json:"value"`
}

type currentQuestion struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type gamePayload struct {
	UID             string                  `json:"uid"`
	QuestionCount   int                     `json:"question_count"`
	Players         []domain.PlayerStanding `json:"players"`
	Answer          int                     `json:"answer"`
	CurrentQuestion currentQuestion         `json:"current_question"`
}

type playersPayload struct {
	Players []domain.PlayerStanding `json:"players"`
}

type opponentLeftPayload struct {
	UID string `json:"uid"`
}

type emptyPayload struct{}
