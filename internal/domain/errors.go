package domain

import (
	"errors"
	"strings"
)

var (
	// ErrMissingTopic is returned when an operation requires a topic and none was given.
	ErrMissingTopic = errors.New("topic not provided")
	// ErrUnknownTopic is returned when a topic was never queued in the waiting room.
	ErrUnknownTopic = errors.New("topic not found")
	// ErrContentLoad indicates topic or question content could not be read or parsed.
	ErrContentLoad = errors.New("content load failed")
	// ErrConnectionRefused tells the transport to drop the originating connection.
	ErrConnectionRefused = errors.New("connection refused")
	// ErrNotInMatch is returned when a client answers without being paired.
	ErrNotInMatch = errors.New("client is not in a match")
	// ErrMatchNotFound indicates the match was already released.
	ErrMatchNotFound = errors.New("match not found")
	// ErrNotInRoom is returned when a chat client sends before joining a room.
	ErrNotInRoom = errors.New("client is not in a room")
	// ErrUnknownGame is returned by Client.CreateGame for an unsupported game name.
	ErrUnknownGame = errors.New("game not found")
)

// FieldError describes one rejected field of a client payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is a malformed or out-of-range client payload.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid payload"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid payload: " + strings.Join(parts, "; ")
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
