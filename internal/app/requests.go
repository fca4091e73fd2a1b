package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"gameroom-service/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type chatJoinRequest struct {
	Name string `json:"name" validate:"min=3,max=15"`
	Room string `json:"room" validate:"required"`
}

type chatMessageRequest struct {
	Text string `json:"text"`
}

type riddleAnswerRequest struct {
	Text *string `json:"text" validate:"required"`
}

type triviaJoinRequest struct {
	TopicPK flexString `json:"topic_pk" validate:"required"`
	Name    string     `json:"name" validate:"min=3"`
}

type triviaAnswerRequest struct {
	Index   *int   `json:"index" validate:"required,gte=0"`
	GameUID string `json:"game_uid" validate:"required,uuid4"`
}

// flexString accepts both JSON strings and numbers.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*s = flexString(num.String())
	return nil
}

// decodeRequest unmarshals payload into dst and validates it. Every failure is
// returned as a *domain.ValidationError.
func decodeRequest(payload json.RawMessage, dst any) error {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return &domain.ValidationError{Fields: []domain.FieldError{{Field: "payload", Message: err.Error()}}}
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return &domain.ValidationError{Fields: []domain.FieldError{{Field: "payload", Message: err.Error()}}}
		}
		out := &domain.ValidationError{}
		for _, fe := range fieldErrs {
			out.Fields = append(out.Fields, domain.FieldError{Field: fe.Field(), Message: describe(fe)})
		}
		return out
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "uuid4":
		return "must be a UUID4"
	default:
		return "failed " + fe.Tag() + " check"
	}
}
