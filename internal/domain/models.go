package domain

import "encoding/json"

// ChatMessage is one entry of a client's per-room history.
type ChatMessage struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// Topic is a trivia category loaded from content. Fields carries every
// column of the source row so display attributes pass through untouched.
type Topic struct {
	PK         string
	Fields     map[string]string
	HasPlayers bool
}

// MarshalJSON flattens the passthrough fields next to pk and has_players.
func (t Topic) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(t.Fields)+2)
	for k, v := range t.Fields {
		out[k] = v
	}
	out["pk"] = t.PK
	out["has_players"] = t.HasPlayers
	return json.Marshal(out)
}

// Question is one multiple-choice trivia record. Answer is the index of the
// correct entry as encoded by the content source.
type Question struct {
	Topic   string   `json:"topic"`
	Text    string   `json:"text"`
	Answer  int      `json:"answer"`
	Options []string `json:"options"`
}

// RiddlePair is a static riddle and its answer.
type RiddlePair struct {
	Question string
	Answer   string
}

// PlayerStanding is a participant's name and cumulative score inside a match.
type PlayerStanding struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// RoundAnswer is one submission for the active trivia question.
type RoundAnswer struct {
	ConnID      string
	OptionIndex int
}
