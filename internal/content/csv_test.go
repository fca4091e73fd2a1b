package content

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gameroom-service/internal/domain"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestCSVTopicLoader(t *testing.T) {
	path := writeFile(t, "topics.csv", "\ufeffpk,name,level\n5,Maths,easy\n2,History,hard\n")

	topics, err := NewCSVTopicLoader(path).LoadTopics(context.Background())
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, "5", topics[0].PK)
	assert.Equal(t, map[string]string{"name": "Maths", "level": "easy"}, topics[0].Fields)
	assert.Equal(t, "2", topics[1].PK)
}

func TestCSVTopicLoaderRequiresPK(t *testing.T) {
	path := writeFile(t, "topics.csv", "id,name\n5,Maths\n")
	_, err := NewCSVTopicLoader(path).LoadTopics(context.Background())
	assert.ErrorIs(t, err, domain.ErrContentLoad)
}

func TestCSVQuestionLoader(t *testing.T) {
	path := writeFile(t, "questions.csv", "topic,text,answer,1,2,3\n5,2+2?,1,3,4,5\n5,3+3?, 2 ,5,7,6\n")

	questions, err := NewCSVQuestionLoader(path).LoadQuestions(context.Background())
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, domain.Question{Topic: "5", Text: "2+2?", Answer: 1, Options: []string{"3", "4", "5"}}, questions[0])
	assert.Equal(t, 2, questions[1].Answer)
}

func TestCSVQuestionLoaderRejectsBadRows(t *testing.T) {
	cases := map[string]string{
		"non numeric answer": "topic,text,answer\n5,q,first\n",
		"missing topic":      "text,answer\nq,1\n",
		"ragged row":         "topic,text,answer\n5,q\n",
		"empty file":         "",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := questionsFromReader(body)
			assert.ErrorIs(t, err, domain.ErrContentLoad)
		})
	}
}

func TestCSVMissingFile(t *testing.T) {
	_, err := NewCSVQuestionLoader(filepath.Join(t.TempDir(), "absent.csv")).LoadQuestions(context.Background())
	assert.ErrorIs(t, err, domain.ErrContentLoad)
}

func questionsFromReader(body string) ([]domain.Question, error) {
	rows, err := parseRows(strings.NewReader(body), "inline")
	if err != nil {
		return nil, err
	}
	return questionsFromRows(rows, "inline")
}
