package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gameroom-service/internal/domain"
)

func TestQuestionRepositoryCaches(t *testing.T) {
	loader := &countingLoader{QuestionLoader: NewStaticQuestionLoader(sampleQuestions())}
	repo := NewQuestionRepository(loader, time.Minute)

	first, err := repo.GetQuestions(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 1, loader.calls)

	_, err = repo.GetQuestions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, loader.calls, "expected cache hit")
}

func TestQuestionRepositoryReturnsCopies(t *testing.T) {
	repo := NewQuestionRepository(NewStaticQuestionLoader(sampleQuestions()), time.Minute)

	first, err := repo.GetQuestions(context.Background())
	require.NoError(t, err)
	first[0].Options[0] = "mutated"

	second, err := repo.GetQuestions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "3", second[0].Options[0])
}

func TestQuestionRepositoryConcurrentCallersGetOwnCopies(t *testing.T) {
	loader := &gatedLoader{
		questions: sampleQuestions(),
		entered:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	repo := NewQuestionRepository(loader, time.Minute)

	results := make(chan []domain.Question, 2)
	fetch := func() {
		questions, err := repo.GetQuestions(context.Background())
		assert.NoError(t, err)
		results <- questions
	}
	go fetch()
	<-loader.entered
	go fetch()
	// let the second caller join the flight before the load completes
	time.Sleep(20 * time.Millisecond)
	close(loader.release)

	first, second := <-results, <-results
	require.Len(t, first, 2)
	require.Len(t, second, 2)
	first[0].Options[0] = "mutated"
	assert.Equal(t, "3", second[0].Options[0])
}

func TestQuestionRepositoryReloadsAfterExpiry(t *testing.T) {
	loader := &countingLoader{QuestionLoader: NewStaticQuestionLoader(sampleQuestions())}
	repo := NewQuestionRepository(loader, time.Minute)
	now := time.Now()
	repo.clock = func() time.Time { return now }

	_, err := repo.GetQuestions(context.Background())
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = repo.GetQuestions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls)
}

func TestQuestionRepositoryPropagatesLoadErrors(t *testing.T) {
	repo := NewQuestionRepository(failingLoader{}, time.Minute)
	_, err := repo.GetQuestions(context.Background())
	assert.ErrorIs(t, err, domain.ErrContentLoad)
}

type countingLoader struct {
	QuestionLoader
	calls int
}

func (l *countingLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadQuestions(ctx)
}

type failingLoader struct{}

func (failingLoader) LoadQuestions(context.Context) ([]domain.Question, error) {
	return nil, errors.Join(domain.ErrContentLoad, errors.New("disk gone"))
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{Topic: "5", Text: "What is 2 + 2?", Answer: 1, Options: []string{"3", "4", "5"}},
		{Topic: "5", Text: "What is 3 + 3?", Answer: 2, Options: []string{"5", "7", "6"}},
	}
}

type gatedLoader struct {
	questions []domain.Question
	entered   chan struct{}
	release   chan struct{}
}

func (l *gatedLoader) LoadQuestions(context.Context) ([]domain.Question, error) {
	close(l.entered)
	<-l.release
	return cloneQuestions(l.questions), nil
}
