package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"gameroom-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ContentLoader reads topics and questions imported into Postgres.
type ContentLoader struct {
	pool *pgxpool.Pool
}

func NewContentLoader(pool *pgxpool.Pool) *ContentLoader {
	return &ContentLoader{pool: pool}
}

func (l *ContentLoader) LoadTopics(ctx context.Context) ([]domain.Topic, error) {
	rows, err := l.pool.Query(ctx, `SELECT pk, data FROM trivia_topics ORDER BY position, pk`)
	if err != nil {
		return nil, fmt.Errorf("%w: query topics: %v", domain.ErrContentLoad, err)
	}
	defer rows.Close()

	var topics []domain.Topic
	for rows.Next() {
		var (
			pk  string
			raw []byte
		)
		if err := rows.Scan(&pk, &raw); err != nil {
			return nil, fmt.Errorf("%w: scan topic: %v", domain.ErrContentLoad, err)
		}
		fields := map[string]string{}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("%w: topic %s: %v", domain.ErrContentLoad, pk, err)
		}
		topics = append(topics, domain.Topic{PK: pk, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read topics: %v", domain.ErrContentLoad, err)
	}
	return topics, nil
}

// LoadQuestions returns questions in insertion order so match backlogs pop the last row first.
func (l *ContentLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `SELECT topic, text, answer, options FROM trivia_questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query questions: %v", domain.ErrContentLoad, err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			q   domain.Question
			raw []byte
		)
		if err := rows.Scan(&q.Topic, &q.Text, &q.Answer, &raw); err != nil {
			return nil, fmt.Errorf("%w: scan question: %v", domain.ErrContentLoad, err)
		}
		if err := json.Unmarshal(raw, &q.Options); err != nil {
			return nil, fmt.Errorf("%w: question options: %v", domain.ErrContentLoad, err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read questions: %v", domain.ErrContentLoad, err)
	}
	return questions, nil
}
