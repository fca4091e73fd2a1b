package postgres

import (
	"context"
	"fmt"

	"gameroom-service/internal/domain"
	"github.com/uptrace/bun"
)

type topicRow struct {
	bun.BaseModel `bun:"table:trivia_topics"`

	PK       string            `bun:"pk,pk"`
	Position int               `bun:"position,notnull"`
	Data     map[string]string `bun:"data,type:jsonb"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:trivia_questions"`

	ID      int64    `bun:"id,pk,autoincrement"`
	Topic   string   `bun:"topic,notnull"`
	Text    string   `bun:"text,notnull"`
	Answer  int      `bun:"answer,notnull"`
	Options []string `bun:"options,type:jsonb"`
}

// Importer replaces the trivia content tables in one transaction.
type Importer struct {
	db *bun.DB
}

func NewImporter(db *bun.DB) *Importer {
	return &Importer{db: db}
}

// Import truncates both tables and inserts the given content.
func (i *Importer) Import(ctx context.Context, topics []domain.Topic, questions []domain.Question) error {
	topicRows := topicRowsFrom(topics)
	questionRows := questionRowsFrom(questions)

	return i.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewTruncateTable().Model((*questionRow)(nil)).Exec(ctx); err != nil {
			return fmt.Errorf("truncate questions: %w", err)
		}
		if _, err := tx.NewTruncateTable().Model((*topicRow)(nil)).Exec(ctx); err != nil {
			return fmt.Errorf("truncate topics: %w", err)
		}
		if len(topicRows) > 0 {
			if _, err := tx.NewInsert().Model(&topicRows).Exec(ctx); err != nil {
				return fmt.Errorf("insert topics: %w", err)
			}
		}
		if len(questionRows) > 0 {
			if _, err := tx.NewInsert().Model(&questionRows).Exec(ctx); err != nil {
				return fmt.Errorf("insert questions: %w", err)
			}
		}
		return nil
	})
}

func topicRowsFrom(topics []domain.Topic) []topicRow {
	rows := make([]topicRow, 0, len(topics))
	for i, t := range topics {
		data := make(map[string]string, len(t.Fields))
		for k, v := range t.Fields {
			data[k] = v
		}
		rows = append(rows, topicRow{PK: t.PK, Position: i, Data: data})
	}
	return rows
}

func questionRowsFrom(questions []domain.Question) []questionRow {
	rows := make([]questionRow, 0, len(questions))
	for _, q := range questions {
		options := q.Options
		if options == nil {
			options = []string{}
		}
		rows = append(rows, questionRow{Topic: q.Topic, Text: q.Text, Answer: q.Answer, Options: options})
	}
	return rows
}
