// Package content imports trivia topics and questions from delimited files.
package content

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gameroom-service/internal/domain"
)

// optionColumns are the question columns holding answer options, in order.
var optionColumns = []string{"1", "2", "3", "4"}

// readRows parses a CSV file with a header row into one map per record.
func readRows(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrContentLoad, path, err)
	}
	defer f.Close()
	return parseRows(f, path)
}

func parseRows(r io.Reader, name string) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s: missing header row", domain.ErrContentLoad, name)
		}
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrContentLoad, name, err)
	}
	for i := range header {
		header[i] = strings.TrimPrefix(strings.TrimSpace(header[i]), "\ufeff")
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrContentLoad, name, err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			row[col] = record[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// CSVTopicLoader reads topics from a file whose header names a pk column.
type CSVTopicLoader struct {
	path string
}

func NewCSVTopicLoader(path string) *CSVTopicLoader {
	return &CSVTopicLoader{path: path}
}

// LoadTopics returns topics in file order.
func (l *CSVTopicLoader) LoadTopics(_ context.Context) ([]domain.Topic, error) {
	rows, err := readRows(l.path)
	if err != nil {
		return nil, err
	}
	topics := make([]domain.Topic, 0, len(rows))
	for i, row := range rows {
		pk, ok := row["pk"]
		if !ok {
			return nil, fmt.Errorf("%w: %s row %d: missing pk column", domain.ErrContentLoad, l.path, i+2)
		}
		fields := make(map[string]string, len(row))
		for k, v := range row {
			if k != "pk" {
				fields[k] = v
			}
		}
		topics = append(topics, domain.Topic{PK: pk, Fields: fields})
	}
	return topics, nil
}

// CSVQuestionLoader reads questions with topic, text, answer and option columns.
type CSVQuestionLoader struct {
	path string
}

func NewCSVQuestionLoader(path string) *CSVQuestionLoader {
	return &CSVQuestionLoader{path: path}
}

// LoadQuestions returns questions in file order.
func (l *CSVQuestionLoader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	rows, err := readRows(l.path)
	if err != nil {
		return nil, err
	}
	return questionsFromRows(rows, l.path)
}

func questionsFromRows(rows []map[string]string, name string) ([]domain.Question, error) {
	questions := make([]domain.Question, 0, len(rows))
	for i, row := range rows {
		line := i + 2
		topic, ok := row["topic"]
		if !ok {
			return nil, fmt.Errorf("%w: %s row %d: missing topic column", domain.ErrContentLoad, name, line)
		}
		answer, err := strconv.Atoi(strings.TrimSpace(row["answer"]))
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: answer %q is not a number", domain.ErrContentLoad, name, line, row["answer"])
		}
		var options []string
		for _, col := range optionColumns {
			if v, ok := row[col]; ok {
				options = append(options, v)
			}
		}
		questions = append(questions, domain.Question{
			Topic:   topic,
			Text:    row["text"],
			Answer:  answer,
			Options: options,
		})
	}
	return questions, nil
}
