package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"faqbot/internal/port"
)

var (
	ErrMissingColumn = errors.New("csv header is missing a required column")
	ErrNoFiles       = errors.New("no corpus files matched")
)

// Source reads question/answer rows from CSV files found by a Walker.
type Source struct {
	walker         *Walker
	questionColumn string
	answerColumn   string
}

func NewSource(walker *Walker, questionColumn, answerColumn string) *Source {
	return &Source{
		walker:         walker,
		questionColumn: questionColumn,
		answerColumn:   answerColumn,
	}
}

// Load returns rows from every matched file, file order then row order.
// Rows with a blank question or answer are dropped.
func (s *Source) Load(root string) ([]port.CorpusRow, error) {
	files, err := s.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk corpus: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoFiles, root)
	}

	var rows []port.CorpusRow
	for _, path := range files {
		fileRows, err := s.readFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		rows = append(rows, fileRows...)
	}
	return rows, nil
}

func (s *Source) readFile(path string) ([]port.CorpusRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseCSV(f, path, s.questionColumn, s.answerColumn)
}

// ParseCSV reads a header row and returns the question/answer pairs below it.
func ParseCSV(r io.Reader, source, questionColumn, answerColumn string) ([]port.CorpusRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	qi, ai := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch name {
		case questionColumn:
			qi = i
		case answerColumn:
			ai = i
		}
	}
	if qi < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, questionColumn)
	}
	if ai < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, answerColumn)
	}

	var rows []port.CorpusRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if qi >= len(record) || ai >= len(record) {
			continue
		}
		q := strings.TrimSpace(record[qi])
		a := strings.TrimSpace(record[ai])
		if q == "" || a == "" {
			continue
		}
		rows = append(rows, port.CorpusRow{Question: q, Answer: a, Source: source})
	}
	return rows, nil
}
