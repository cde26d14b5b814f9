package usecase

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"faqbot/internal/domain"
	"faqbot/internal/port"
)

// EvalCase is one labeled query.
type EvalCase struct {
	Query            string
	ExpectedQuestion string
}

// EvalReport summarizes how the engine performs on labeled queries.
type EvalReport struct {
	Total      int
	Answered   int
	Suggested  int
	Fallback   int
	RuleBased  int
	Correct    int // answered with the expected question
	InSuggests int // expected question among the suggestions
	Misses     []EvalMiss
}

// EvalMiss records a query answered with the wrong question.
type EvalMiss struct {
	Query    string
	Expected string
	Got      string
	Score    float64
}

// Accuracy is the share of semantic answers that hit the expected question.
func (r *EvalReport) Accuracy() float64 {
	semantic := r.Answered - r.RuleBased
	if semantic <= 0 {
		return 0
	}
	return float64(r.Correct) / float64(semantic)
}

// SuggestionRecall is the share of suggested outcomes that included the
// expected question.
func (r *EvalReport) SuggestionRecall() float64 {
	if r.Suggested == 0 {
		return 0
	}
	return float64(r.InSuggests) / float64(r.Suggested)
}

// EvalUseCase runs labeled queries through a matcher.
type EvalUseCase struct {
	matcher port.Matcher
}

func NewEvalUseCase(matcher port.Matcher) *EvalUseCase {
	return &EvalUseCase{matcher: matcher}
}

// ReadCases parses a CSV with query and expected_question columns.
func ReadCases(r io.Reader) ([]EvalCase, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	qi, ei := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "query":
			qi = i
		case "expected_question":
			ei = i
		}
	}
	if qi < 0 || ei < 0 {
		return nil, fmt.Errorf("eval csv needs query and expected_question columns, got %v", header)
	}

	var cases []EvalCase
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if qi >= len(rec) || ei >= len(rec) || strings.TrimSpace(rec[qi]) == "" {
			continue
		}
		cases = append(cases, EvalCase{
			Query:            rec[qi],
			ExpectedQuestion: strings.TrimSpace(rec[ei]),
		})
	}
	return cases, nil
}

// Run evaluates every case.
func (u *EvalUseCase) Run(cases []EvalCase) (*EvalReport, error) {
	report := &EvalReport{}
	for _, c := range cases {
		res, err := u.matcher.GetBest(c.Query)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", c.Query, err)
		}
		report.Total++

		switch res.Outcome {
		case domain.OutcomeAnswered:
			report.Answered++
			if res.RuleBased() {
				report.RuleBased++
				continue
			}
			if res.Question == c.ExpectedQuestion {
				report.Correct++
			} else {
				report.Misses = append(report.Misses, EvalMiss{
					Query:    c.Query,
					Expected: c.ExpectedQuestion,
					Got:      res.Question,
					Score:    res.Score,
				})
			}
		case domain.OutcomeSuggested:
			report.Suggested++
			for _, s := range res.Suggestions {
				if s.Question == c.ExpectedQuestion {
					report.InSuggests++
					break
				}
			}
		default:
			report.Fallback++
		}
	}
	return report, nil
}
