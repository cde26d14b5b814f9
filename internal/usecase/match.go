package usecase

import (
	"log/slog"
	"strings"

	"faqbot/internal/domain"
	"faqbot/internal/port"
)

const (
	DefaultHighThreshold = 0.60
	DefaultLowThreshold  = 0.40
	DefaultSuggestions   = 3

	FallbackMessage   = "I’m not sure about this. Maybe try asking in a different way?"
	EmptyQueryMessage = "Please enter a question."
)

// RuleEvaluator answers queries that match a keyword rule.
type RuleEvaluator interface {
	Evaluate(text string) (domain.MatchResult, bool)
}

// Policy maps the top semantic score to an outcome. Scores at or above
// High are answered, scores in [Low, High) produce suggestions, and the
// rest fall back.
type Policy struct {
	High        float64
	Low         float64
	Suggestions int
}

func DefaultPolicy() Policy {
	return Policy{
		High:        DefaultHighThreshold,
		Low:         DefaultLowThreshold,
		Suggestions: DefaultSuggestions,
	}
}

// Decide applies the default policy to ranked candidates.
func Decide(top []domain.Candidate) domain.MatchResult {
	return DefaultPolicy().Decide(top)
}

// Decide turns candidates ordered by descending score into a result.
func (p Policy) Decide(top []domain.Candidate) domain.MatchResult {
	if len(top) == 0 {
		return fallback(FallbackMessage)
	}

	best := top[0]
	switch {
	case best.Score >= p.High:
		return domain.MatchResult{
			Outcome:  domain.OutcomeAnswered,
			Question: best.Question,
			Answer:   best.Answer,
			Score:    best.Score,
		}
	case best.Score >= p.Low:
		n := p.Suggestions
		if n > len(top) {
			n = len(top)
		}
		suggestions := make([]domain.Candidate, n)
		copy(suggestions, top[:n])
		return domain.MatchResult{
			Outcome:     domain.OutcomeSuggested,
			Score:       best.Score,
			Suggestions: suggestions,
		}
	default:
		return fallback(FallbackMessage)
	}
}

func fallback(message string) domain.MatchResult {
	return domain.MatchResult{
		Outcome: domain.OutcomeFallback,
		Answer:  message,
	}
}

// MatchEngine resolves a query with keyword rules first and semantic
// similarity second.
type MatchEngine struct {
	rules  RuleEvaluator
	ranker port.Ranker
	policy Policy
	logger *slog.Logger
}

type MatchOption func(*MatchEngine)

func WithPolicy(p Policy) MatchOption {
	return func(e *MatchEngine) {
		e.policy = p
	}
}

func WithLogger(logger *slog.Logger) MatchOption {
	return func(e *MatchEngine) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// NewMatchEngine creates an engine. rules may be nil to disable rule
// evaluation.
func NewMatchEngine(rules RuleEvaluator, ranker port.Ranker, opts ...MatchOption) *MatchEngine {
	e := &MatchEngine{
		rules:  rules,
		ranker: ranker,
		policy: DefaultPolicy(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.policy.Suggestions < 1 {
		e.policy.Suggestions = DefaultSuggestions
	}
	return e
}

// GetBest returns the decision for a query. Every outcome, including a
// fallback, is a successful result; errors come only from the ranker.
func (e *MatchEngine) GetBest(query string) (domain.MatchResult, error) {
	if strings.TrimSpace(query) == "" {
		return fallback(EmptyQueryMessage), nil
	}

	if e.rules != nil {
		if res, ok := e.rules.Evaluate(query); ok {
			e.logger.Debug("rule matched", "rule", res.Rule)
			return res, nil
		}
	}

	top, err := e.ranker.TopK(query, e.policy.Suggestions)
	if err != nil {
		return domain.MatchResult{}, err
	}

	res := e.policy.Decide(top)
	e.logger.Debug("semantic match",
		"outcome", res.Outcome,
		"score", res.Score,
		"candidates", len(top))
	return res, nil
}

// FindTopK returns the k best semantic candidates without applying rules
// or thresholds.
func (e *MatchEngine) FindTopK(query string, k int) ([]domain.Candidate, error) {
	if strings.TrimSpace(query) == "" || k <= 0 {
		return nil, nil
	}
	return e.ranker.TopK(query, k)
}
