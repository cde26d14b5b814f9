package port

import "faqbot/internal/domain"

// Ranker ranks corpus entries against a raw query.
type Ranker interface {
	// TopK returns at most k candidates ordered by descending score.
	TopK(query string, k int) ([]domain.Candidate, error)
}

// Matcher turns a raw query into a decision.
type Matcher interface {
	GetBest(query string) (domain.MatchResult, error)
	FindTopK(query string, k int) ([]domain.Candidate, error)
}
