package domain

import "time"

// FAQEntry is one canonical question of the corpus with its answer and
// unit-length embedding.
type FAQEntry struct {
	Question  string
	Answer    string
	Embedding []float32
}

// Candidate is a ranked corpus entry.
type Candidate struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float64 `json:"score"`
}

// Outcome tags how confident the matching engine was.
type Outcome string

const (
	OutcomeAnswered  Outcome = "answered"
	OutcomeSuggested Outcome = "suggested"
	OutcomeFallback  Outcome = "fallback"
)

// MatchResult is the engine's decision for a single query.
type MatchResult struct {
	Outcome     Outcome
	Question    string // empty unless a corpus entry was answered
	Answer      string // empty for suggestions
	Score       float64
	Suggestions []Candidate
	Rule        string // name of the rule that fired, empty for semantic results
}

// RuleBased reports whether a keyword rule produced the result.
func (r MatchResult) RuleBased() bool {
	return r.Rule != ""
}

// ReplyKind says which path of the chat flow produced a reply.
type ReplyKind string

const (
	ReplyEmpty      ReplyKind = "empty"
	ReplyRepetition ReplyKind = "repetition"
	ReplyFollowUp   ReplyKind = "follow_up"
	ReplyRule       ReplyKind = "rule"
	ReplyAnswered   ReplyKind = "answered"
	ReplySuggested  ReplyKind = "suggested"
	ReplyFallback   ReplyKind = "fallback"
)

// Reply is what the chat layer sends back to the user.
type Reply struct {
	Answer      string      `json:"answer"`
	Confidence  float64     `json:"confidence"`
	Intent      string      `json:"intent,omitempty"`
	Outcome     Outcome     `json:"outcome"`
	Kind        ReplyKind   `json:"kind"`
	Suggestions []Candidate `json:"suggestions"`
}

// Interaction is one audit record of a resolved query.
type Interaction struct {
	Time       time.Time
	SessionID  string
	Query      string
	Answer     string
	Confidence float64
}

// Stats describes a built index.
type Stats struct {
	Entries   int
	Dimension int
	Model     string
}
