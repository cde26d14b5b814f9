package rules

import (
	"strings"
	"unicode"

	"faqbot/internal/domain"
)

// Rule is a keyword detector paired with its fixed response. Respond
// receives the trimmed, lowercased query and returns "" when the rule does
// not apply.
type Rule struct {
	Name    string
	Respond func(lower string) string
}

const (
	GreetingAnswer     = "Hello! How can I help you with Moodle, IMS, or registration?"
	PasswordAnswer     = "It seems you forgot your password. Please visit the Moodle password reset page to recover it."
	RegistrationAnswer = "If you are having registration issues, please check your email for confirmation or contact support at registration@example.com."
	ThanksAnswer       = "Glad to help!"
	AcknowledgeAnswer  = "Sure, take your time. Let me know if you need anything."
)

// DefaultRules returns the built-in detectors in priority order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "greeting", Respond: greeting},
		{Name: "password_reset", Respond: passwordReset},
		{Name: "registration", Respond: registration},
		{Name: "emotional", Respond: emotional},
	}
}

var greetingWords = map[string]struct{}{"hi": {}, "hello": {}, "hey": {}}

// greeting matches whole words only, so "this" or "they" do not count as
// a greeting the way a plain substring test would.
func greeting(lower string) string {
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		if _, ok := greetingWords[w]; ok {
			return GreetingAnswer
		}
	}
	return ""
}

func passwordReset(lower string) string {
	if strings.Contains(lower, "forgot") && strings.Contains(lower, "password") {
		return PasswordAnswer
	}
	return ""
}

func registration(lower string) string {
	if strings.Contains(lower, "registration") || strings.Contains(lower, "email not received") {
		return RegistrationAnswer
	}
	return ""
}

func emotional(lower string) string {
	if strings.Contains(lower, "thanks") || strings.Contains(lower, "thank you") {
		return ThanksAnswer
	}
	switch lower {
	case "ok", "hmm", "again":
		return AcknowledgeAnswer
	}
	return ""
}

// Evaluator runs rules in order and stops at the first match.
type Evaluator struct {
	rules []Rule
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithRules appends rules after the existing ones.
func WithRules(rules ...Rule) Option {
	return func(e *Evaluator) {
		e.rules = append(e.rules, rules...)
	}
}

// WithoutDefaults drops the built-in rules.
func WithoutDefaults() Option {
	return func(e *Evaluator) {
		e.rules = nil
	}
}

// NewEvaluator creates an evaluator with the default rules.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{rules: DefaultRules()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate returns the response of the first rule that matches text.
func (e *Evaluator) Evaluate(text string) (domain.MatchResult, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return domain.MatchResult{}, false
	}
	for _, r := range e.rules {
		if answer := r.Respond(lower); answer != "" {
			return domain.MatchResult{
				Outcome: domain.OutcomeAnswered,
				Answer:  answer,
				Score:   1.0,
				Rule:    r.Name,
			}, true
		}
	}
	return domain.MatchResult{}, false
}

// Names lists the rules in evaluation order.
func (e *Evaluator) Names() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}
