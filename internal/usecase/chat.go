package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"faqbot/internal/domain"
	"faqbot/internal/port"
)

const (
	RepetitionMessage = "You already asked this. Would you like more details?"
	SuggestionMessage = "I found a few related questions. Did you mean one of these?"

	RepetitionIntent = "repetition"
)

// DefaultPrefixes are prepended to direct answers.
var DefaultPrefixes = []string{
	"Sure! ",
	"I can help with that. ",
	"Don’t worry, here’s what you can do: ",
}

// FollowUpPhrases re-serve the last answer of the session. They are
// compared exactly against the trimmed query.
var FollowUpPhrases = []string{
	"but i still cannot login",
	"it didn't work",
	"it didn’t work",
	"same issue",
	"still not working",
}

// PrefixChooser picks the polite prefix for an answer.
type PrefixChooser func() string

// RandomPrefix picks uniformly from prefixes using rng. It is safe for
// concurrent use.
func RandomPrefix(prefixes []string, rng *rand.Rand) PrefixChooser {
	var mu sync.Mutex
	return func() string {
		if len(prefixes) == 0 {
			return ""
		}
		mu.Lock()
		i := rng.IntN(len(prefixes))
		mu.Unlock()
		return prefixes[i]
	}
}

// FixedPrefix always returns s.
func FixedPrefix(s string) PrefixChooser {
	return func() string { return s }
}

// IntentResolver resolves a canonical question back to its corpus entry.
type IntentResolver interface {
	Lookup(question string) (domain.FAQEntry, bool)
}

// ChatService runs one conversational turn: repetition and follow-up
// detection against session memory, then the matching engine.
type ChatService struct {
	matcher      port.Matcher
	memory       port.ConversationStore
	intents      IntentResolver
	interactions port.InteractionLogger
	prefix       PrefixChooser
	now          func() time.Time
	logger       *slog.Logger
}

type ChatOption func(*ChatService)

func WithInteractionLogger(l port.InteractionLogger) ChatOption {
	return func(s *ChatService) {
		s.interactions = l
	}
}

func WithPrefixChooser(p PrefixChooser) ChatOption {
	return func(s *ChatService) {
		s.prefix = p
	}
}

func WithClock(now func() time.Time) ChatOption {
	return func(s *ChatService) {
		s.now = now
	}
}

func WithChatLogger(logger *slog.Logger) ChatOption {
	return func(s *ChatService) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

func NewChatService(
	matcher port.Matcher,
	memory port.ConversationStore,
	intents IntentResolver,
	opts ...ChatOption,
) *ChatService {
	s := &ChatService{
		matcher: matcher,
		memory:  memory,
		intents: intents,
		prefix:  RandomPrefix(DefaultPrefixes, rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))),
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle answers one query for a session. Callers serialize requests of
// the same session.
func (s *ChatService) Handle(ctx context.Context, sessionID, query string) (domain.Reply, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Reply{
			Answer:      EmptyQueryMessage,
			Outcome:     domain.OutcomeFallback,
			Kind:        domain.ReplyEmpty,
			Suggestions: []domain.Candidate{},
		}, nil
	}

	recent, err := s.memory.RecentQueries(ctx, sessionID)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("failed to read session memory: %w", err)
	}

	if slices.Contains(recent, query) {
		reply := domain.Reply{
			Answer:      RepetitionMessage,
			Confidence:  1.0,
			Intent:      RepetitionIntent,
			Outcome:     domain.OutcomeAnswered,
			Kind:        domain.ReplyRepetition,
			Suggestions: []domain.Candidate{},
		}
		return s.finish(ctx, sessionID, query, reply, "")
	}

	if slices.Contains(FollowUpPhrases, query) {
		reply, ok, err := s.followUp(ctx, sessionID)
		if err != nil {
			return domain.Reply{}, err
		}
		if ok {
			return s.finish(ctx, sessionID, query, reply, "")
		}
	}

	res, err := s.matcher.GetBest(query)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("failed to match query: %w", err)
	}

	var (
		reply  domain.Reply
		intent string
	)
	switch res.Outcome {
	case domain.OutcomeAnswered:
		reply = domain.Reply{
			Answer:     s.polite(res.Answer),
			Confidence: res.Score,
			Outcome:    domain.OutcomeAnswered,
			Kind:       domain.ReplyAnswered,
			Intent:     res.Question,
		}
		if res.RuleBased() {
			reply.Kind = domain.ReplyRule
			reply.Intent = res.Rule
		} else {
			intent = res.Question
		}
	case domain.OutcomeSuggested:
		reply = domain.Reply{
			Answer:      SuggestionMessage,
			Confidence:  res.Score,
			Outcome:     domain.OutcomeSuggested,
			Kind:        domain.ReplySuggested,
			Suggestions: res.Suggestions,
		}
	default:
		reply = domain.Reply{
			Answer:  s.polite(FallbackMessage),
			Outcome: domain.OutcomeFallback,
			Kind:    domain.ReplyFallback,
		}
	}
	if reply.Suggestions == nil {
		reply.Suggestions = []domain.Candidate{}
	}

	return s.finish(ctx, sessionID, query, reply, intent)
}

// followUp re-serves the answer to the session's last intent, if any.
func (s *ChatService) followUp(ctx context.Context, sessionID string) (domain.Reply, bool, error) {
	last, ok, err := s.memory.LastIntent(ctx, sessionID)
	if err != nil {
		return domain.Reply{}, false, fmt.Errorf("failed to read last intent: %w", err)
	}
	if !ok {
		return domain.Reply{}, false, nil
	}

	entry, found := s.intents.Lookup(last)
	if !found {
		s.logger.Warn("last intent not in index", "session", sessionID, "intent", last)
		return domain.Reply{}, false, nil
	}

	return domain.Reply{
		Answer:      s.polite(entry.Answer),
		Confidence:  1.0,
		Intent:      last,
		Outcome:     domain.OutcomeAnswered,
		Kind:        domain.ReplyFollowUp,
		Suggestions: []domain.Candidate{},
	}, true, nil
}

// finish updates memory and writes the interaction record.
func (s *ChatService) finish(ctx context.Context, sessionID, query string, reply domain.Reply, intent string) (domain.Reply, error) {
	if err := s.memory.AppendQuery(ctx, sessionID, query); err != nil {
		return domain.Reply{}, fmt.Errorf("failed to update session memory: %w", err)
	}
	if intent != "" {
		if err := s.memory.SetLastIntent(ctx, sessionID, intent); err != nil {
			return domain.Reply{}, fmt.Errorf("failed to update last intent: %w", err)
		}
	}

	if s.interactions != nil {
		rec := domain.Interaction{
			Time:       s.now(),
			SessionID:  sessionID,
			Query:      query,
			Answer:     reply.Answer,
			Confidence: reply.Confidence,
		}
		if err := s.interactions.Log(rec); err != nil {
			// the reply is still valid
			s.logger.Error("failed to log interaction", "session", sessionID, "error", err)
		}
	}

	s.logger.Debug("reply", "session", sessionID, "kind", reply.Kind, "confidence", reply.Confidence)
	return reply, nil
}

func (s *ChatService) polite(answer string) string {
	return s.prefix() + answer
}
