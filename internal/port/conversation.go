package port

import (
	"context"

	"faqbot/internal/domain"
)

// ConversationStore keeps short-lived per-session memory. Unknown sessions
// behave as empty ones.
type ConversationStore interface {
	// RecentQueries returns the remembered queries, oldest first.
	RecentQueries(ctx context.Context, sessionID string) ([]string, error)

	// AppendQuery remembers a query, evicting the oldest one past the limit.
	AppendQuery(ctx context.Context, sessionID, query string) error

	// LastIntent returns the canonical question last answered in the session.
	LastIntent(ctx context.Context, sessionID string) (string, bool, error)

	SetLastIntent(ctx context.Context, sessionID, intent string) error
}

// InteractionLogger records resolved queries. It is write-only.
type InteractionLogger interface {
	Log(rec domain.Interaction) error
}
