package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"faqbot/config"
	"faqbot/internal/adapter/analyzer"
	"faqbot/internal/adapter/cache"
	"faqbot/internal/adapter/embedding"
	"faqbot/internal/adapter/interactionlog"
	"faqbot/internal/adapter/memstore"
	"faqbot/internal/adapter/metrics"
	"faqbot/internal/adapter/redisstore"
	"faqbot/internal/adapter/retriever"
	"faqbot/internal/adapter/rules"
	"faqbot/internal/adapter/store"
	"faqbot/internal/adapter/vectorindex"
	"faqbot/internal/port"
	"faqbot/internal/usecase"
)

// engine bundles everything needed to answer queries from a built index.
type engine struct {
	index   *vectorindex.Index
	matcher *usecase.MatchEngine
	model   string
}

func newNormalizer(c *config.Config) *analyzer.Normalizer {
	reps := make([]analyzer.Replacement, len(c.Normalize.Replacements))
	for i, r := range c.Normalize.Replacements {
		reps[i] = analyzer.Replacement{From: r.From, To: r.To}
	}
	return analyzer.NewNormalizer(reps)
}

// loadEngine opens the built index, checks it matches the current
// configuration and wires the matching engine. m may be nil.
func loadEngine(c *config.Config, dir string, m *metrics.Metrics) (*engine, error) {
	dbPath := config.IndexDBPath(dir)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, usecase.ErrNoIndex
	}

	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	defer st.Close()

	normalizer := newNormalizer(c)
	if err := st.CheckCompatible(store.ComputeConfigHash(c, normalizer.Fingerprint())); err != nil {
		return nil, fmt.Errorf("%w; run 'faqbot build' again", err)
	}

	questions, answers, embeddings, err := st.LoadAligned()
	if err != nil {
		return nil, fmt.Errorf("failed to load index: %w", err)
	}
	index, err := vectorindex.New(questions, answers, embeddings)
	if err != nil {
		return nil, fmt.Errorf("failed to load index: %w", err)
	}

	embedder, err := embedding.New(c.Embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	var ranker port.Ranker = retriever.NewSemanticRetriever(index, embedder, normalizer)
	if c.Match.CacheSize > 0 {
		var opts []cache.Option
		if m != nil {
			opts = append(opts, cache.WithObserver(m))
		}
		ranker, err = cache.NewCachedRanker(ranker, c.Match.CacheSize, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create ranker cache: %w", err)
		}
	}

	matcher := usecase.NewMatchEngine(rules.NewEvaluator(), ranker,
		usecase.WithPolicy(usecase.Policy{
			High:        c.Match.HighThreshold,
			Low:         c.Match.LowThreshold,
			Suggestions: c.Match.Suggestions,
		}),
		usecase.WithLogger(slog.Default()),
	)

	slog.Debug("index loaded", "entries", index.Len(), "dimension", index.Dimension(), "model", embedder.ModelName())
	return &engine{index: index, matcher: matcher, model: embedder.ModelName()}, nil
}

// newMemory creates the configured conversation store and its closer.
func newMemory(c *config.Config) (port.ConversationStore, func() error, error) {
	switch c.Memory.Backend {
	case "redis":
		rs, err := redisstore.New(redisstore.Config{
			Addr:      c.Memory.Redis.Addr,
			Password:  os.Getenv(c.Memory.Redis.PasswordEnv),
			DB:        c.Memory.Redis.DB,
			KeyPrefix: c.Memory.Redis.KeyPrefix,
			MaxRecent: c.Memory.MaxRecent,
			TTL:       c.Memory.SessionTTL,
		})
		if err != nil {
			return nil, nil, err
		}
		return rs, rs.Close, nil
	default:
		ms := memstore.NewMemoryStore(c.Memory.MaxRecent, c.Memory.MaxSessions, c.Memory.SessionTTL)
		return ms, func() error { return nil }, nil
	}
}

// newInteractionLogger opens the CSV log, or discards records when no
// path is configured.
func newInteractionLogger(c *config.Config) (port.InteractionLogger, func() error, error) {
	if c.Log.Interactions == "" {
		return interactionlog.Nop{}, func() error { return nil }, nil
	}
	l, err := interactionlog.NewCSVLogger(resolvePath(c.Log.Interactions))
	if err != nil {
		return nil, nil, err
	}
	return l, l.Close, nil
}

// newChat wires a chat service over a loaded engine.
func newChat(c *config.Config, e *engine, prefix usecase.PrefixChooser) (*usecase.ChatService, func(), error) {
	memory, closeMemory, err := newMemory(c)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create conversation memory: %w", err)
	}
	logger, closeLog, err := newInteractionLogger(c)
	if err != nil {
		closeMemory()
		return nil, nil, fmt.Errorf("failed to open interaction log: %w", err)
	}

	opts := []usecase.ChatOption{
		usecase.WithInteractionLogger(logger),
		usecase.WithChatLogger(slog.Default()),
	}
	if prefix != nil {
		opts = append(opts, usecase.WithPrefixChooser(prefix))
	}

	chat := usecase.NewChatService(e.matcher, memory, e.index, opts...)
	cleanup := func() {
		if err := closeLog(); err != nil {
			slog.Warn("failed to close interaction log", "error", err)
		}
		if err := closeMemory(); err != nil {
			slog.Warn("failed to close conversation memory", "error", err)
		}
	}
	return chat, cleanup, nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", m, s)
}
