package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/panjf2000/ants/v2"

	"faqbot/internal/adapter/vectorindex"
	"faqbot/internal/domain"
	"faqbot/internal/port"
)

// BuildUseCase turns the raw corpus into the stored embedding index.
type BuildUseCase struct {
	source     port.CorpusSource
	normalizer port.Normalizer
	embedder   port.Embedder
	store      port.IndexStore

	batchSize  int
	workers    int
	maxRetries int
	retryWait  time.Duration
	progress   func(done int)
	logger     *slog.Logger
}

type BuildOption func(*BuildUseCase)

// WithBatching sets the embedding batch size and the worker pool size.
func WithBatching(batchSize, workers int) BuildOption {
	return func(u *BuildUseCase) {
		if batchSize > 0 {
			u.batchSize = batchSize
		}
		if workers > 0 {
			u.workers = workers
		}
	}
}

// WithRetries sets how often a failed batch is retried and the initial
// backoff interval.
func WithRetries(maxRetries int, initial time.Duration) BuildOption {
	return func(u *BuildUseCase) {
		if maxRetries >= 0 {
			u.maxRetries = maxRetries
		}
		if initial > 0 {
			u.retryWait = initial
		}
	}
}

// WithProgress registers a callback receiving the number of questions
// embedded by each finished batch.
func WithProgress(fn func(done int)) BuildOption {
	return func(u *BuildUseCase) {
		u.progress = fn
	}
}

func WithBuildLogger(logger *slog.Logger) BuildOption {
	return func(u *BuildUseCase) {
		if logger == nil {
			logger = slog.Default()
		}
		u.logger = logger
	}
}

func NewBuildUseCase(
	source port.CorpusSource,
	normalizer port.Normalizer,
	embedder port.Embedder,
	store port.IndexStore,
	opts ...BuildOption,
) *BuildUseCase {
	u := &BuildUseCase{
		source:     source,
		normalizer: normalizer,
		embedder:   embedder,
		store:      store,
		batchSize:  32,
		workers:    4,
		maxRetries: 3,
		retryWait:  500 * time.Millisecond,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// BuildResult summarizes a build.
type BuildResult struct {
	Entries   int
	Batches   int
	Dimension int
	Model     string
	Duration  time.Duration
}

// Rows loads the corpus without building, so callers can size progress
// output before Build runs.
func (u *BuildUseCase) Rows(root string) ([]port.CorpusRow, error) {
	rows, err := u.source.Load(root)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyCorpus
	}
	return rows, nil
}

// Build embeds every corpus row and replaces the stored index.
func (u *BuildUseCase) Build(ctx context.Context, rows []port.CorpusRow) (*BuildResult, error) {
	start := time.Now()
	if len(rows) == 0 {
		return nil, ErrEmptyCorpus
	}

	texts := make([]string, len(rows))
	for i, r := range rows {
		texts[i] = u.normalizer.Normalize(r.Question)
	}

	vectors, batches, err := u.embedAll(ctx, texts)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.FAQEntry, len(rows))
	for i, r := range rows {
		entries[i] = domain.FAQEntry{
			Question:  r.Question,
			Answer:    r.Answer,
			Embedding: vectorindex.Normalize(vectors[i]),
		}
	}

	// fail before writing if the vectors cannot form an index
	if _, err := vectorindex.New(questionsOf(entries), answersOf(entries), embeddingsOf(entries)); err != nil {
		return nil, fmt.Errorf("embedded corpus is invalid: %w", err)
	}

	if err := u.store.PutEntries(entries, u.embedder.ModelName()); err != nil {
		return nil, fmt.Errorf("failed to store index: %w", err)
	}

	result := &BuildResult{
		Entries:   len(entries),
		Batches:   batches,
		Dimension: len(entries[0].Embedding),
		Model:     u.embedder.ModelName(),
		Duration:  time.Since(start),
	}
	u.logger.Info("index built",
		"entries", result.Entries,
		"batches", result.Batches,
		"dimension", result.Dimension,
		"model", result.Model,
		"duration", result.Duration)
	return result, nil
}

// embedAll embeds texts in batches on a worker pool. Each batch writes into
// its own range of the result slice.
func (u *BuildUseCase) embedAll(ctx context.Context, texts []string) ([][]float32, int, error) {
	pool, err := ants.NewPool(u.workers)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	vectors := make([][]float32, len(texts))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		batches  int
	)
	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for start := 0; start < len(texts); start += u.batchSize {
		end := start + u.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batches++

		lo, hi := start, end
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			embs, err := u.embedBatch(ctx, texts[lo:hi])
			if err != nil {
				setErr(fmt.Errorf("batch %d-%d: %w", lo, hi, err))
				return
			}
			copy(vectors[lo:hi], embs)
			if u.progress != nil {
				mu.Lock()
				u.progress(hi - lo)
				mu.Unlock()
			}
		})
		if submitErr != nil {
			wg.Done()
			setErr(fmt.Errorf("failed to submit batch: %w", submitErr))
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, 0, fmt.Errorf("failed to embed corpus: %w", firstErr)
	}
	return vectors, batches, nil
}

// embedBatch calls the embedder with exponential backoff.
func (u *BuildUseCase) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = u.retryWait
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(u.maxRetries)), ctx)

	var out [][]float32
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		embs, err := u.embedder.Embed(texts)
		if err != nil {
			u.logger.Warn("embedding batch failed", "attempt", attempt, "error", err)
			return err
		}
		if len(embs) != len(texts) {
			return backoff.Permanent(fmt.Errorf("embedder returned %d vectors for %d texts", len(embs), len(texts)))
		}
		out = embs
		return nil
	}, policy)
	return out, err
}

func questionsOf(entries []domain.FAQEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Question
	}
	return out
}

func answersOf(entries []domain.FAQEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Answer
	}
	return out
}

func embeddingsOf(entries []domain.FAQEntry) [][]float32 {
	out := make([][]float32, len(entries))
	for i, e := range entries {
		out[i] = e.Embedding
	}
	return out
}
