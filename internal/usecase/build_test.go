package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faqbot/internal/adapter/analyzer"
	"faqbot/internal/adapter/embedding"
	"faqbot/internal/adapter/vectorindex"
	"faqbot/internal/domain"
	"faqbot/internal/port"
)

type staticSource struct {
	rows []port.CorpusRow
	err  error
}

func (s staticSource) Load(string) ([]port.CorpusRow, error) {
	return s.rows, s.err
}

type memIndexStore struct {
	entries []domain.FAQEntry
	model   string
}

func (s *memIndexStore) PutEntries(entries []domain.FAQEntry, model string) error {
	s.entries = entries
	s.model = model
	return nil
}

func (s *memIndexStore) LoadAligned() ([]string, []string, [][]float32, error) {
	return questionsOf(s.entries), answersOf(s.entries), embeddingsOf(s.entries), nil
}

func (s *memIndexStore) GetStats() (domain.Stats, error) {
	return domain.Stats{Entries: len(s.entries), Model: s.model}, nil
}

func (s *memIndexStore) Close() error { return nil }

// flakyEmbedder fails the first failures calls.
type flakyEmbedder struct {
	*embedding.HashingEmbedder
	failures int32
	calls    atomic.Int32
}

func (e *flakyEmbedder) Embed(texts []string) ([][]float32, error) {
	if e.calls.Add(1) <= e.failures {
		return nil, errors.New("rate limited")
	}
	return e.HashingEmbedder.Embed(texts)
}

func corpusRows(n int) []port.CorpusRow {
	words := []string{"password", "portal", "course", "exam", "grade", "library", "email", "wifi"}
	rows := make([]port.CorpusRow, n)
	for i := range rows {
		rows[i] = port.CorpusRow{
			Question: "How do I fix my " + words[i%len(words)] + " problem " + string(rune('a'+i%26)) + "?",
			Answer:   "Answer " + string(rune('a'+i%26)),
		}
	}
	return rows
}

func TestBuild_StoresNormalizedAlignedEntries(t *testing.T) {
	rows := corpusRows(10)
	store := &memIndexStore{}

	var mu sync.Mutex
	done := 0
	uc := NewBuildUseCase(staticSource{rows: rows}, analyzer.NewNormalizer(nil), embedding.NewHashingEmbedder(64), store,
		WithBatching(3, 2),
		WithProgress(func(n int) {
			mu.Lock()
			done += n
			mu.Unlock()
		}),
	)

	loaded, err := uc.Rows("/unused")
	require.NoError(t, err)

	res, err := uc.Build(context.Background(), loaded)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Entries)
	assert.Equal(t, 4, res.Batches)
	assert.Equal(t, 64, res.Dimension)
	assert.Equal(t, "hashing-v1", res.Model)
	assert.Equal(t, 10, done)

	require.Len(t, store.entries, 10)
	for i, e := range store.entries {
		assert.Equal(t, rows[i].Question, e.Question)
		assert.Equal(t, rows[i].Answer, e.Answer)
		assert.InDelta(t, 1.0, vectorindex.Dot(e.Embedding, e.Embedding), 1e-4)
	}
	assert.Equal(t, "hashing-v1", store.model)
}

func TestBuild_RetriesTransientFailures(t *testing.T) {
	emb := &flakyEmbedder{HashingEmbedder: embedding.NewHashingEmbedder(32), failures: 2}
	store := &memIndexStore{}
	uc := NewBuildUseCase(staticSource{}, analyzer.NewNormalizer(nil), emb, store,
		WithBatching(100, 1),
		WithRetries(3, time.Millisecond),
	)

	res, err := uc.Build(context.Background(), corpusRows(5))
	require.NoError(t, err)
	assert.Equal(t, 5, res.Entries)
	assert.Equal(t, int32(3), emb.calls.Load())
}

func TestBuild_GivesUpAfterRetries(t *testing.T) {
	emb := &flakyEmbedder{HashingEmbedder: embedding.NewHashingEmbedder(32), failures: 100}
	store := &memIndexStore{}
	uc := NewBuildUseCase(staticSource{}, analyzer.NewNormalizer(nil), emb, store,
		WithBatching(100, 1),
		WithRetries(2, time.Millisecond),
	)

	_, err := uc.Build(context.Background(), corpusRows(5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Equal(t, int32(3), emb.calls.Load())
	assert.Nil(t, store.entries)
}

func TestBuild_EmptyCorpus(t *testing.T) {
	uc := NewBuildUseCase(staticSource{}, analyzer.NewNormalizer(nil), embedding.NewHashingEmbedder(32), &memIndexStore{})

	_, err := uc.Rows("/unused")
	assert.ErrorIs(t, err, ErrEmptyCorpus)

	_, err = uc.Build(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestBuild_SourceError(t *testing.T) {
	boom := errors.New("no such dir")
	uc := NewBuildUseCase(staticSource{err: boom}, analyzer.NewNormalizer(nil), embedding.NewHashingEmbedder(32), &memIndexStore{})

	_, err := uc.Rows("/unused")
	assert.ErrorIs(t, err, boom)
}

func TestBuild_QueryMatchesBuiltEntry(t *testing.T) {
	norm := analyzer.NewNormalizer(nil)
	emb := embedding.NewHashingEmbedder(128)
	store := &memIndexStore{}
	rows := []port.CorpusRow{
		{Question: "How do I reset my password?", Answer: "Reset page."},
		{Question: "Where is the library?", Answer: "Building B."},
	}

	_, err := NewBuildUseCase(staticSource{}, norm, emb, store).Build(context.Background(), rows)
	require.NoError(t, err)

	q, a, e, err := store.LoadAligned()
	require.NoError(t, err)
	idx, err := vectorindex.New(q, a, e)
	require.NoError(t, err)

	vecs, err := emb.Embed([]string{norm.Normalize("where is the LIBRARY")})
	require.NoError(t, err)
	top, err := idx.Search(vectorindex.Normalize(vecs[0]), 1)
	require.NoError(t, err)
	assert.Equal(t, "Where is the library?", top[0].Question)
}
