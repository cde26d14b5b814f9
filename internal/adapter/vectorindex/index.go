package vectorindex

import (
	"errors"
	"fmt"
	"sort"

	"faqbot/internal/domain"
)

var (
	ErrMisaligned        = errors.New("questions, answers and embeddings are not aligned")
	ErrEmptyCorpus       = errors.New("corpus is empty")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Index is an immutable in-memory collection of unit-length FAQ vectors.
// It is safe for concurrent reads.
type Index struct {
	entries    []domain.FAQEntry
	byQuestion map[string]int
	dimension  int
}

// New builds an index from three aligned collections. Every embedding is
// re-normalized so dot products are cosine similarities.
func New(questions, answers []string, embeddings [][]float32) (*Index, error) {
	if len(questions) != len(answers) || len(questions) != len(embeddings) {
		return nil, fmt.Errorf("%w: %d questions, %d answers, %d embeddings",
			ErrMisaligned, len(questions), len(answers), len(embeddings))
	}
	if len(questions) == 0 {
		return nil, ErrEmptyCorpus
	}

	dim := len(embeddings[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: zero-length embedding", ErrDimensionMismatch)
	}

	idx := &Index{
		entries:    make([]domain.FAQEntry, len(questions)),
		byQuestion: make(map[string]int, len(questions)),
		dimension:  dim,
	}
	for i := range questions {
		if len(embeddings[i]) != dim {
			return nil, fmt.Errorf("%w: entry %d has %d, expected %d",
				ErrDimensionMismatch, i, len(embeddings[i]), dim)
		}
		idx.entries[i] = domain.FAQEntry{
			Question:  questions[i],
			Answer:    answers[i],
			Embedding: Normalize(embeddings[i]),
		}
		// first occurrence wins for duplicate questions
		if _, dup := idx.byQuestion[questions[i]]; !dup {
			idx.byQuestion[questions[i]] = i
		}
	}
	return idx, nil
}

// Search scores every entry against a unit-length query vector and returns
// the best min(k, N) candidates. Equal scores keep corpus order.
func (x *Index) Search(query []float32, k int) ([]domain.Candidate, error) {
	if len(query) != x.dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, x.dimension, len(query))
	}
	if k <= 0 {
		return nil, nil
	}

	scores := make([]domain.Candidate, len(x.entries))
	for i, e := range x.entries {
		scores[i] = domain.Candidate{
			Question: e.Question,
			Answer:   e.Answer,
			Score:    Dot(query, e.Embedding),
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	if k > len(scores) {
		k = len(scores)
	}
	return scores[:k], nil
}

// Lookup finds an entry by its canonical question.
func (x *Index) Lookup(question string) (domain.FAQEntry, bool) {
	i, ok := x.byQuestion[question]
	if !ok {
		return domain.FAQEntry{}, false
	}
	return x.entries[i], true
}

// Len returns the number of entries.
func (x *Index) Len() int {
	return len(x.entries)
}

// Dimension returns the vector dimension.
func (x *Index) Dimension() int {
	return x.dimension
}

// Questions returns the canonical questions in corpus order.
func (x *Index) Questions() []string {
	out := make([]string, len(x.entries))
	for i, e := range x.entries {
		out[i] = e.Question
	}
	return out
}
