package port

import "faqbot/internal/domain"

// IndexStore persists the built FAQ index as three aligned collections.
type IndexStore interface {
	// PutEntries replaces the stored corpus.
	PutEntries(entries []domain.FAQEntry, model string) error

	// LoadAligned returns questions, answers and embeddings in corpus order.
	LoadAligned() (questions, answers []string, embeddings [][]float32, err error)

	GetStats() (domain.Stats, error)

	Close() error
}

// CorpusSource yields the raw question/answer pairs the build step indexes.
type CorpusSource interface {
	Load(root string) ([]CorpusRow, error)
}

// CorpusRow is a single question/answer pair read from the corpus.
type CorpusRow struct {
	Question string
	Answer   string
	Source   string
}
