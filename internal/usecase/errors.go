package usecase

import "errors"

var (
	// ErrNoIndex is returned when no built index exists yet.
	ErrNoIndex = errors.New("no index found, run 'faqbot build' first")

	// ErrEmptyCorpus is returned when the build step finds no usable rows.
	ErrEmptyCorpus = errors.New("corpus has no question/answer rows")
)
