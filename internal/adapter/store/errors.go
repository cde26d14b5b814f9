package store

import "errors"

var (
	// ErrCorrupt means the stored collections are not aligned or have gaps.
	ErrCorrupt = errors.New("index store is corrupt")

	// ErrIncompatible means the index was built with a different schema or
	// configuration and must be rebuilt.
	ErrIncompatible = errors.New("index is incompatible with current configuration")
)
