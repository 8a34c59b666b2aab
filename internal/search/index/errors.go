package index

import "errors"

var (
	// ErrVectorLengthMismatch indicates parallel slices of different lengths.
	ErrVectorLengthMismatch = errors.New("vector length mismatch")

	// ErrEmptyCatalog is returned when no course survives cleaning.
	ErrEmptyCatalog = errors.New("catalog has no usable courses")

	// ErrEmptyVocabulary is returned when document-frequency pruning leaves no terms.
	ErrEmptyVocabulary = errors.New("no terms remain after pruning; lower min_df or raise max_df")
)
