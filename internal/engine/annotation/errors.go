package annotation

import "errors"

// Errors returned by annotation set operations.
var (
	// ErrOutOfBounds indicates an annotation outside the document content.
	ErrOutOfBounds = errors.New("annotation out of bounds")

	// ErrEmptyRange indicates an annotation with To <= From.
	ErrEmptyRange = errors.New("empty annotation range")
)
