package engine

import (
	"errors"

	"github.com/dshills/typographic/internal/engine/diff"
)

// Errors returned by engine operations.
var (
	// ErrNilDocument indicates a missing document version.
	ErrNilDocument = errors.New("nil document")

	// ErrNilSet indicates a missing previous annotation set.
	ErrNilSet = errors.New("nil annotation set")

	// ErrMalformedMapping indicates an edit mapping that does not describe
	// the transition between the two documents.
	ErrMalformedMapping = errors.New("malformed edit mapping")

	// ErrIncompatibleRoots indicates document versions whose roots differ.
	ErrIncompatibleRoots = diff.ErrIncompatibleRoots
)
