package scan

import "errors"

// Configuration errors.
var (
	// ErrDuplicateChar indicates a code point configured twice.
	ErrDuplicateChar = errors.New("duplicate character rule")

	// ErrDuplicateType indicates a node type configured twice.
	ErrDuplicateType = errors.New("duplicate node rule")

	// ErrEmptyTag indicates a rule without a tag or node type.
	ErrEmptyTag = errors.New("empty tag")
)
