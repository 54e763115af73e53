package document

import "errors"

// Errors returned by document operations.
var (
	// ErrPositionOutOfRange indicates a position outside the node's content.
	ErrPositionOutOfRange = errors.New("position out of range")

	// ErrNotElement indicates an element operation on a leaf.
	ErrNotElement = errors.New("node is not an element")

	// ErrInvalidJSON indicates input that is not valid JSON.
	ErrInvalidJSON = errors.New("invalid document JSON")

	// ErrInvalidNode indicates a JSON node that cannot be decoded.
	ErrInvalidNode = errors.New("invalid node")
)
