package transform

import "errors"

// Errors returned by transactions.
var (
	// ErrInvalidRange indicates a range with from > to or a bad target.
	ErrInvalidRange = errors.New("invalid range")

	// ErrCrossesNodes indicates a range whose ends have different parents.
	ErrCrossesNodes = errors.New("range crosses node boundaries")

	// ErrNoNode indicates that no node starts at a position.
	ErrNoNode = errors.New("no node at position")

	// ErrInvalidNode indicates a nil node.
	ErrInvalidNode = errors.New("invalid node")
)
