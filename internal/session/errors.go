package session

import "errors"

// Errors returned by session operations.
var (
	// ErrStaleEdit indicates an edit made against a document that is no
	// longer current.
	ErrStaleEdit = errors.New("stale edit")

	// ErrClosed indicates the session was closed.
	ErrClosed = errors.New("session closed")

	// ErrNoEngine indicates Open was called without an engine.
	ErrNoEngine = errors.New("no engine")

	// ErrNothingToUndo indicates an empty undo history.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates an empty redo history.
	ErrNothingToRedo = errors.New("nothing to redo")
)
