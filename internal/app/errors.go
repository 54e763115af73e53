package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrQuit signals that the viewer should exit normally.
	ErrQuit = errors.New("quit requested")

	// ErrAlreadyRunning indicates Run was called twice.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrNoDocuments indicates there is nothing to annotate.
	ErrNoDocuments = errors.New("no documents")

	// ErrDocumentNotFound indicates a path is not open.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrUnknownFormat indicates an unsupported output format.
	ErrUnknownFormat = errors.New("unknown output format")

	// ErrNotWatchable indicates a document that has no file to watch.
	ErrNotWatchable = errors.New("document cannot be watched")
)

// InitError reports a component that failed to start.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// FileError reports a failed operation on a document file.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	if e.Err == nil {
		return e.Op + " " + e.Path
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
