package watch

import "errors"

// Errors returned by watcher operations.
var (
	// ErrClosed indicates the watcher was closed.
	ErrClosed = errors.New("watcher closed")

	// ErrPathNotExist indicates the directory of a path doesn't exist.
	ErrPathNotExist = errors.New("path does not exist")

	// ErrAlreadyWatching indicates the path is already watched.
	ErrAlreadyWatching = errors.New("already watching path")

	// ErrNotWatching indicates the path is not watched.
	ErrNotWatching = errors.New("not watching path")
)
