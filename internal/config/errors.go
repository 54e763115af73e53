package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Errors returned by configuration operations.
var (
	// ErrFileNotFound indicates the configuration file doesn't exist.
	ErrFileNotFound = errors.New("config file not found")

	// ErrUnknownFormat indicates a file extension without a decoder.
	ErrUnknownFormat = errors.New("unknown config format")

	// ErrInvalidCharacter indicates a character rule that is neither a single
	// character nor a U+XXXX code point.
	ErrInvalidCharacter = errors.New("invalid character")

	// ErrInvalidWindow indicates a lookahead window below 1.
	ErrInvalidWindow = errors.New("invalid window")

	// ErrInvalidStyle indicates a malformed render style.
	ErrInvalidStyle = errors.New("invalid style")
)

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	// Path is the file path that failed to parse.
	Path string
	// Line is the line number where the error occurred (if available).
	Line int
	// Column is the column number where the error occurred (if available).
	Column int
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(path string, err error) *ParseError {
	pe := &ParseError{Path: path, Message: err.Error(), Err: err}

	var strict *toml.StrictMissingError
	if errors.As(err, &strict) && len(strict.Errors) > 0 {
		first := strict.Errors[0]
		pe.Line, pe.Column = first.Position()
		pe.Message = "unknown field " + strings.Join(first.Key(), ".")
		return pe
	}
	var decode *toml.DecodeError
	if errors.As(err, &decode) {
		pe.Line, pe.Column = decode.Position()
	}
	return pe
}
