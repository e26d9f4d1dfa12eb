package position

import (
	"errors"
	"fmt"
)

// Errors returned by store operations.
var (
	// ErrInvalidPath indicates an empty file path or one that is not valid UTF-8.
	ErrInvalidPath = errors.New("invalid file path")

	// ErrInvalidRecord indicates a negative line or character.
	ErrInvalidRecord = errors.New("invalid position record")

	// ErrCorrupt indicates the storage file is not a JSON object.
	ErrCorrupt = errors.New("corrupt position file")

	// ErrNoStorage indicates the store has no file path configured.
	ErrNoStorage = errors.New("no storage file configured")
)

// StoreError describes a failed storage operation.
type StoreError struct {
	// Op is the operation ("load", "save", "stat").
	Op string
	// Path is the storage file.
	Path string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("position store %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}
