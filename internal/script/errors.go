package script

import "errors"

var (
	// ErrStateClosed is returned when using a closed State.
	ErrStateClosed = errors.New("lua state closed")

	// ErrTimeout is returned when a script runs past its deadline.
	ErrTimeout = errors.New("lua execution timed out")
)
