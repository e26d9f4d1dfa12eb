package keeper

import "errors"

var (
	// ErrUnknownCommand is returned by Execute for an unregistered ID.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("keeper already started")

	// ErrDisposed is returned when using a disposed keeper.
	ErrDisposed = errors.New("keeper disposed")
)
