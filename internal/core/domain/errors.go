package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedMessage indicates a protocol message could not be decoded.
	ErrUnsupportedMessage = errors.New("unsupported message")

	// ErrStatusAPI indicates the stream status API rejected or failed a call.
	ErrStatusAPI = errors.New("stream status API failure")

	// ErrUnsupportedBackend indicates an unknown status API backend was configured.
	ErrUnsupportedBackend = errors.New("unsupported backend")
)
