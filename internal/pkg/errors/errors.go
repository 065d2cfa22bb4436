package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrCorrupt marks a stored artifact that exists but cannot be parsed.
	ErrCorrupt = errors.New("corrupt artifact")
	// ErrStorageUnavailable marks a failed durable read or write.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
)
