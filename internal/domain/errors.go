package domain

import "errors"

var (
	// ErrNotFound is returned when a record does not exist or belongs to another user.
	// The two cases are deliberately indistinguishable to callers.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when a computation precondition does not hold
	// (e.g. metrics over an empty projection series).
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidAction is returned when a scenario action cannot be decoded
	ErrInvalidAction = errors.New("invalid scenario action")

	// ErrInvalidInput is returned when request input fails validation
	ErrInvalidInput = errors.New("invalid input")
)
