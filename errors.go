package keyshare

import "errors"

// Errors returned by the splitting and reconstruction functions. They are
// usually wrapped with additional context; test for them with errors.Is.
var (
	ErrInvalidParameters    = errors.New("invalid parameters")
	ErrInvalidThreshold     = errors.New("threshold must be greater than 0")
	ErrDivisionByZero       = errors.New("division by zero")
	ErrMalformedShare       = errors.New("malformed share")
	ErrDuplicateXCoordinate = errors.New("duplicate x coordinate")
	ErrEmptyShareSet        = errors.New("empty share set")
	ErrOutOfRange           = errors.New("value out of range")
)
