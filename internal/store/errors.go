package store

import "errors"

// Store errors. Every expected failure is one of these (possibly wrapped); the
// message is safe to show to the end user.
var (
	ErrNotFound          = errors.New("not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrBlocked           = errors.New("account blocked")
	ErrLoginFailed       = errors.New("login failed")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("forbidden")
)
