package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources. It also covers
	// records that exist but are not owned by the caller, so ownership is never
	// leaked through error text.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the actor lacks the role or ownership for a
	// state-changing action.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
)
