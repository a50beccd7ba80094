package session

import "errors"

// Session errors.
var (
	// ErrNotFound is returned when a session does not exist or has expired.
	ErrNotFound = errors.New("session: not found")

	// ErrTypeMismatch is returned by Value when the stored value has another type.
	ErrTypeMismatch = errors.New("session: type mismatch")

	// ErrBadSignature is returned when a signed session cookie fails
	// verification.
	ErrBadSignature = errors.New("session: invalid cookie signature")
)
