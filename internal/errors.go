package internal

import (
	"errors"
	"net/http"
)

// Dispatcher errors.
var (
	// ErrActionNotFound is returned by the loader when no registered action
	// matches the requested module and action.
	ErrActionNotFound = errors.New("dispatch: action not found")

	// ErrPackageDenied is returned when an action exists but its package is
	// outside the module's allowed package scope. It is handled like
	// ErrActionNotFound.
	ErrPackageDenied = errors.New("dispatch: package access denied")

	// ErrInvalidActionClass is returned when an action class name lacks the
	// "Action" suffix.
	ErrInvalidActionClass = errors.New("dispatch: invalid action class")

	// ErrDuplicateAction is returned when an action class is registered twice
	// in the same package.
	ErrDuplicateAction = errors.New("dispatch: duplicate action")

	// ErrUnknownFilterClass is returned when a filter descriptor names an
	// unregistered filter class.
	ErrUnknownFilterClass = errors.New("dispatch: unknown filter class")

	// ErrDuplicateFilterClass is returned when a filter class is registered twice.
	ErrDuplicateFilterClass = errors.New("dispatch: duplicate filter class")

	// ErrViewNotConfigured is returned when an action selects a view but no
	// view component is available.
	ErrViewNotConfigured = errors.New("dispatch: view not configured")

	// ErrViewNotFound is returned when a view name has no template.
	ErrViewNotFound = errors.New("dispatch: view not found")

	// ErrResponseCommitted is returned when writing to a response that has
	// already been sent.
	ErrResponseCommitted = errors.New("dispatch: response already committed")
)

// HTTPError is an error carrying the status code the client should see.
type HTTPError struct {
	// Err is the underlying error, logged but never shown to the client.
	Err     error
	Message string
	Code    int
}

// NewHTTPError creates an HTTPError. An empty message defaults to the status text.
func NewHTTPError(code int, message string) *HTTPError {
	if message == "" {
		message = http.StatusText(code)
	}
	return &HTTPError{Code: code, Message: message}
}

func (e *HTTPError) Error() string { return e.Message }

func (e *HTTPError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status code.
func (e *HTTPError) StatusCode() int { return e.Code }

// Wrap attaches an underlying error.
func (e *HTTPError) Wrap(err error) *HTTPError {
	e.Err = err
	return e
}

// AsHTTPError extracts an HTTPError from the chain, or nil.
func AsHTTPError(err error) *HTTPError {
	var he *HTTPError
	if errors.As(err, &he) {
		return he
	}
	return nil
}

// SecurityError is raised by security filters when the user is not logged in
// (401) or lacks a required role (403).
type SecurityError struct {
	Reason string
	Roles  []string
	Code   int
}

// Unauthorized returns a 401 SecurityError.
func Unauthorized(reason string) *SecurityError {
	return &SecurityError{Code: http.StatusUnauthorized, Reason: reason}
}

// Forbidden returns a 403 SecurityError naming the roles that were required.
func Forbidden(reason string, roles ...string) *SecurityError {
	return &SecurityError{Code: http.StatusForbidden, Reason: reason, Roles: roles}
}

func (e *SecurityError) Error() string {
	return "security: " + e.Reason
}

// StatusCode returns 401 or 403.
func (e *SecurityError) StatusCode() int { return e.Code }

// IsSecurityError reports whether err wraps a SecurityError.
func IsSecurityError(err error) bool {
	var se *SecurityError
	return errors.As(err, &se)
}
