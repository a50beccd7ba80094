package router

import "errors"

// Router errors.
var (
	// ErrNoRoute is returned when no definition matches the request.
	ErrNoRoute = errors.New("router: no route matched")

	// ErrForwardConfig is returned when a matched definition leaves the module
	// or action ambiguous. It indicates a configuration bug and is never retried.
	ErrForwardConfig = errors.New("router: ambiguous forward target")

	// ErrStackOverflow is returned when a push would exceed MaxDepth.
	// It signals a forward loop.
	ErrStackOverflow = errors.New("router: action stack overflow")

	// ErrInvalidDefinition is returned when a route definition cannot be compiled.
	ErrInvalidDefinition = errors.New("router: invalid route definition")

	// ErrDuplicateRoute is returned when two definitions share a name.
	ErrDuplicateRoute = errors.New("router: duplicate route name")
)
