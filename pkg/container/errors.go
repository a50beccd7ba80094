package container

import "errors"

// Container errors.
var (
	// ErrNotFound is returned when a component has neither a live instance
	// nor a descriptor.
	ErrNotFound = errors.New("container: component not found")

	// ErrUnknownClass is returned when a descriptor names an unregistered class.
	ErrUnknownClass = errors.New("container: unknown class")

	// ErrInvalidArgument is returned when arguments do not satisfy a
	// constructor or method signature.
	ErrInvalidArgument = errors.New("container: invalid argument")

	// ErrMissingMethod is returned when a setter or injected method does not exist.
	ErrMissingMethod = errors.New("container: missing method")

	// ErrAccessViolation is returned when a constructor or method is not public.
	ErrAccessViolation = errors.New("container: access violation")

	// ErrCircularReference is returned when "$ref" arguments form a cycle.
	ErrCircularReference = errors.New("container: circular reference")

	// ErrDuplicateClass is returned when a class name is registered twice.
	ErrDuplicateClass = errors.New("container: duplicate class")
)
