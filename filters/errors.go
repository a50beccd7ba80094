package filters

import (
	"errors"
	"fmt"
)

// ErrInvalidAttribute is returned by factories for malformed attributes.
var ErrInvalidAttribute = errors.New("filters: invalid attribute")

// PanicError represents a recovered panic.
type PanicError struct {
	Value any
	Stack []byte // nil when stack capture is disabled
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// AsPanicError extracts the PanicError from err.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
