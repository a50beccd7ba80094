package filters

import (
	"runtime"

	"github.com/dmitrymomot/dispatch/internal"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

// Recover turns panics in later filters and the action into a PanicError.
type Recover struct {
	stackSize    int
	disableStack bool
}

// RecoverOption configures Recover.
type RecoverOption func(*Recover)

// WithStackSize sets the maximum captured stack size.
func WithStackSize(size int) RecoverOption {
	return func(r *Recover) {
		if size > 0 {
			r.stackSize = size
		}
	}
}

// WithoutStack disables stack capture.
func WithoutStack() RecoverOption {
	return func(r *Recover) {
		r.disableStack = true
	}
}

// NewRecover returns a recover filter.
func NewRecover(opts ...RecoverOption) *Recover {
	r := &Recover{stackSize: DefaultStackSize}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RecoverFactory builds Recover from stack_size and print_stack.
func RecoverFactory(a map[string]any) (internal.Filter, error) {
	at := attrs(a)
	size, err := at.int("stack_size", DefaultStackSize)
	if err != nil {
		return nil, err
	}
	printStack, err := at.bool("print_stack", true)
	if err != nil {
		return nil, err
	}
	opts := []RecoverOption{WithStackSize(size)}
	if !printStack {
		opts = append(opts, WithoutStack())
	}
	return NewRecover(opts...), nil
}

// DoFilter implements internal.Filter.
func (f *Recover) DoFilter(c internal.Context, chain *internal.FilterChain) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var stack []byte
		if !f.disableStack {
			stack = make([]byte, f.stackSize)
			stack = stack[:runtime.Stack(stack, false)]
			c.Logger().ErrorContext(c, "panic recovered", "panic", r, "stack", string(stack))
		} else {
			c.Logger().ErrorContext(c, "panic recovered", "panic", r)
		}
		err = &PanicError{Value: r, Stack: stack}
	}()
	return chain.Proceed(c)
}
