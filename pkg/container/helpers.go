package container

import "fmt"

// Value creates a class that default-constructs with fn.
func Value[T any](fn func() T) Class {
	return Class{Default: func() any { return fn() }}
}

// New creates a class with a constructor requiring n arguments.
func New(required int, fn func(args []any) (any, error)) Class {
	return Class{Constructor: &Constructor{New: fn, Required: required}}
}

// With returns a copy of the class with an additional injectable method.
func (c Class) With(name string, m Method) Class {
	methods := make(map[string]Method, len(c.Methods)+1)
	for k, v := range c.Methods {
		methods[k] = v
	}
	methods[name] = m
	c.Methods = methods
	return c
}

// Arg returns args[i] as T.
// A missing or mistyped argument yields ErrInvalidArgument.
func Arg[T any](args []any, i int) (T, error) {
	var zero T
	if i >= len(args) {
		return zero, fmt.Errorf("%w: argument %d missing", ErrInvalidArgument, i)
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, fmt.Errorf("%w: argument %d is %T, want %T", ErrInvalidArgument, i, args[i], zero)
	}
	return v, nil
}

// Setter adapts a typed single-argument method for injection.
func Setter[T, A any](fn func(obj T, arg A)) Method {
	return Method{
		Required: 1,
		Call: func(obj any, args []any) error {
			target, ok := obj.(T)
			if !ok {
				var zero T
				return fmt.Errorf("%w: receiver is %T, want %T", ErrInvalidArgument, obj, zero)
			}
			arg, err := Arg[A](args, 0)
			if err != nil {
				return err
			}
			fn(target, arg)
			return nil
		},
	}
}

// Invoke adapts a typed method taking the raw argument list.
func Invoke[T any](required int, fn func(obj T, args []any) error) Method {
	return Method{
		Required: required,
		Call: func(obj any, args []any) error {
			target, ok := obj.(T)
			if !ok {
				var zero T
				return fmt.Errorf("%w: receiver is %T, want %T", ErrInvalidArgument, obj, zero)
			}
			return fn(target, args)
		},
	}
}
