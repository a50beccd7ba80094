package container

import (
	"fmt"
	"maps"
	"strings"
	"unicode"
	"unicode/utf8"
)

// RefPrefix marks a constructor, setter or method argument as a reference to
// another component.
const RefPrefix = "$"

// Container resolves named components for the lifetime of one request.
type Container struct {
	registry    *Registry
	descriptors map[string]Descriptor
	instances   map[string]any
	resolving   map[string]bool
}

// NewContainer creates a container over the shared class registry.
// The descriptors map is copied; later changes to it are not observed.
func NewContainer(registry *Registry, descriptors map[string]Descriptor) *Container {
	return &Container{
		registry:    registry,
		descriptors: maps.Clone(descriptors),
		instances:   make(map[string]any),
		resolving:   make(map[string]bool),
	}
}

// Set registers a live instance under name, replacing any cached one.
func (c *Container) Set(name string, instance any) {
	c.instances[name] = instance
}

// Has reports whether name is a live instance or has a descriptor.
func (c *Container) Has(name string) bool {
	if _, ok := c.instances[name]; ok {
		return true
	}
	_, ok := c.descriptors[name]
	return ok
}

// Get returns the component registered under name, building it on first use.
func (c *Container) Get(name string) (any, error) {
	if inst, ok := c.instances[name]; ok {
		return inst, nil
	}

	desc, ok := c.descriptors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	if c.resolving[name] {
		return nil, fmt.Errorf("%w: %q", ErrCircularReference, name)
	}
	c.resolving[name] = true
	defer delete(c.resolving, name)

	inst, err := c.build(desc)
	if err != nil {
		return nil, fmt.Errorf("component %q: %w", name, err)
	}

	if !desc.Prototype() {
		c.instances[name] = inst
	}
	return inst, nil
}

// Resolve returns the component registered under name as T.
func Resolve[T any](c *Container, name string) (T, error) {
	var zero T
	v, err := c.Get(name)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: component %q is %T, want %T", ErrInvalidArgument, name, v, zero)
	}
	return typed, nil
}

func (c *Container) build(desc Descriptor) (any, error) {
	class, ok := c.registry.Lookup(desc.Class)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, desc.Class)
	}

	args, err := c.resolveArgs(desc.Constructor)
	if err != nil {
		return nil, err
	}

	inst, err := construct(desc.Class, class, args)
	if err != nil {
		return nil, err
	}

	for _, s := range desc.Setter {
		method := "Set" + capitalize(s.Name)
		arg, err := c.resolveArg(s.Arg)
		if err != nil {
			return nil, err
		}
		if err := invoke(desc.Class, class, inst, method, []any{arg}); err != nil {
			return nil, err
		}
	}

	for _, call := range desc.Method {
		args, err := c.resolveArgs(call.Args)
		if err != nil {
			return nil, err
		}
		if err := invoke(desc.Class, class, inst, call.Name, args); err != nil {
			return nil, err
		}
	}

	return inst, nil
}

func construct(className string, class Class, args []any) (any, error) {
	ctor := class.Constructor
	if ctor == nil {
		if len(args) > 0 {
			return nil, fmt.Errorf("%w: class %q declares no constructor but %d arguments are configured", ErrInvalidArgument, className, len(args))
		}
		if class.Default == nil {
			return nil, fmt.Errorf("%w: class %q cannot be constructed", ErrInvalidArgument, className)
		}
		return class.Default(), nil
	}

	if ctor.Private {
		return nil, fmt.Errorf("%w: constructor of %q is not public", ErrAccessViolation, className)
	}
	if len(args) < ctor.Required {
		return nil, fmt.Errorf("%w: constructor of %q requires %d arguments, %d configured", ErrInvalidArgument, className, ctor.Required, len(args))
	}

	inst, err := ctor.New(args)
	if err != nil {
		return nil, fmt.Errorf("construct %q: %w", className, err)
	}
	return inst, nil
}

func invoke(className string, class Class, inst any, name string, args []any) error {
	m, ok := class.Methods[name]
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrMissingMethod, className, name)
	}
	if m.Private {
		return fmt.Errorf("%w: %s.%s is not public", ErrAccessViolation, className, name)
	}
	if len(args) < m.Required {
		return fmt.Errorf("%w: %s.%s requires %d arguments, %d configured", ErrInvalidArgument, className, name, m.Required, len(args))
	}
	if err := m.Call(inst, args); err != nil {
		return fmt.Errorf("%s.%s: %w", className, name, err)
	}
	return nil
}

func (c *Container) resolveArgs(raw []any) ([]any, error) {
	args := make([]any, len(raw))
	for i, a := range raw {
		v, err := c.resolveArg(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// resolveArg replaces "$name" strings with components, descending into
// nested lists and maps.
func (c *Container) resolveArg(raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		if ref, ok := strings.CutPrefix(v, RefPrefix); ok && ref != "" {
			return c.Get(ref)
		}
		return v, nil
	case []any:
		return c.resolveArgs(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			resolved, err := c.resolveArg(item)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	default:
		return raw, nil
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
