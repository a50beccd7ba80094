package container

import (
	"fmt"
	"sort"
	"sync"
)

// Constructor builds an instance from resolved arguments.
type Constructor struct {
	New func(args []any) (any, error)
	// Required is the number of arguments the constructor cannot do without.
	Required int
	// Private marks constructors that may not be used for injection.
	Private bool
}

// Method is an injectable method.
type Method struct {
	Call     func(obj any, args []any) error
	Required int
	Private  bool
}

// Class is a registered component factory.
// Exactly one of Constructor or Default is expected; Default is used when the
// class declares no constructor.
type Class struct {
	Constructor *Constructor
	Default     func() any
	Methods     map[string]Method
}

// Registry maps class names to factories.
// It is populated at startup and shared across containers.
type Registry struct {
	classes map[string]Class
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]Class)}
}

// Register adds a class under name.
func (r *Registry) Register(name string, class Class) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.classes[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateClass, name)
	}
	r.classes[name] = class
	return nil
}

// MustRegister is like Register but panics on error.
// Intended for package initialization.
func (r *Registry) MustRegister(name string, class Class) {
	if err := r.Register(name, class); err != nil {
		panic(err)
	}
}

// Lookup returns the class registered under name.
func (r *Registry) Lookup(name string) (Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.classes[name]
	return c, ok
}

// Names returns the registered class names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
