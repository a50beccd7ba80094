package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Entry is one named item of an ordered mapping.
type Entry[T any] struct {
	Value T
	Name  string
}

// Ordered is a YAML mapping decoded with its key order intact.
type Ordered[T any] []Entry[T]

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *Ordered[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: line %d: expected a mapping", ErrInvalidConfig, node.Line)
	}
	out := make(Ordered[T], 0, len(node.Content)/2)
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		if seen[name] {
			return fmt.Errorf("%w: line %d: duplicate key %q", ErrInvalidConfig, node.Content[i].Line, name)
		}
		seen[name] = true

		var v T
		if err := node.Content[i+1].Decode(&v); err != nil {
			return fmt.Errorf("%q: %w", name, err)
		}
		out = append(out, Entry[T]{Name: name, Value: v})
	}
	*o = out
	return nil
}

// Names returns the keys in declaration order.
func (o Ordered[T]) Names() []string {
	names := make([]string, len(o))
	for i, e := range o {
		names[i] = e.Name
	}
	return names
}

// Get returns the value stored under name.
func (o Ordered[T]) Get(name string) (T, bool) {
	for _, e := range o {
		if e.Name == name {
			return e.Value, true
		}
	}
	var zero T
	return zero, false
}
