package container

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Scope controls instance caching.
type Scope string

// Instance scopes.
const (
	ScopeSingleton Scope = "singleton"
	ScopePrototype Scope = "prototype"
)

// Descriptor describes how to build a component.
type Descriptor struct {
	Class       string  `yaml:"class"`
	Instance    Scope   `yaml:"instance"`
	Constructor []any   `yaml:"constructor"`
	Setter      Setters `yaml:"setter"`
	Method      Calls   `yaml:"method"`
}

// Prototype reports whether the component must be rebuilt on every Get.
func (d Descriptor) Prototype() bool {
	return d.Instance == ScopePrototype
}

// SetterCall injects one argument through Set<Name>.
type SetterCall struct {
	Arg  any
	Name string
}

// Setters keeps setter injections in declaration order.
type Setters []SetterCall

// UnmarshalYAML decodes a mapping of setter suffix to argument.
func (s *Setters) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: setter must be a mapping", ErrInvalidArgument)
	}
	out := make(Setters, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var arg any
		if err := node.Content[i+1].Decode(&arg); err != nil {
			return err
		}
		out = append(out, SetterCall{Name: node.Content[i].Value, Arg: arg})
	}
	*s = out
	return nil
}

// Call injects an argument list through a named method.
type Call struct {
	Name string
	Args []any
}

// Calls keeps method injections in declaration order.
type Calls []Call

// UnmarshalYAML decodes a mapping of method name to argument list.
// A scalar value is treated as a single argument; null means no arguments.
func (c *Calls) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: method must be a mapping", ErrInvalidArgument)
	}
	out := make(Calls, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		call := Call{Name: node.Content[i].Value}
		value := node.Content[i+1]
		switch {
		case value.Kind == yaml.SequenceNode:
			if err := value.Decode(&call.Args); err != nil {
				return err
			}
		case value.Tag == "!!null":
		default:
			var arg any
			if err := value.Decode(&arg); err != nil {
				return err
			}
			call.Args = []any{arg}
		}
		out = append(out, call)
	}
	*c = out
	return nil
}
