package router

import "fmt"

// Table is an ordered, immutable collection of route definitions.
// It is built once at startup and safe for concurrent reads.
type Table struct {
	byName      map[string]*Definition
	definitions []*Definition
}

// NewTable creates a table preserving the order of definitions.
func NewTable(definitions ...*Definition) (*Table, error) {
	t := &Table{
		byName:      make(map[string]*Definition, len(definitions)),
		definitions: make([]*Definition, 0, len(definitions)),
	}
	for _, d := range definitions {
		if d == nil {
			continue
		}
		if _, exists := t.byName[d.name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRoute, d.name)
		}
		t.byName[d.name] = d
		t.definitions = append(t.definitions, d)
	}
	return t, nil
}

// Definitions returns the definitions in declaration order.
func (t *Table) Definitions() []*Definition {
	out := make([]*Definition, len(t.definitions))
	copy(out, t.definitions)
	return out
}

// Lookup returns the definition with the given name.
func (t *Table) Lookup(name string) (*Definition, bool) {
	d, ok := t.byName[name]
	return d, ok
}

// Len returns the number of definitions.
func (t *Table) Len() int {
	return len(t.definitions)
}
