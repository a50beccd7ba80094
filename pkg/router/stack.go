package router

import "fmt"

// MaxDepth bounds the number of actions a single request may reach.
const MaxDepth = 16

// Entry is an action recorded on the stack.
type Entry interface {
	ActionName() string
	PackageName() string
}

// Stack is the append-only history of actions reached during one request.
// There is no removal: forwards only ever add entries.
type Stack struct {
	entries []Entry
}

// Push appends an entry. It returns ErrStackOverflow instead of growing
// beyond MaxDepth.
func (s *Stack) Push(e Entry) error {
	if len(s.entries) >= MaxDepth {
		return fmt.Errorf("%w: depth %d reached while forwarding to %q", ErrStackOverflow, MaxDepth, e.ActionName())
	}
	s.entries = append(s.entries, e)
	return nil
}

// Top returns the most recent entry, or nil when empty.
func (s *Stack) Top() Entry {
	if len(s.entries) == 0 {
		return nil
	}
	return s.entries[len(s.entries)-1]
}

// Previous returns the entry below the top, or nil when depth < 2.
func (s *Stack) Previous() Entry {
	if len(s.entries) < 2 {
		return nil
	}
	return s.entries[len(s.entries)-2]
}

// Size returns the current depth.
func (s *Stack) Size() int { return len(s.entries) }

// Contains reports whether an action with the given name was reached.
func (s *Stack) Contains(action string) bool {
	for _, e := range s.entries {
		if e.ActionName() == action {
			return true
		}
	}
	return false
}

// Entries returns a copy of the history, oldest first.
func (s *Stack) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
