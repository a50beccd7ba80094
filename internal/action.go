package internal

import "slices"

// Action handles one request after the filter chain admits it.
// Execute returns a view key; the dispatcher renders view <Action><Key>
// unless the key is empty or the action scheduled a forward.
type Action interface {
	Execute(c Context) (string, error)
}

// Validator is implemented by actions that check input before Execute.
// When the action's behavior enables validation and Validate reports false,
// HandleError runs in place of Execute.
type Validator interface {
	Validate(c Context) bool
	HandleError(c Context) (string, error)
}

// ActionFunc adapts a function to Action.
type ActionFunc func(c Context) (string, error)

// Execute implements Action.
func (f ActionFunc) Execute(c Context) (string, error) { return f(c) }

// ActionFactory creates a fresh action instance for one stack entry.
type ActionFactory func() Action

// ActionEntry is one loaded action on a route's stack.
type ActionEntry struct {
	action   Action
	behavior Behavior
	name     string
	module   string
	pkg      string
}

// ActionName returns the PascalCase action name, e.g. "Checkout".
func (e *ActionEntry) ActionName() string { return e.name }

// PackageName returns the package the action was found in,
// e.g. "shop:/" or "blog:/admin".
func (e *ActionEntry) PackageName() string { return e.pkg }

// Module returns the module the action belongs to.
func (e *ActionEntry) Module() string { return e.module }

// Action returns the action instance.
func (e *ActionEntry) Action() Action { return e.action }

// Behavior returns the per-action configuration.
func (e *ActionEntry) Behavior() Behavior { return e.behavior }

// Validate reports whether the validation hook is enabled.
func (e *ActionEntry) Validate() bool { return e.behavior.Validate }

// LoginRequired reports whether the action is restricted to logged-in users.
func (e *ActionEntry) LoginRequired() bool { return e.behavior.Login || len(e.behavior.Roles) > 0 }

// Roles returns the roles of which the user must hold at least one.
func (e *ActionEntry) Roles() []string { return slices.Clone(e.behavior.Roles) }
