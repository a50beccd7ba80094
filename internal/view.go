package internal

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/a-h/templ"
)

// ViewComponent is the container component name the action filter renders with.
const ViewComponent = "view"

// View renders a named view for the current request.
type View interface {
	Execute(c Context, name string) error
}

// ViewFunc adapts a function to View.
type ViewFunc func(c Context, name string) error

// Execute implements View.
func (f ViewFunc) Execute(c Context, name string) error { return f(c, name) }

// TemplView renders templ components registered by view name, such as
// "CheckoutSuccess" for action Checkout and view key "Success".
type TemplView struct {
	views map[string]func(c Context) templ.Component
	mu    sync.RWMutex
}

// NewTemplView creates an empty view set.
func NewTemplView() *TemplView {
	return &TemplView{views: make(map[string]func(c Context) templ.Component)}
}

// Register binds name to a component constructor.
func (v *TemplView) Register(name string, fn func(c Context) templ.Component) *TemplView {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.views[name] = fn
	return v
}

// Text registers a view that writes a fixed string.
func (v *TemplView) Text(name, body string) *TemplView {
	return v.Register(name, func(Context) templ.Component {
		return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
			_, err := io.WriteString(w, body)
			return err
		})
	})
}

// Has reports whether name is registered.
func (v *TemplView) Has(name string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.views[name]
	return ok
}

// Execute renders the component registered under name into the response buffer.
func (v *TemplView) Execute(c Context, name string) error {
	v.mu.RLock()
	fn, ok := v.views[name]
	v.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrViewNotFound, name)
	}

	if c.Response().Header().Get("Content-Type") == "" {
		c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	return fn(c).Render(c, c.Response())
}
