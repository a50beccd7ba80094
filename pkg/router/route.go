package router

import "maps"

// Route is the result of resolving one request.
// Its bindings are read-only; its Stack grows as the request forwards.
type Route struct {
	params map[string]string
	stack  *Stack
	name   string
}

// NewRoute creates a route from resolved bindings.
// The bindings must contain "module" and "action".
func NewRoute(name string, params map[string]string) *Route {
	return &Route{
		name:   name,
		params: maps.Clone(params),
		stack:  &Stack{},
	}
}

// Name returns the name of the matched definition.
func (r *Route) Name() string { return r.name }

// Module returns the resolved module.
func (r *Route) Module() string { return r.params[ParamModule] }

// Action returns the resolved entry action.
func (r *Route) Action() string { return r.params[ParamAction] }

// Param returns a bound placeholder value.
func (r *Route) Param(name string) (string, bool) {
	v, ok := r.params[name]
	return v, ok
}

// Params returns a copy of all bindings.
func (r *Route) Params() map[string]string {
	return maps.Clone(r.params)
}

// Stack returns the route's action stack.
func (r *Route) Stack() *Stack { return r.stack }
