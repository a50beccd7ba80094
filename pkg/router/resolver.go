package router

import (
	"fmt"
	"net/http"
	"net/netip"

	"github.com/dmitrymomot/dispatch/pkg/hostinfo"
)

// Modules describes the known modules and their default actions.
type Modules interface {
	// Has reports whether the module exists.
	Has(module string) bool
	// DefaultAction returns the module's configured default action.
	DefaultAction(module string) (string, bool)
}

// Input carries the parts of a request the resolver needs.
type Input struct {
	RemoteAddr netip.Addr
	Path       string
	Host       string
}

// InputFromRequest extracts resolver input from an HTTP request. The path
// stays percent-encoded so that placeholder values are decoded exactly once
// and an encoded "/" does not split a segment.
func InputFromRequest(r *http.Request, trustForwarded bool) Input {
	return Input{
		Path:       r.URL.EscapedPath(),
		Host:       r.Host,
		RemoteAddr: hostinfo.ClientAddr(r, trustForwarded),
	}
}

// Resolver matches requests against a route table.
type Resolver struct {
	table      *Table
	modules    Modules
	subdomains bool
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithSubdomainModules derives the module from the host's leftmost DNS label
// whenever the path does not bind one.
func WithSubdomainModules(enabled bool) ResolverOption {
	return func(r *Resolver) {
		r.subdomains = enabled
	}
}

// NewResolver creates a resolver over table.
func NewResolver(table *Table, modules Modules, opts ...ResolverOption) *Resolver {
	r := &Resolver{table: table, modules: modules}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the Route for the first definition that fully matches.
// It returns ErrNoRoute when nothing matches and ErrForwardConfig when the
// matched definition leaves the module or action ambiguous.
func (r *Resolver) Resolve(in Input) (*Route, error) {
	for _, def := range r.table.definitions {
		params, ok := def.Bind(in.Path)
		if !ok {
			continue
		}
		return r.complete(def, params, in)
	}
	return nil, fmt.Errorf("%w: %s", ErrNoRoute, in.Path)
}

func (r *Resolver) complete(def *Definition, params map[string]string, in Input) (*Route, error) {
	if _, bound := params[ParamModule]; !bound {
		switch {
		case r.subdomains:
			label := hostinfo.LeftmostLabel(in.Host)
			if label == "" || r.modules == nil || !r.modules.Has(label) {
				return nil, fmt.Errorf("%w: host %q does not name a module", ErrNoRoute, in.Host)
			}
			params[ParamModule] = label
		case def.forward.Module != "":
			params[ParamModule] = def.forward.Module
		default:
			return nil, fmt.Errorf("%w: route %q binds no module", ErrForwardConfig, def.name)
		}
	}

	if _, bound := params[ParamAction]; !bound {
		if def.forward.Action != "" {
			params[ParamAction] = def.forward.Action
		} else if action, ok := r.defaultAction(params[ParamModule]); ok {
			params[ParamAction] = action
		} else {
			return nil, fmt.Errorf("%w: route %q binds no action for module %q", ErrForwardConfig, def.name, params[ParamModule])
		}
	}

	if def.access != nil && !def.access.Permits(in.RemoteAddr) {
		params[ParamModule] = def.access.Deny.Module
		params[ParamAction] = def.access.Deny.Action
	}

	return NewRoute(def.name, params), nil
}

func (r *Resolver) defaultAction(module string) (string, bool) {
	if r.modules == nil {
		return "", false
	}
	action, ok := r.modules.DefaultAction(module)
	return action, ok && action != ""
}
