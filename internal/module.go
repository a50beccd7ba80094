package internal

import (
	"maps"
	"slices"
	"strings"
)

// RootPackage returns the package name of a module's top-level actions.
func RootPackage(module string) string {
	return module + ":/"
}

// PackageName returns the package name for a sub-path of a module.
// An empty sub-path yields the root package.
func PackageName(module, subpath string) string {
	subpath = strings.Trim(subpath, "/")
	if subpath == "" {
		return RootPackage(module)
	}
	return RootPackage(module) + subpath
}

// MatchPackage reports whether pkg matches pattern. A pattern is either an
// exact package name or "<package>/*", which matches that package and every
// package below it.
func MatchPackage(pattern, pkg string) bool {
	base, wildcard := strings.CutSuffix(pattern, "/*")
	if !wildcard {
		return pattern == pkg
	}
	if strings.HasSuffix(base, ":") {
		// "<module>:/*" covers the whole module.
		return strings.HasPrefix(pkg, base+"/")
	}
	return pkg == base || strings.HasPrefix(pkg, base+"/")
}

// MatchAnyPackage reports whether pkg matches at least one pattern.
func MatchAnyPackage(patterns []string, pkg string) bool {
	return slices.ContainsFunc(patterns, func(p string) bool { return MatchPackage(p, pkg) })
}

// Behavior is per-action configuration.
type Behavior struct {
	// Filters overrides filter attributes by filter id. An "enable" key
	// switches the filter on or off for this action only.
	Filters  map[string]map[string]any
	Roles    []string
	Login    bool
	Validate bool
}

// BehaviorKey returns the key under which an action's behavior is configured:
// "shop:/Checkout" for a root action, "blog:/admin/Users" otherwise.
func BehaviorKey(pkg, action string) string {
	if strings.HasSuffix(pkg, "/") {
		return pkg + action
	}
	return pkg + "/" + action
}

// Module is the static configuration of one module.
type Module struct {
	Behaviors     map[string]Behavior
	Name          string
	DefaultAction string
	// Allow limits the packages actions may be served from; empty allows all.
	Allow   []string
	Deny    []string
	Filters []FilterDescriptor
}

// Modules is the set of known modules. It is built at startup and read-only
// afterwards.
type Modules struct {
	byName map[string]*Module
}

// NewModules indexes modules by name. Later duplicates replace earlier ones.
func NewModules(mods ...*Module) *Modules {
	m := &Modules{byName: make(map[string]*Module, len(mods))}
	for _, mod := range mods {
		m.byName[mod.Name] = mod
	}
	return m
}

// Has reports whether module is known.
func (m *Modules) Has(module string) bool {
	_, ok := m.byName[module]
	return ok
}

// Get returns the module configuration.
func (m *Modules) Get(module string) (*Module, bool) {
	mod, ok := m.byName[module]
	return mod, ok
}

// Names returns the known module names, sorted.
func (m *Modules) Names() []string {
	return slices.Sorted(maps.Keys(m.byName))
}

// DefaultAction returns the module's default action.
func (m *Modules) DefaultAction(module string) (string, bool) {
	mod, ok := m.byName[module]
	if !ok || mod.DefaultAction == "" {
		return "", false
	}
	return mod.DefaultAction, true
}

// PackageAllowed reports whether actions of module may be served from pkg.
// The package must belong to the module, must not match a deny pattern and,
// when an allow list is configured, must match one of its patterns.
func (m *Modules) PackageAllowed(module, pkg string) bool {
	if !strings.HasPrefix(pkg, RootPackage(module)) {
		return false
	}
	mod, ok := m.byName[module]
	if !ok {
		return false
	}
	if MatchAnyPackage(mod.Deny, pkg) {
		return false
	}
	return len(mod.Allow) == 0 || MatchAnyPackage(mod.Allow, pkg)
}

// Behavior returns the behavior configured for action in pkg.
func (m *Modules) Behavior(module, pkg, action string) Behavior {
	mod, ok := m.byName[module]
	if !ok {
		return Behavior{}
	}
	return mod.Behaviors[BehaviorKey(pkg, action)]
}

// Filters returns the module-level filter descriptors.
func (m *Modules) Filters(module string) []FilterDescriptor {
	mod, ok := m.byName[module]
	if !ok {
		return nil
	}
	return mod.Filters
}
