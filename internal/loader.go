package internal

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ActionSuffix terminates every action class name.
const ActionSuffix = "Action"

// ActionClass returns the class name that implements action.
func ActionClass(action string) string {
	return action + ActionSuffix
}

// ActionRegistry maps module packages to action factories.
// It is populated at startup; lookups are safe for concurrent use.
type ActionRegistry struct {
	// module -> sub-path -> class -> factory
	actions map[string]map[string]map[string]ActionFactory
	mu      sync.RWMutex
}

// NewActionRegistry creates an empty registry.
func NewActionRegistry() *ActionRegistry {
	return &ActionRegistry{actions: make(map[string]map[string]map[string]ActionFactory)}
}

// Register adds an action class to a module. subpath is "" for the module
// root or a slash-separated directory such as "admin/users". The class name
// must end in "Action", e.g. "CheckoutAction".
func (r *ActionRegistry) Register(module, subpath, class string, factory ActionFactory) error {
	if module == "" || factory == nil {
		return fmt.Errorf("%w: module and factory are required", ErrInvalidActionClass)
	}
	if !strings.HasSuffix(class, ActionSuffix) || class == ActionSuffix {
		return fmt.Errorf("%w: %q must end in %q", ErrInvalidActionClass, class, ActionSuffix)
	}
	subpath = strings.Trim(subpath, "/")

	r.mu.Lock()
	defer r.mu.Unlock()

	paths, ok := r.actions[module]
	if !ok {
		paths = make(map[string]map[string]ActionFactory)
		r.actions[module] = paths
	}
	classes, ok := paths[subpath]
	if !ok {
		classes = make(map[string]ActionFactory)
		paths[subpath] = classes
	}
	if _, exists := classes[class]; exists {
		return fmt.Errorf("%w: %s in %s", ErrDuplicateAction, class, PackageName(module, subpath))
	}
	classes[class] = factory
	return nil
}

// Modules returns the names of modules with at least one action, sorted.
func (r *ActionRegistry) Modules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.actions))
}

// find looks for class in the module root first, then in sub-paths in
// lexical order.
func (r *ActionRegistry) find(module, class string) (string, ActionFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	paths := r.actions[module]
	if f, ok := paths[""][class]; ok {
		return "", f, true
	}
	for _, sub := range slices.Sorted(maps.Keys(paths)) {
		if sub == "" {
			continue
		}
		if f, ok := paths[sub][class]; ok {
			return sub, f, true
		}
	}
	return "", nil, false
}

type located struct {
	factory ActionFactory
	pkg     string
}

// Loader locates and instantiates actions.
type Loader struct {
	registry *ActionRegistry
	modules  *Modules
	cache    map[string]located
	group    singleflight.Group
	mu       sync.RWMutex
}

// NewLoader creates a loader over registry, enforcing the package scope of modules.
func NewLoader(registry *ActionRegistry, modules *Modules) *Loader {
	return &Loader{
		registry: registry,
		modules:  modules,
		cache:    make(map[string]located),
	}
}

// Load returns a new stack entry for module/action.
//
// The action is searched in the module root first, then recursively in the
// module's sub-paths. ErrActionNotFound is returned when no class matches and
// ErrPackageDenied when the only match lies outside the module's package scope.
func (l *Loader) Load(module, action string) (*ActionEntry, error) {
	loc, err := l.locate(module, action)
	if err != nil {
		return nil, err
	}
	return &ActionEntry{
		action:   loc.factory(),
		behavior: l.modules.Behavior(module, loc.pkg, action),
		name:     action,
		module:   module,
		pkg:      loc.pkg,
	}, nil
}

func (l *Loader) locate(module, action string) (located, error) {
	key := module + "\x00" + action

	l.mu.RLock()
	loc, ok := l.cache[key]
	l.mu.RUnlock()
	if ok {
		return loc, nil
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		if module == "" || action == "" {
			return located{}, fmt.Errorf("%w: %q/%q", ErrActionNotFound, module, action)
		}
		sub, factory, found := l.registry.find(module, ActionClass(action))
		if !found {
			return located{}, fmt.Errorf("%w: %s in module %q", ErrActionNotFound, ActionClass(action), module)
		}
		pkg := PackageName(module, sub)
		if !l.modules.PackageAllowed(module, pkg) {
			return located{}, fmt.Errorf("%w: %s", ErrPackageDenied, pkg)
		}

		loc := located{factory: factory, pkg: pkg}
		l.mu.Lock()
		l.cache[key] = loc
		l.mu.Unlock()
		return loc, nil
	})
	if err != nil {
		return located{}, err
	}
	return v.(located), nil
}
