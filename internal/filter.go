package internal

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/dmitrymomot/dispatch/pkg/metrics"
)

// Filter intercepts dispatch of an action. A filter continues the chain by
// calling chain.Proceed; returning without calling it ends the request there.
type Filter interface {
	DoFilter(c Context, chain *FilterChain) error
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(c Context, chain *FilterChain) error

// DoFilter implements Filter.
func (f FilterFunc) DoFilter(c Context, chain *FilterChain) error { return f(c, chain) }

// FilterFactory builds a filter from its configured attributes.
type FilterFactory func(attrs map[string]any) (Filter, error)

// FilterRegistry maps filter class names to factories.
type FilterRegistry struct {
	factories map[string]FilterFactory
	mu        sync.RWMutex
}

// NewFilterRegistry creates an empty registry.
func NewFilterRegistry() *FilterRegistry {
	return &FilterRegistry{factories: make(map[string]FilterFactory)}
}

// Register adds a filter class.
func (r *FilterRegistry) Register(class string, factory FilterFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[class]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateFilterClass, class)
	}
	r.factories[class] = factory
	return nil
}

// Lookup returns the factory for class.
func (r *FilterRegistry) Lookup(class string) (FilterFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[class]
	return f, ok
}

// FilterDescriptor configures one filter instance.
type FilterDescriptor struct {
	Attrs    map[string]any
	ID       string
	Class    string
	Packages []string
	Enable   bool
	// Bypass skips the filter when the action was reached by an internal
	// forward. Filters with Bypass unset run on forwards too.
	Bypass bool
}

// FilterManager assembles the filter chain for each stack entry.
type FilterManager struct {
	registry  *FilterRegistry
	modules   *Modules
	metrics   *metrics.Metrics
	logger    *slog.Logger
	instances map[string]Filter
	global    []FilterDescriptor
	mu        sync.Mutex
}

// NewFilterManager creates a manager. global descriptors run, in order,
// before module descriptors not already listed globally.
func NewFilterManager(registry *FilterRegistry, modules *Modules, global []FilterDescriptor, m *metrics.Metrics, l *slog.Logger) *FilterManager {
	return &FilterManager{
		registry:  registry,
		modules:   modules,
		metrics:   m,
		logger:    l,
		global:    global,
		instances: make(map[string]Filter),
	}
}

// Validate checks that every configured filter class is registered.
func (m *FilterManager) Validate() error {
	all := slices.Clone(m.global)
	for _, name := range m.modules.Names() {
		all = append(all, m.modules.Filters(name)...)
	}
	for _, d := range all {
		if _, ok := m.registry.Lookup(d.Class); !ok {
			return fmt.Errorf("%w: filter %q uses class %q", ErrUnknownFilterClass, d.ID, d.Class)
		}
	}
	return nil
}

// Build returns the chain for entry: enabled global and module filters in
// declared order followed by the action filter.
func (m *FilterManager) Build(entry *ActionEntry) (*FilterChain, error) {
	descriptors := m.Descriptors(entry)
	links := make([]chainLink, 0, len(descriptors)+1)
	for _, d := range descriptors {
		f, err := m.instance(entry, d)
		if err != nil {
			return nil, err
		}
		links = append(links, chainLink{
			id:       d.ID,
			filter:   f,
			packages: d.Packages,
			bypass:   d.Bypass,
		})
	}
	links = append(links, chainLink{id: actionFilterID, filter: actionFilter{}})
	return &FilterChain{links: links, metrics: m.metrics}, nil
}

// Descriptors merges the filter layers for entry. A module descriptor with
// the id of a global one replaces it in place; behavior overrides are applied
// last and disabled filters are dropped.
func (m *FilterManager) Descriptors(entry *ActionEntry) []FilterDescriptor {
	merged := slices.Clone(m.global)
	for _, d := range m.modules.Filters(entry.Module()) {
		if i := slices.IndexFunc(merged, func(g FilterDescriptor) bool { return g.ID == d.ID }); i >= 0 {
			merged[i] = d
			continue
		}
		merged = append(merged, d)
	}

	overrides := entry.Behavior().Filters
	out := merged[:0]
	for _, d := range merged {
		if o, ok := overrides[d.ID]; ok {
			d = applyOverride(d, o)
		}
		if d.Enable {
			out = append(out, d)
		}
	}
	return out
}

func applyOverride(d FilterDescriptor, o map[string]any) FilterDescriptor {
	attrs := maps.Clone(d.Attrs)
	if attrs == nil {
		attrs = make(map[string]any, len(o))
	}
	for k, v := range o {
		if k == "enable" {
			if b, ok := v.(bool); ok {
				d.Enable = b
			}
			continue
		}
		attrs[k] = v
	}
	d.Attrs = attrs
	return d
}

// instance returns the filter for d, building it once per module and
// per behavior override so stateful filters keep state across requests.
func (m *FilterManager) instance(entry *ActionEntry, d FilterDescriptor) (Filter, error) {
	key := entry.Module() + "|" + d.ID
	if _, overridden := entry.Behavior().Filters[d.ID]; overridden {
		key += "|" + BehaviorKey(entry.PackageName(), entry.ActionName())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if f, ok := m.instances[key]; ok {
		return f, nil
	}
	factory, ok := m.registry.Lookup(d.Class)
	if !ok {
		return nil, fmt.Errorf("%w: filter %q uses class %q", ErrUnknownFilterClass, d.ID, d.Class)
	}
	f, err := factory(d.Attrs)
	if err != nil {
		return nil, fmt.Errorf("filter %q: %w", d.ID, err)
	}
	m.instances[key] = f
	if m.logger != nil {
		m.logger.Debug("filter instantiated", slog.String("filter", d.ID), slog.String("class", d.Class), slog.String("key", key))
	}
	return f, nil
}
