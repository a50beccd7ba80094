package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/dispatch/pkg/container"
	"github.com/dmitrymomot/dispatch/pkg/router"
)

// File is the dispatcher configuration file.
type File struct {
	Modules    map[string]Module                `yaml:"modules"`
	Components map[string]container.Descriptor  `yaml:"components"`
	Routes     Ordered[router.DefinitionConfig] `yaml:"routes"`
	Filters    Ordered[Filter]                  `yaml:"filters"`
	Router     Router                           `yaml:"router"`
}

// Router holds resolver settings.
type Router struct {
	// Unknown is where requests go when the resolved action cannot be loaded.
	Unknown          router.Forward `yaml:"unknown"`
	SubdomainModules bool           `yaml:"subdomain_modules"`
	TrustForwarded   bool           `yaml:"trust_forwarded"`
}

// Module configures one module.
type Module struct {
	Behaviors     map[string]Behavior `yaml:"behaviors"`
	DefaultAction string              `yaml:"default_action"`
	Filters       Ordered[Filter]     `yaml:"filters"`
	Packages      Packages            `yaml:"packages"`
}

// Packages restricts which packages of a module may serve actions.
// Empty Allow means every package of the module.
type Packages struct {
	Allow []string `yaml:"allow"`
	Deny  []string `yaml:"deny"`
}

// Behavior is per-action configuration keyed by "<package>/<Action>".
type Behavior struct {
	// Filters overrides filter attributes by filter id for this action.
	Filters  map[string]map[string]any `yaml:"filters"`
	Roles    []string                  `yaml:"roles"`
	Login    bool                      `yaml:"login"`
	Validate bool                      `yaml:"validate"`
}

// Load reads and parses the file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrReadFile, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a configuration document and validates it.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks cross-references that YAML decoding cannot.
func (f *File) Validate() error {
	var errs []error
	if len(f.Routes) == 0 {
		errs = append(errs, fmt.Errorf("%w: no routes", ErrInvalidConfig))
	}
	if u := f.Router.Unknown; !u.IsZero() && (u.Module == "" || u.Action == "") {
		errs = append(errs, fmt.Errorf("%w: router.unknown needs both module and action", ErrInvalidConfig))
	}
	for name, c := range f.Components {
		if c.Class == "" {
			errs = append(errs, fmt.Errorf("%w: component %q has no class", ErrInvalidConfig, name))
		}
		if c.Instance != "" && c.Instance != container.ScopeSingleton && c.Instance != container.ScopePrototype {
			errs = append(errs, fmt.Errorf("%w: component %q has unknown instance scope %q", ErrInvalidConfig, name, c.Instance))
		}
	}
	return errors.Join(errs...)
}

// Table compiles the route definitions in declaration order.
func (f *File) Table() (*router.Table, error) {
	defs := make([]*router.Definition, 0, len(f.Routes))
	for _, e := range f.Routes {
		def, err := router.NewDefinition(e.Name, e.Value)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return router.NewTable(defs...)
}

// Merge overlays other onto f. Routes and filters are appended in order,
// replacing entries of the same name in place; modules and components are
// replaced by name; router settings are taken from other when set.
func (f *File) Merge(other *File) {
	if other == nil {
		return
	}
	f.Routes = mergeOrdered(f.Routes, other.Routes)
	f.Filters = mergeOrdered(f.Filters, other.Filters)

	if len(other.Modules) > 0 && f.Modules == nil {
		f.Modules = make(map[string]Module, len(other.Modules))
	}
	for name, m := range other.Modules {
		f.Modules[name] = m
	}
	if len(other.Components) > 0 && f.Components == nil {
		f.Components = make(map[string]container.Descriptor, len(other.Components))
	}
	for name, c := range other.Components {
		f.Components[name] = c
	}

	if !other.Router.Unknown.IsZero() {
		f.Router.Unknown = other.Router.Unknown
	}
	f.Router.SubdomainModules = f.Router.SubdomainModules || other.Router.SubdomainModules
	f.Router.TrustForwarded = f.Router.TrustForwarded || other.Router.TrustForwarded
}

func mergeOrdered[T any](base, over Ordered[T]) Ordered[T] {
	out := append(Ordered[T](nil), base...)
	for _, e := range over {
		replaced := false
		for i := range out {
			if out[i].Name == e.Name {
				out[i] = e
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, e)
		}
	}
	return out
}
