package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Filter describes one filter instance.
// Keys other than class, enable, packages and bypass are kept in Attrs and
// handed to the filter factory unchanged.
type Filter struct {
	Attrs    map[string]any
	Enable   *bool
	Bypass   *bool
	Class    string
	Packages []string
}

// Enabled reports the enable flag, true when unset.
func (f Filter) Enabled() bool {
	return f.Enable == nil || *f.Enable
}

// Bypassed reports whether the filter is skipped on internal forwards,
// true when unset.
func (f Filter) Bypassed() bool {
	return f.Bypass == nil || *f.Bypass
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *Filter) UnmarshalYAML(node *yaml.Node) error {
	var known struct {
		Enable   *bool    `yaml:"enable"`
		Bypass   *bool    `yaml:"bypass"`
		Class    string   `yaml:"class"`
		Packages []string `yaml:"packages"`
	}
	if err := node.Decode(&known); err != nil {
		return err
	}
	var all map[string]any
	if err := node.Decode(&all); err != nil {
		return err
	}
	for _, k := range []string{"class", "enable", "packages", "bypass"} {
		delete(all, k)
	}
	if known.Class == "" {
		return fmt.Errorf("%w: line %d: filter class is required", ErrInvalidConfig, node.Line)
	}

	*f = Filter{
		Class:    known.Class,
		Enable:   known.Enable,
		Bypass:   known.Bypass,
		Packages: known.Packages,
		Attrs:    all,
	}
	return nil
}
