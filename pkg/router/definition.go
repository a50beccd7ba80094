package router

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Reserved placeholder names.
const (
	ParamModule = "module"
	ParamAction = "action"
)

// DefinitionConfig is the configuration form of a route definition.
type DefinitionConfig struct {
	Access   *AccessConfig     `yaml:"access"`
	Patterns map[string]string `yaml:"patterns"`
	Forward  Forward           `yaml:"forward"`
	URI      string            `yaml:"uri"`
	Regexp   string            `yaml:"regexp"`
}

// Definition is a compiled, immutable route definition.
type Definition struct {
	pattern  *regexp.Regexp
	patterns map[string]*regexp.Regexp
	access   *AccessRule
	forward  Forward
	name     string
	uri      string
	segments []segment
}

// segment is one "/"-delimited piece of a URI template.
type segment struct {
	literal string // literal text, or the placeholder's literal suffix
	param   string // placeholder name; empty for literal segments
}

func (s segment) isPlaceholder() bool { return s.param != "" }

var placeholderName = regexp.MustCompile(`^:([A-Za-z0-9_]+)(.*)$`)

// NewDefinition compiles a route definition.
// The forward action is normalized with PascalCase like a bound :action.
// Without an explicit regexp the match pattern is derived from the URI template.
// Validation patterns are anchored: a placeholder value must match in full.
func NewDefinition(name string, cfg DefinitionConfig) (*Definition, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	}
	if cfg.URI == "" || !strings.HasPrefix(cfg.URI, "/") {
		return nil, fmt.Errorf("%w: route %q: uri must start with /", ErrInvalidDefinition, name)
	}

	d := &Definition{
		name:     name,
		uri:      cfg.URI,
		forward:  Forward{Module: cfg.Forward.Module, Action: PascalCase(cfg.Forward.Action)},
		segments: parseTemplate(cfg.URI),
		patterns: make(map[string]*regexp.Regexp, len(cfg.Patterns)),
	}

	expr := cfg.Regexp
	if expr == "" {
		expr = d.derivePattern()
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: route %q: regexp: %w", ErrInvalidDefinition, name, err)
	}
	d.pattern = re

	for param, expr := range cfg.Patterns {
		re, err := regexp.Compile(`^(?:` + expr + `)$`)
		if err != nil {
			return nil, fmt.Errorf("%w: route %q: pattern for %q: %w", ErrInvalidDefinition, name, param, err)
		}
		d.patterns[param] = re
	}

	if cfg.Access != nil {
		rule, err := NewAccessRule(*cfg.Access)
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", name, err)
		}
		d.access = rule
	}

	return d, nil
}

// Name returns the route name.
func (d *Definition) Name() string { return d.name }

// URI returns the URI template.
func (d *Definition) URI() string { return d.uri }

// Pattern returns the compiled match pattern.
func (d *Definition) Pattern() *regexp.Regexp { return d.pattern }

// Forward returns the static forward defaults.
func (d *Definition) Forward() Forward { return d.forward }

// Access returns the access rule, or nil.
func (d *Definition) Access() *AccessRule { return d.access }

// Bind matches path against the definition and extracts placeholder bindings.
// It reports false when the pattern does not match or any segment is rejected.
func (d *Definition) Bind(path string) (map[string]string, bool) {
	if !d.pattern.MatchString(path) {
		return nil, false
	}

	parts := splitPath(path)
	if len(parts) != len(d.segments) {
		return nil, false
	}

	params := make(map[string]string, len(d.segments))
	for i, seg := range d.segments {
		value := parts[i]

		if !seg.isPlaceholder() {
			if value != seg.literal {
				return nil, false
			}
			continue
		}

		if seg.literal != "" {
			if !strings.HasSuffix(value, seg.literal) {
				return nil, false
			}
			value = strings.TrimSuffix(value, seg.literal)
		}
		if value == "" {
			return nil, false
		}

		switch seg.param {
		case ParamModule:
			params[ParamModule] = value
		case ParamAction:
			params[ParamAction] = PascalCase(value)
		default:
			decoded, err := url.PathUnescape(value)
			if err != nil {
				return nil, false
			}
			if re, ok := d.patterns[seg.param]; ok && !re.MatchString(decoded) {
				return nil, false
			}
			params[seg.param] = decoded
		}
	}

	return params, true
}

// derivePattern builds a match pattern equivalent to the URI template.
func (d *Definition) derivePattern() string {
	var b strings.Builder
	b.WriteString("^")
	for _, seg := range d.segments {
		b.WriteString("/")
		if seg.isPlaceholder() {
			b.WriteString("[^/]+")
		}
		b.WriteString(regexp.QuoteMeta(seg.literal))
	}
	b.WriteString("$")
	return b.String()
}

func parseTemplate(uri string) []segment {
	parts := splitPath(uri)
	segments := make([]segment, len(parts))
	for i, part := range parts {
		if m := placeholderName.FindStringSubmatch(part); m != nil {
			segments[i] = segment{param: m[1], literal: m[2]}
			continue
		}
		segments[i] = segment{literal: part}
	}
	return segments
}

func splitPath(path string) []string {
	return strings.Split(strings.TrimPrefix(path, "/"), "/")
}
