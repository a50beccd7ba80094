package router

import (
	"fmt"
	"net/netip"
	"strings"
)

// Forward is a static module/action destination.
type Forward struct {
	Module string `yaml:"module"`
	Action string `yaml:"action"`
}

// IsZero reports whether neither module nor action is set.
func (f Forward) IsZero() bool {
	return f.Module == "" && f.Action == ""
}

func (f Forward) String() string {
	return f.Module + "/" + f.Action
}

// AccessConfig is the configuration form of an access rule.
type AccessConfig struct {
	Allow []string `yaml:"allow"`
	Deny  Forward  `yaml:"deny"`
}

// AccessRule restricts a route to callers from the allowed networks.
type AccessRule struct {
	Deny  Forward
	Allow []netip.Prefix
}

// NewAccessRule parses an access configuration.
// Allow entries are CIDR prefixes or bare addresses. The deny action is
// normalized with PascalCase.
func NewAccessRule(cfg AccessConfig) (*AccessRule, error) {
	if cfg.Deny.Module == "" || cfg.Deny.Action == "" {
		return nil, fmt.Errorf("%w: access rule requires deny module and action", ErrInvalidDefinition)
	}
	prefixes, err := ParsePrefixes(cfg.Allow)
	if err != nil {
		return nil, err
	}
	deny := Forward{Module: cfg.Deny.Module, Action: PascalCase(cfg.Deny.Action)}
	return &AccessRule{Allow: prefixes, Deny: deny}, nil
}

// Permits reports whether addr falls into one of the allowed networks.
// An invalid address is never permitted.
func (r *AccessRule) Permits(addr netip.Addr) bool {
	if !addr.IsValid() {
		return false
	}
	addr = addr.Unmap()
	for _, p := range r.Allow {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ParsePrefixes parses CIDR prefixes; a bare address becomes a single-host prefix.
func ParsePrefixes(entries []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, raw := range entries {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: network %q: %w", ErrInvalidDefinition, raw, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: network %q: %w", ErrInvalidDefinition, raw, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}
