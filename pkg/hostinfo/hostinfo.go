package hostinfo

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Domain returns the normalized domain from the request Host header.
// Strips port, handles IPv6, and converts to lowercase.
func Domain(r *http.Request) string {
	return Normalize(r.Host)
}

// Normalize strips the port from a host and lowercases it.
// Bracketed IPv6 literals keep their brackets.
func Normalize(host string) string {
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		if !strings.Contains(host[idx:], "]") {
			host = host[:idx]
		}
	}
	return strings.ToLower(host)
}

// Subdomain extracts the subdomain of host relative to baseDomain.
// Returns empty string if host doesn't belong to baseDomain or has no subdomain.
//
//	Subdomain("foo.example.com", "example.com")     // "foo"
//	Subdomain("bar.foo.example.com", "example.com") // "bar.foo"
//	Subdomain("example.com", "example.com")         // ""
func Subdomain(host, baseDomain string) string {
	host = Normalize(host)
	base := strings.ToLower(baseDomain)

	if host == base {
		return ""
	}

	suffix := "." + base
	if !strings.HasSuffix(host, suffix) {
		return ""
	}
	return strings.TrimSuffix(host, suffix)
}

// LeftmostLabel returns the first DNS label of host.
// Single-label hosts (e.g. "localhost") and IP literals have no subdomain
// label and yield an empty string.
func LeftmostLabel(host string) string {
	host = Normalize(host)
	if host == "" || strings.HasPrefix(host, "[") {
		return ""
	}
	if _, err := netip.ParseAddr(host); err == nil {
		return ""
	}
	label, rest, ok := strings.Cut(host, ".")
	if !ok || rest == "" {
		return ""
	}
	return label
}

// ClientAddr returns the caller's network address.
// When trustForwarded is set, the first X-Forwarded-For entry (or X-Real-IP)
// takes precedence over RemoteAddr. The zero Addr is returned when nothing
// parses.
func ClientAddr(r *http.Request, trustForwarded bool) netip.Addr {
	if trustForwarded {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
				return addr.Unmap()
			}
		}
		if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
			if addr, err := netip.ParseAddr(strings.TrimSpace(xrip)); err == nil {
				return addr.Unmap()
			}
		}
	}
	return ParseAddr(r.RemoteAddr)
}

// ParseAddr parses "ip", "ip:port" or "[ipv6]:port" into an address.
func ParseAddr(s string) netip.Addr {
	if s == "" {
		return netip.Addr{}
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	s = strings.Trim(s, "[]")
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}
	}
	return addr.Unmap()
}
