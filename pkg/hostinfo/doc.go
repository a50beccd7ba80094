// Package hostinfo extracts host and caller information from HTTP requests.
//
// It is used by the router to derive modules from subdomains and to evaluate
// network allow-lists against the caller's address.
//
// # Host Normalization
//
// Ports are stripped and hosts are lowercased before any comparison:
//
//	"Shop.Example.COM:8080" -> "shop.example.com"
//	"[::1]:8080"            -> "[::1]"
//
// # Labels
//
// LeftmostLabel returns the first DNS label of a host, which is how the router
// resolves a module when subdomain-based module resolution is enabled:
//
//	hostinfo.LeftmostLabel("blog.example.com") // "blog"
//	hostinfo.LeftmostLabel("localhost")        // ""
//
// # Caller Address
//
// ClientAddr parses the request's remote address. Forwarded headers are only
// honoured when explicitly trusted, since they are client-controlled.
package hostinfo
